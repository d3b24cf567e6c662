package program

// withMinter wraps the token minter used by Mint.
func withMinter(wrap func(Minter) Minter) Option {
	return func(p *Program) { p.wrapMinter = wrap }
}
