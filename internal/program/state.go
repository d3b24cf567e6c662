package program

import (
	"github.com/Klingon-tech/gatemint/internal/accounts"
	"github.com/Klingon-tech/gatemint/internal/storage"
	"github.com/Klingon-tech/gatemint/internal/token"
	"github.com/Klingon-tech/gatemint/internal/whitelist"
)

// Storage namespaces inside the node database.
var (
	PrefixAccounts = []byte("acct/")
	PrefixTokens   = []byte("tok/")
	PrefixProgram  = []byte("prog/")
	PrefixReceipts = []byte("rcpt/")
)

// State is a view of all program-visible state over one DB. The executor
// builds one per call over that call's overlay; queries build one over the
// node database.
type State struct {
	Accounts *accounts.Store
	Tokens   *token.Store
	program  storage.DB
}

// NewState binds the account, token and program namespaces of db.
func NewState(db storage.DB) *State {
	return &State{
		Accounts: accounts.NewStore(storage.NewPrefixDB(db, PrefixAccounts)),
		Tokens:   token.NewStore(storage.NewPrefixDB(db, PrefixTokens)),
		program:  storage.NewPrefixDB(db, PrefixProgram),
	}
}

// Initialized reports whether init has run.
func (s *State) Initialized() (bool, error) {
	return whitelist.Exists(s.program)
}

// List loads the allow-list.
func (s *State) List() (*whitelist.List, error) {
	return whitelist.Load(s.program)
}

// SaveList persists the allow-list.
func (s *State) SaveList(l *whitelist.List) error {
	return whitelist.Save(s.program, l)
}

// Ledger loads the payment ledger.
func (s *State) Ledger() (*Ledger, error) {
	return loadLedger(s.program)
}

// SaveLedger persists the payment ledger.
func (s *State) SaveLedger(l *Ledger) error {
	return saveLedger(s.program, l)
}
