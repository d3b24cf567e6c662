package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestOverlay_ReadYourWrites(t *testing.T) {
	base := NewMemory()
	base.Put([]byte("a"), []byte("base"))
	base.Put([]byte("b"), []byte("base"))

	ov := NewOverlay(base)
	ov.Put([]byte("a"), []byte("new"))
	ov.Delete([]byte("b"))
	ov.Put([]byte("c"), []byte("added"))

	if got, _ := ov.Get([]byte("a")); string(got) != "new" {
		t.Errorf("Get(a) = %q, want new", got)
	}
	if _, err := ov.Get([]byte("b")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(b) err = %v, want ErrNotFound", err)
	}
	if ok, _ := ov.Has([]byte("b")); ok {
		t.Error("Has(b) = true after buffered delete")
	}
	if ok, _ := ov.Has([]byte("c")); !ok {
		t.Error("Has(c) = false after buffered put")
	}
	if ov.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", ov.Pending())
	}

	// Base untouched until commit.
	if got, _ := base.Get([]byte("a")); string(got) != "base" {
		t.Errorf("base a = %q, want base", got)
	}
	if ok, _ := base.Has([]byte("b")); !ok {
		t.Error("base lost b before commit")
	}
}

func TestOverlay_Discard(t *testing.T) {
	base := NewMemory()
	base.Put([]byte("k"), []byte("v"))

	ov := NewOverlay(base)
	ov.Put([]byte("k"), []byte("changed"))
	ov.Put([]byte("other"), []byte("x"))
	ov.Discard()

	if ov.Pending() != 0 {
		t.Fatalf("Pending() = %d after Discard", ov.Pending())
	}
	if got, _ := ov.Get([]byte("k")); string(got) != "v" {
		t.Errorf("Get(k) after Discard = %q, want v", got)
	}
	if ok, _ := base.Has([]byte("other")); ok {
		t.Error("discarded write reached base")
	}
}

func TestOverlay_Commit(t *testing.T) {
	for name, base := range backends(t) {
		t.Run(name, func(t *testing.T) {
			base.Put([]byte("gone"), []byte("x"))

			ov := NewOverlay(base)
			ov.Put([]byte("k1"), []byte("v1"))
			ov.Put([]byte("k2"), []byte{})
			ov.Delete([]byte("gone"))

			if err := ov.Commit(); err != nil {
				t.Fatalf("Commit: %v", err)
			}
			if ov.Pending() != 0 {
				t.Errorf("Pending() = %d after Commit", ov.Pending())
			}
			if got, _ := base.Get([]byte("k1")); string(got) != "v1" {
				t.Errorf("base k1 = %q", got)
			}
			if ok, _ := base.Has([]byte("k2")); !ok {
				t.Error("empty value not committed")
			}
			if ok, _ := base.Has([]byte("gone")); ok {
				t.Error("buffered delete not committed")
			}
		})
	}
}

func TestOverlay_CommitEmpty(t *testing.T) {
	ov := NewOverlay(NewMemory())
	if err := ov.Commit(); err != nil {
		t.Fatalf("Commit on empty overlay: %v", err)
	}
}

func TestOverlay_CommitNeedsBatcher(t *testing.T) {
	// A PrefixDB over an Overlay is a Batcher, but an Overlay over an
	// Overlay is not.
	inner := NewOverlay(NewMemory())
	ov := NewOverlay(inner)
	ov.Put([]byte("k"), []byte("v"))

	if err := ov.Commit(); !errors.Is(err, ErrNoBatch) {
		t.Fatalf("Commit err = %v, want ErrNoBatch", err)
	}
	if ov.Pending() != 1 {
		t.Error("failed Commit should keep buffered writes")
	}
}

func TestOverlay_ForEachMerged(t *testing.T) {
	base := NewMemory()
	base.Put([]byte("p/a"), []byte("1"))
	base.Put([]byte("p/b"), []byte("2"))
	base.Put([]byte("q/z"), []byte("9"))

	ov := NewOverlay(base)
	ov.Delete([]byte("p/a"))
	ov.Put([]byte("p/b"), []byte("22"))
	ov.Put([]byte("p/c"), []byte("3"))
	ov.Put([]byte("q/y"), []byte("8"))

	var got []string
	err := ov.ForEach([]byte("p/"), func(key, value []byte) error {
		got = append(got, string(key)+"="+string(value))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if fmt.Sprint(got) != "[p/b=22 p/c=3]" {
		t.Fatalf("ForEach = %v, want [p/b=22 p/c=3]", got)
	}
}
