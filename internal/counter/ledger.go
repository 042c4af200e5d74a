// Package counter persists per-object download counts. Absent codes read as
// zero; increments are atomic within the process.
package counter

import (
	"github.com/filedrop/filedrop/internal/kvmap"
)

// Ledger is a persisted code→count map.
type Ledger struct {
	store *kvmap.Store[int]
}

// Open loads (or creates) the ledger document at path.
func Open(path string) (*Ledger, error) {
	store, err := kvmap.Open[int](path)
	if err != nil {
		return nil, err
	}
	return &Ledger{store: store}, nil
}

// Increment adds one to the count for code and returns the new value.
func (l *Ledger) Increment(code string) (int, error) {
	return l.store.Update(code, func(cur int) int { return cur + 1 })
}

// Read returns the current count for code, zero when absent.
func (l *Ledger) Read(code string) int {
	count, _ := l.store.Get(code)
	return count
}

// Forget drops the entry for code, used when the object is deleted.
func (l *Ledger) Forget(code string) error {
	return l.store.Delete(code)
}

// Migrate carries a count over to a renamed code so download history survives
// a rename.
func (l *Ledger) Migrate(oldCode, newCode string) error {
	return l.store.Rename(oldCode, newCode)
}
