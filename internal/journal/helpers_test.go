package journal

import (
	"path/filepath"
	"testing"

	"github.com/roach88/todoflux/internal/ir"
)

// openTestJournal opens a journal in a per-test temp directory.
func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func mustRecord(t *testing.T, typ ir.ActionType, text string, seq int64) ir.ActionRecord {
	t.Helper()
	rec, err := ir.NewActionRecord(ir.Action{Type: typ, Text: text}, seq)
	if err != nil {
		t.Fatalf("NewActionRecord() failed: %v", err)
	}
	return rec
}
