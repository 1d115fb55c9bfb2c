package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := j.Append(ctx, mustRecord(t, "ADD_ITEM", "buy milk", 1)); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	j.Close()

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}

	j, err = Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer j.Close()

	n, err := j.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1 after reopening", n)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	j := openTestJournal(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := j.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpen_SchemaIndexes(t *testing.T) {
	j := openTestJournal(t)

	for _, name := range []string{"idx_actions_seq", "idx_actions_type"} {
		var got string
		err := j.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, name,
		).Scan(&got)
		if err != nil {
			t.Errorf("index %s missing: %v", name, err)
		}
	}
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := j.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion+1)); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	j.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatal("Open() succeeded on a journal from a newer schema")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Open() error = %v, want a schema version error", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer j.Close()

	if _, err := j.AppendNext(context.Background(), mustRecord(t, "ADD_ITEM", "a", 1).Action); err != nil {
		t.Fatalf("AppendNext() failed: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "journal.db")

	if _, err := Open(path); err == nil {
		t.Fatal("Open() succeeded for a path in a missing directory")
	}
}

func TestClose_NilDB(t *testing.T) {
	var j Journal
	if err := j.Close(); err != nil {
		t.Errorf("Close() on zero Journal = %v, want nil", err)
	}
}
