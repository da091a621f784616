package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"conreach/internal/db"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("ParseDirection(%q) error = %v", s, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection(sideways) expected error")
	}
}

func TestRun_RequiresDSN(t *testing.T) {
	if err := Run("", Up); err == nil {
		t.Fatal("Run with empty DSN expected error")
	}
}

func TestRun_RejectsUnknownDirection(t *testing.T) {
	err := Run("postgres://localhost/x", Direction("left"))
	if err == nil || !strings.Contains(err.Error(), "direction") {
		t.Fatalf("Run() error = %v, want direction error", err)
	}
}

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatal("no up migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}
