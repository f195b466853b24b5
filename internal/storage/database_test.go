package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// newTestDB opens a migrated database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid path", path: filepath.Join(t.TempDir(), "test.db")},
		{name: "invalid path", path: "/nonexistent/path/test.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := New(tt.path)
			if tt.wantErr {
				if err == nil {
					_ = db.Close()
					t.Error("New() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			defer func() {
				_ = db.Close()
			}()

			if db.Stats().MaxOpenConnections != 25 {
				t.Errorf("New() MaxOpenConnections = %v, want 25", db.Stats().MaxOpenConnections)
			}

			var fkEnabled int
			if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
				t.Fatalf("failed to check foreign keys: %v", err)
			}
			if fkEnabled != 1 {
				t.Error("New() should enable foreign keys")
			}
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	for _, table := range []string{"documents", "chats", "messages"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Migrate() table %s not created", table)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2026-10-16 09:30:00", want: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)},
		{in: "2026-10-16T09:30:00Z", want: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)},
		{in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
