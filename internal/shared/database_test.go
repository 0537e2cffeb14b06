package shared

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestNewDatabase(t *testing.T) {
	t.Run("enables foreign keys", func(t *testing.T) {
		db, err := NewDatabase(MemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		var enabled int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if enabled != 1 {
			t.Errorf("expected foreign_keys=1, got %d", enabled)
		}
	})

	t.Run("file database", func(t *testing.T) {
		db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, "test.db", 4, 2)
		if stats := db.Stats(); stats.MaxOpenConnections != 4 {
			t.Errorf("expected max open 4, got %d", stats.MaxOpenConnections)
		}
	})

	t.Run("memory database keeps one connection", func(t *testing.T) {
		db, err := NewDatabase(MemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}

		ConfigureDatabase(db, MemoryDatabase, 10, 5)
		if stats := db.Stats(); stats.MaxOpenConnections != 1 {
			t.Fatalf("expected max open 1, got %d", stats.MaxOpenConnections)
		}

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var n int
				errs <- db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n)
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("expected table on every query, got %v", err)
			}
		}
	})

	t.Run("withForeignKeys", func(t *testing.T) {
		if got := withForeignKeys("a.db"); got != "a.db?_foreign_keys=on" {
			t.Errorf("unexpected dsn %s", got)
		}
		if got := withForeignKeys("a.db?cache=shared"); got != "a.db?cache=shared&_foreign_keys=on" {
			t.Errorf("unexpected dsn %s", got)
		}
	})
}
