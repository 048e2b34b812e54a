package flag_test

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/mkrupp/filedrop-checker/internal/repo/flag"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		tick  int
		want  string
	}{
		{field: "username", tick: 0, want: "username_000"},
		{field: "fileid", tick: 5, want: "fileid_005"},
		{field: "flagid", tick: 42, want: "flagid_042"},
		{field: "password", tick: 1337, want: "password_1337"},
	}

	for _, tt := range tests {
		if got := Key(tt.field, tt.tick); got != tt.want {
			t.Errorf("Key(%q, %d) = %q, want %q", tt.field, tt.tick, got, tt.want)
		}
	}
}

func testRepository(t *testing.T, repo Repository) {
	t.Helper()

	ctx := context.Background()

	// absent before write
	_, ok, err := repo.Get(ctx, "username", 5)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if ok {
		t.Fatal("Get() found value before Put()")
	}

	if err := repo.Put(ctx, "username", 5, []byte("SOMEUSER")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	value, ok, err := repo.Get(ctx, "username", 5)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !ok || string(value) != "SOMEUSER" {
		t.Fatalf("Get() = %q, %v, want %q, true", value, ok, "SOMEUSER")
	}

	// same field at a different tick stays independent
	_, ok, err = repo.Get(ctx, "username", 6)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if ok {
		t.Fatal("Get() leaked value across ticks")
	}
}

func TestMemoryFlagRepository(t *testing.T) {
	t.Parallel()

	repo := NewMemoryFlagRepository()
	t.Cleanup(func() { _ = repo.Close() })

	testRepository(t, repo)
}

func TestSQLiteFlagRepository(t *testing.T) {
	t.Parallel()

	repo, err := NewSQLiteFlagRepository(SQLiteFlagRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "checker.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteFlagRepository() error = %v", err)
	}

	t.Cleanup(func() { _ = repo.Close() })

	testRepository(t, repo)
}

func TestSQLiteFlagRepository_Reopen(t *testing.T) {
	t.Parallel()

	cfg := SQLiteFlagRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "checker.db"),
	}
	ctx := context.Background()

	repo, err := NewSQLiteFlagRepository(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteFlagRepository() error = %v", err)
	}

	if err := repo.Put(ctx, "flagid", 7, []byte("user:1:flag.txt:2")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// redemption may happen from a fresh process
	reopened, err := NewSQLiteFlagRepository(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteFlagRepository() error = %v", err)
	}

	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(ctx, "flagid", 7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !ok || string(value) != "user:1:flag.txt:2" {
		t.Fatalf("Get() after reopen = %q, %v", value, ok)
	}
}
