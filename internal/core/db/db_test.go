package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "bulkmsg.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	return db
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{url: "sqlite://data/bulkmsg.db", wantDriver: DriverSQLite, wantDSN: "data/bulkmsg.db"},
		{url: "sqlite:///var/lib/bulkmsg.db", wantDriver: DriverSQLite, wantDSN: "/var/lib/bulkmsg.db"},
		{url: "postgres://u:p@localhost:5432/bulkmsg?sslmode=disable", wantDriver: DriverPostgres, wantDSN: "postgres://u:p@localhost:5432/bulkmsg?sslmode=disable"},
		{url: "mysql://localhost/db", wantErr: true},
		{url: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		driver, dsn, err := ParseURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if driver != tt.wantDriver || dsn != tt.wantDSN {
			t.Errorf("ParseURL(%q) = %q, %q, want %q, %q", tt.url, driver, dsn, tt.wantDriver, tt.wantDSN)
		}
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	n, err := MigrateUp(ctx, db)
	if err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second MigrateUp() applied %d, want 0", n)
	}

	statuses, err := MigrateStatus(ctx, db)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v", err)
	}
	if len(statuses) == 0 {
		t.Fatal("MigrateStatus() returned no migrations")
	}
	for _, s := range statuses {
		if !s.Applied || s.AppliedAt == nil {
			t.Errorf("migration %s applied = %v at %v, want applied", s.ID, s.Applied, s.AppliedAt)
		}
	}
}

func TestMigrateUp_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.Exec("UPDATE schema_migrations SET checksum = 'tampered'"); err != nil {
		t.Fatal(err)
	}
	if _, err := MigrateUp(ctx, db); err == nil {
		t.Error("MigrateUp() with tampered checksum succeeded, want error")
	}
}

func TestSlots(t *testing.T) {
	ctx := context.Background()
	q, err := LoadQueries(openTestDB(t))
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}

	if _, ok, err := q.GetSlot(ctx, "customerLists"); err != nil || ok {
		t.Fatalf("GetSlot(empty) = ok %v, err %v, want absent", ok, err)
	}

	if err := q.PutSlot(ctx, "customerLists", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("PutSlot() error = %v", err)
	}
	if err := q.PutSlot(ctx, "customerLists", []byte(`[{"id":2}]`)); err != nil {
		t.Fatalf("PutSlot(overwrite) error = %v", err)
	}

	got, ok, err := q.GetSlot(ctx, "customerLists")
	if err != nil || !ok || string(got) != `[{"id":2}]` {
		t.Errorf("GetSlot() = %s, %v, %v, want overwritten value", got, ok, err)
	}

	slots, err := q.ListSlots(ctx)
	if err != nil || len(slots) != 1 || slots[0].Key != "customerLists" {
		t.Errorf("ListSlots() = %+v, %v", slots, err)
	}

	if err := q.DeleteSlot(ctx, "customerLists"); err != nil {
		t.Fatalf("DeleteSlot() error = %v", err)
	}
	if _, ok, _ := q.GetSlot(ctx, "customerLists"); ok {
		t.Error("GetSlot() after DeleteSlot found a value")
	}
}

func TestSplitStatements(t *testing.T) {
	in := "-- header\nCREATE TABLE a (x TEXT);\n\n-- only a comment;\nCREATE TABLE b (y TEXT);\n"
	got := splitStatements(in)
	if len(got) != 2 || got[0] != "CREATE TABLE a (x TEXT)" || got[1] != "CREATE TABLE b (y TEXT)" {
		t.Errorf("splitStatements() = %q", got)
	}
}
