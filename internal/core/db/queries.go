package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries runs named statements from queries/*.sql. Statements use ?
// placeholders and are rebound for the connected driver.
type Queries struct {
	dot *dotsql.DotSql
	db  *sqlx.DB
}

// LoadQueries parses every embedded query file.
func LoadQueries(db *sqlx.DB) (*Queries, error) {
	var b strings.Builder

	err := fs.WalkDir(queriesFS, "queries", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		b.Write(content)
		b.WriteString("\n")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}
	return &Queries{dot: dot, db: db}, nil
}

func (q *Queries) raw(name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return q.db.Rebind(query), nil
}

// Exec runs a named statement.
func (q *Queries) Exec(ctx context.Context, name string, args ...any) (sql.Result, error) {
	query, err := q.raw(name)
	if err != nil {
		return nil, err
	}
	return q.db.ExecContext(ctx, query, args...)
}

// Get scans a single row into dest.
func (q *Queries) Get(ctx context.Context, name string, dest any, args ...any) error {
	query, err := q.raw(name)
	if err != nil {
		return err
	}
	return q.db.GetContext(ctx, dest, query, args...)
}

// Select scans all rows into dest, a pointer to a slice.
func (q *Queries) Select(ctx context.Context, name string, dest any, args ...any) error {
	query, err := q.raw(name)
	if err != nil {
		return err
	}
	return q.db.SelectContext(ctx, dest, query, args...)
}

// SlotInfo describes a stored slot.
type SlotInfo struct {
	Key       string `db:"slot_key" json:"key"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

// GetSlot returns the document stored under key. ok is false when the slot
// has never been written.
func (q *Queries) GetSlot(ctx context.Context, key string) (value []byte, ok bool, err error) {
	var s string
	err = q.Get(ctx, "get-slot", &s, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(s), true, nil
}

// PutSlot writes value under key, replacing any previous document.
func (q *Queries) PutSlot(ctx context.Context, key string, value []byte) error {
	_, err := q.Exec(ctx, "put-slot", key, string(value), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteSlot removes key. Deleting an absent slot is not an error.
func (q *Queries) DeleteSlot(ctx context.Context, key string) error {
	_, err := q.Exec(ctx, "delete-slot", key)
	return err
}

// ListSlots returns every stored slot key.
func (q *Queries) ListSlots(ctx context.Context) ([]SlotInfo, error) {
	var out []SlotInfo
	if err := q.Select(ctx, "list-slots", &out); err != nil {
		return nil, err
	}
	return out, nil
}
