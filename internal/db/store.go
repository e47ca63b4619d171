package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/user/catalogs/internal/catalog"
)

const dbFile = "catalogs.db"

// Store owns the sqlite database shared by every catalog's saved items and the
// metadata table.
type Store struct {
	db *sql.DB
}

func NewStore(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`)
	if err != nil {
		return err
	}

	// One table per catalog; the three layouts are deliberately not unified.
	for _, k := range catalog.Kinds {
		if _, err := s.db.Exec(createTableSQL(catalog.SchemaFor(k))); err != nil {
			return fmt.Errorf("failed to create %s table: %w", k, err)
		}
	}
	return nil
}

func createTableSQL(schema catalog.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %q (\n", schema.Namespace)
	// AUTOINCREMENT keeps identities from being reused after a delete.
	b.WriteString("\tid INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	for _, col := range schema.Columns() {
		fmt.Fprintf(&b, "\t%q TEXT NOT NULL DEFAULT '',\n", col)
	}
	b.WriteString("\tcreated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP\n);")
	return b.String()
}

// Collection returns the persistent store of one catalog.
func (s *Store) Collection(kind catalog.Kind) *Collection {
	schema := catalog.SchemaFor(kind)

	quoted := make([]string, 0, len(schema.Columns()))
	for _, col := range schema.Columns() {
		quoted = append(quoted, fmt.Sprintf("%q", col))
	}
	cols := strings.Join(quoted, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", ")

	return &Collection{
		db:        s.db,
		schema:    schema,
		insertSQL: fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", schema.Namespace, cols, marks),
		selectSQL: fmt.Sprintf("SELECT id, %s FROM %q", cols, schema.Namespace),
		deleteSQL: fmt.Sprintf("DELETE FROM %q WHERE id = ?", schema.Namespace),
	}
}

// Collection is the durable keyed set of saved items for one catalog.
type Collection struct {
	db        *sql.DB
	schema    catalog.Schema
	insertSQL string
	selectSQL string
	deleteSQL string
}

func (c *Collection) Kind() catalog.Kind {
	return c.schema.Kind
}

// Put inserts item under a fresh identity. An identity already on item is
// ignored: puts are always inserts.
func (c *Collection) Put(ctx context.Context, item catalog.Item) (catalog.Item, error) {
	item = item.WithoutIdentity()
	item.Kind = c.schema.Kind

	vals := c.schema.Values(item)
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}

	res, err := c.db.ExecContext(ctx, c.insertSQL, args...)
	if err != nil {
		return catalog.Item{}, c.storeErr(catalog.StoreWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return catalog.Item{}, c.storeErr(catalog.StoreWrite, err)
	}

	item.ID = id
	return item, nil
}

// ListAll returns every saved item.
func (c *Collection) ListAll(ctx context.Context) ([]catalog.Item, error) {
	rows, err := c.db.QueryContext(ctx, c.selectSQL+" ORDER BY id")
	if err != nil {
		return nil, c.storeErr(catalog.StoreRead, err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		it, err := c.scan(rows)
		if err != nil {
			return nil, c.storeErr(catalog.StoreRead, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, c.storeErr(catalog.StoreRead, err)
	}
	return items, nil
}

// Get returns the saved item with the given identity.
func (c *Collection) Get(ctx context.Context, id int64) (*catalog.Item, error) {
	row := c.db.QueryRowContext(ctx, c.selectSQL+" WHERE id = ?", id)
	it, err := c.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, c.storeErr(catalog.StoreRead, err)
	}
	return &it, nil
}

// Delete removes the record with item's identity. Deleting an identity that
// no longer exists succeeds.
func (c *Collection) Delete(ctx context.Context, item catalog.Item) error {
	if !item.HasIdentity() {
		return catalog.ErrNoIdentity
	}
	if _, err := c.db.ExecContext(ctx, c.deleteSQL, item.ID); err != nil {
		return c.storeErr(catalog.StoreWrite, err)
	}
	return nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", c.schema.Namespace)).Scan(&count)
	if err != nil {
		return 0, c.storeErr(catalog.StoreRead, err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (c *Collection) scan(row scanner) (catalog.Item, error) {
	var id int64
	vals := make([]string, len(c.schema.Columns()))
	dest := make([]interface{}, 0, len(vals)+1)
	dest = append(dest, &id)
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := row.Scan(dest...); err != nil {
		return catalog.Item{}, err
	}
	return c.schema.Build(id, vals), nil
}

func (c *Collection) storeErr(op catalog.StoreOp, err error) error {
	return &catalog.StoreError{Op: op, Namespace: c.schema.Namespace, Err: err}
}
