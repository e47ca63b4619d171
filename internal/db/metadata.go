package db

import (
	"database/sql"

	"github.com/user/catalogs/internal/catalog"
)

func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SearchTerm returns the last query issued against kind, "" if none.
func (s *Store) SearchTerm(kind catalog.Kind) (string, error) {
	return s.GetMetadata(searchTermKey(kind))
}

func (s *Store) SetSearchTerm(kind catalog.Kind, term string) error {
	return s.SetMetadata(searchTermKey(kind), term)
}

// Radius returns the last event search radius.
func (s *Store) Radius() (string, error) {
	return s.GetMetadata("search_radius:" + catalog.SchemaFor(catalog.Event).Namespace)
}

func (s *Store) SetRadius(radius string) error {
	return s.SetMetadata("search_radius:"+catalog.SchemaFor(catalog.Event).Namespace, radius)
}

func searchTermKey(kind catalog.Kind) string {
	return "search_term:" + catalog.SchemaFor(kind).Namespace
}
