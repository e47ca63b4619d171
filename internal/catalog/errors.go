package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a search is issued without a query.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrUnknownCatalog indicates a catalog name that is not movie, photo or event
	ErrUnknownCatalog = errors.New("unknown catalog")
)

// FetchErrorKind classifies remote failures.
type FetchErrorKind string

const (
	FetchTransport FetchErrorKind = "transport"
	FetchStatus    FetchErrorKind = "status"
	FetchShape     FetchErrorKind = "shape"
)

// FetchError is a failed remote search. It is never retried.
type FetchError struct {
	Kind    FetchErrorKind
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed (%s): %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MappingError reports a required field missing or malformed in one raw record.
type MappingError struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s record: field %q: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s record: missing field %q", e.Kind, e.Field)
}

func (e *MappingError) Unwrap() error { return e.Err }

// StoreOp is the durable operation that failed.
type StoreOp string

const (
	StoreRead  StoreOp = "read"
	StoreWrite StoreOp = "write"
)

// StoreError wraps a durable-storage failure.
type StoreError struct {
	Op        StoreOp
	Namespace string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store %s failed: %v", e.Namespace, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrNoIdentity is returned when a store operation needs a persisted item.
var ErrNoIdentity = errors.New("item has no identity")
