// Package rowstore abstracts the backing store as named tables of uniform
// rows, the way the original spreadsheet held them: no row IDs, no
// transactions visible to callers, no schema enforcement. Uniqueness and
// foreign-key invariants are the callers' problem, enforced by scanning
// before writing.
package rowstore

import (
	"context"
	"errors"

	"github.com/yourorg/inventario/internal/domain"
)

// Row maps field name to textual value. All values are stored as text. A Row
// used as a match selects the first row, in storage order, whose fields all
// exactly equal the match's values.
type Row map[string]string

// ErrRowNotFound is returned when no row matches.
var ErrRowNotFound = errors.New("rowstore: row not found")

// Store is the record store contract. Implementations must preserve storage
// order across ReadAll calls. Mutations are keyed by field match, and each
// implementation resolves the match and applies the mutation under the same
// per-table lock, so concurrent sessions cannot shift a row out from under
// each other between find and mutate.
type Store interface {
	// ReadAll returns every row of the table in storage order.
	ReadAll(ctx context.Context, table string) ([]Row, error)

	// Append adds a row at the end of the table.
	Append(ctx context.Context, table string, row Row) error

	// FindFirst returns the first row matching match, or ErrRowNotFound.
	FindFirst(ctx context.Context, table string, match Row) (Row, error)

	// DeleteWhere removes the first row matching match.
	DeleteWhere(ctx context.Context, table string, match Row) error

	// ReplaceWhere overwrites the first row matching match in place,
	// keeping its storage position.
	ReplaceWhere(ctx context.Context, table string, match Row, row Row) error

	// UpdateFieldWhere overwrites a single field of the first row
	// matching match.
	UpdateFieldWhere(ctx context.Context, table string, match Row, field, value string) error
}

// Matches reports whether every field of match exactly equals the row's value.
func (match Row) Matches(row Row) bool {
	for field, value := range match {
		if row[field] != value {
			return false
		}
	}
	return true
}

// IsUnavailable reports whether err means the store could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrStoreUnavailable)
}
