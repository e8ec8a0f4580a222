package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains the fields shared by soft-deletable entities.
type Base struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the row has been soft-deleted. Repository
// queries filter deleted rows explicitly; this predicate exists for
// objects already loaded into memory.
func (b *Base) IsDeleted() bool {
	return b.DeletedAt != nil
}

// ActiveAt reports whether the row was active at the given instant.
func (b *Base) ActiveAt(ts time.Time) bool {
	return b.DeletedAt == nil || b.DeletedAt.After(ts)
}
