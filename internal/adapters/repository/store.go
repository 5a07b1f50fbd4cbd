// Package repository provides the session store consumed by discovery:
// coarse-predicate candidate fetches plus the write operations the
// session subsystem uses to maintain records.
package repository

import (
	"context"
	"time"

	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/internal/domain/types"
)

// CoarsePredicate is the store-level filter pushed down to SQL. It only
// carries conditions the store can evaluate natively; radius and
// player-count refinement happen in memory afterwards.
type CoarsePredicate struct {
	Status             types.Status
	Visibility         types.Visibility
	SkillLevel         types.SkillLevel
	CourtType          string
	StartTime          *time.Time
	EndTime            *time.Time
	RequireCoordinates bool
}

// Store provides read/write access to session records.
type Store interface {
	// FindCandidates returns the candidate page for a coarse predicate,
	// ordered by scheduled time ascending.
	FindCandidates(ctx context.Context, pred CoarsePredicate, limit, offset int) ([]model.SessionRecord, error)

	// Count returns the total number of rows matching the coarse
	// predicate, ignoring pagination.
	Count(ctx context.Context, pred CoarsePredicate) (int, error)

	// GetByID returns a single record. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (model.SessionRecord, error)

	// Insert stores a new session record.
	Insert(ctx context.Context, rec model.SessionRecord) error

	// UpdateStatus transitions a session's lifecycle status.
	UpdateStatus(ctx context.Context, id string, status types.Status) error

	// UpdatePlayers sets the current player count.
	UpdatePlayers(ctx context.Context, id string, currentPlayers int) error

	// Close releases the underlying database handle.
	Close() error
}
