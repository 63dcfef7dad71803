package store

import (
	"context"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// ListingFilter controls filtering and pagination for listing queries.
type ListingFilter struct {
	RunID     *string
	VIN       *string
	Lifecycle *model.LifecycleType
	Limit     int
	Offset    int
}

// Store defines the persistence interface for the run archive.
type Store interface {
	// === Runs ===

	CreateRun(ctx context.Context, run model.Run) (string, error)
	FinishRun(ctx context.Context, run model.Run) error
	GetRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRunByID(ctx context.Context, id string) (*model.Run, error)

	// === Listings ===

	InsertListings(ctx context.Context, runID string, listings []model.Listing) error
	GetListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)

	// === Rejections ===

	InsertRejections(ctx context.Context, runID string, rejections []model.Rejection) error
	GetRejections(ctx context.Context, runID string) ([]model.Rejection, error)

	Close() error
}
