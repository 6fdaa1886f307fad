package storage

import (
	"context"
	"errors"

	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrUnconfigured is returned by write operations when the backing
	// store has no connection parameters. Reads degrade to empty results.
	ErrUnconfigured = errors.New("store not configured")
)

// PostStore is the read/write façade around the persisted post collection.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindBySlug(ctx context.Context, slug string, requirePublished bool) (*models.Post, error)
	ListPublished(ctx context.Context) ([]models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]models.PostSummary, error)
	ListAll(ctx context.Context) ([]models.Post, error)
}

// ScheduleStore persists schedule-config rows. Each save inserts a new row;
// LatestConfig returns the newest by updated_at, or ErrNotFound.
type ScheduleStore interface {
	SaveConfig(ctx context.Context, cfg models.ScheduleConfig) error
	LatestConfig(ctx context.Context) (*models.ScheduleConfig, error)
}
