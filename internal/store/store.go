package store

import (
	"context"

	"github.com/starford/trakker/internal/models"
)

// Repository defines the catalog persistence operations.
// Consumers should depend on this interface rather than the concrete *Store.
type Repository interface {
	CreateArtist(ctx context.Context, a *models.Artist, tagIDs []int64) error
	UpdateArtist(ctx context.Context, a *models.Artist, tagIDs []int64) error
	DeleteArtist(ctx context.Context, id int64) error
	Artist(ctx context.Context, id int64, depth int) (*models.Artist, error)
	Artists(ctx context.Context, depth int) ([]*models.Artist, error)

	CreateTrack(ctx context.Context, t *models.Track, tagIDs []int64) error
	UpdateTrack(ctx context.Context, t *models.Track, tagIDs []int64) error
	DeleteTrack(ctx context.Context, id int64) error
	Track(ctx context.Context, id int64, depth int) (*models.Track, error)
	Tracks(ctx context.Context, depth int) ([]*models.Track, error)

	CreateLink(ctx context.Context, l *models.Link, tagIDs []int64) error
	UpdateLink(ctx context.Context, l *models.Link, tagIDs []int64) error
	DeleteLink(ctx context.Context, id int64) error
	Link(ctx context.Context, id int64, depth int) (*models.Link, error)
	Links(ctx context.Context, depth int) ([]*models.Link, error)

	CreateTag(ctx context.Context, t *models.Tag, rel TagRelations) error
	UpdateTag(ctx context.Context, t *models.Tag, rel TagRelations) error
	DeleteTag(ctx context.Context, id int64) error
	Tag(ctx context.Context, id int64, depth int) (*models.Tag, error)
	Tags(ctx context.Context, depth int) ([]*models.Tag, error)

	Ping(ctx context.Context) error
	Close() error
}

// Verify *Store satisfies Repository at compile time.
var _ Repository = (*Store)(nil)
