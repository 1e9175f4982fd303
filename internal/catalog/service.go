// Package catalog implements the create/read/update/delete operations on
// artists, tracks, links and tags on top of the store.
package catalog

import (
	"context"
	"time"

	"github.com/starford/trakker/internal/models"
	"github.com/starford/trakker/internal/store"
)

// Change actions reported to the notifier.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier receives a message after every committed mutation.
type Notifier interface {
	PublishChange(entity, action string, id int64)
}

// Service coordinates timestamping, persistence and change notification.
type Service struct {
	repo   store.Repository
	depth  int
	notify Notifier
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// WithDepth sets how many hops of relationships are hydrated on reads.
func WithDepth(depth int) Option {
	return func(s *Service) { s.depth = depth }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a catalog service.
func NewService(repo store.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, depth: 2, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) publish(entity, action string, id int64) {
	if s.notify != nil {
		s.notify.PublishChange(entity, action, id)
	}
}

// CreateArtist stores a new artist and its tag associations.
func (s *Service) CreateArtist(ctx context.Context, a *models.Artist) (*models.Artist, error) {
	a.ID = 0
	a.CreatedAt = time.Time{}
	a.Touch(s.now())
	if err := s.repo.CreateArtist(ctx, a, models.IDs(a.Tags)); err != nil {
		return nil, err
	}
	s.publish("artist", ActionCreated, a.ID)
	return s.repo.Artist(ctx, a.ID, s.depth)
}

// GetArtist returns one artist with relationships.
func (s *Service) GetArtist(ctx context.Context, id int64) (*models.Artist, error) {
	return s.repo.Artist(ctx, id, s.depth)
}

// ListArtists returns every artist with relationships.
func (s *Service) ListArtists(ctx context.Context) ([]*models.Artist, error) {
	return s.repo.Artists(ctx, s.depth)
}

// UpdateArtist replaces the artist's fields. Tags are replaced only when supplied.
func (s *Service) UpdateArtist(ctx context.Context, id int64, a *models.Artist) (*models.Artist, error) {
	a.ID = id
	a.Touch(s.now())
	if err := s.repo.UpdateArtist(ctx, a, models.IDs(a.Tags)); err != nil {
		return nil, err
	}
	s.publish("artist", ActionUpdated, id)
	return s.repo.Artist(ctx, id, s.depth)
}

// DeleteArtist removes the artist together with its tracks and links.
func (s *Service) DeleteArtist(ctx context.Context, id int64) error {
	if err := s.repo.DeleteArtist(ctx, id); err != nil {
		return err
	}
	s.publish("artist", ActionDeleted, id)
	return nil
}

// CreateTrack stores a new track and its tag associations.
func (s *Service) CreateTrack(ctx context.Context, t *models.Track) (*models.Track, error) {
	t.ID = 0
	t.CreatedAt = time.Time{}
	t.Touch(s.now())
	if err := s.repo.CreateTrack(ctx, t, models.IDs(t.Tags)); err != nil {
		return nil, err
	}
	s.publish("track", ActionCreated, t.ID)
	return s.repo.Track(ctx, t.ID, s.depth)
}

// GetTrack returns one track with relationships.
func (s *Service) GetTrack(ctx context.Context, id int64) (*models.Track, error) {
	return s.repo.Track(ctx, id, s.depth)
}

// ListTracks returns every track with relationships.
func (s *Service) ListTracks(ctx context.Context) ([]*models.Track, error) {
	return s.repo.Tracks(ctx, s.depth)
}

// UpdateTrack replaces the track's fields. Tags are replaced only when supplied.
func (s *Service) UpdateTrack(ctx context.Context, id int64, t *models.Track) (*models.Track, error) {
	t.ID = id
	t.Touch(s.now())
	if err := s.repo.UpdateTrack(ctx, t, models.IDs(t.Tags)); err != nil {
		return nil, err
	}
	s.publish("track", ActionUpdated, id)
	return s.repo.Track(ctx, id, s.depth)
}

// DeleteTrack removes the track together with its links.
func (s *Service) DeleteTrack(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTrack(ctx, id); err != nil {
		return err
	}
	s.publish("track", ActionDeleted, id)
	return nil
}

// CreateLink stores a new link and its tag associations.
func (s *Service) CreateLink(ctx context.Context, l *models.Link) (*models.Link, error) {
	l.ID = 0
	l.CreatedAt = time.Time{}
	l.Touch(s.now())
	if err := s.repo.CreateLink(ctx, l, models.IDs(l.Tags)); err != nil {
		return nil, err
	}
	s.publish("link", ActionCreated, l.ID)
	return s.repo.Link(ctx, l.ID, s.depth)
}

// GetLink returns one link with relationships.
func (s *Service) GetLink(ctx context.Context, id int64) (*models.Link, error) {
	return s.repo.Link(ctx, id, s.depth)
}

// ListLinks returns every link with relationships.
func (s *Service) ListLinks(ctx context.Context) ([]*models.Link, error) {
	return s.repo.Links(ctx, s.depth)
}

// UpdateLink replaces the link's fields. Tags are replaced only when supplied.
func (s *Service) UpdateLink(ctx context.Context, id int64, l *models.Link) (*models.Link, error) {
	l.ID = id
	l.Touch(s.now())
	if err := s.repo.UpdateLink(ctx, l, models.IDs(l.Tags)); err != nil {
		return nil, err
	}
	s.publish("link", ActionUpdated, id)
	return s.repo.Link(ctx, id, s.depth)
}

// DeleteLink removes the link.
func (s *Service) DeleteLink(ctx context.Context, id int64) error {
	if err := s.repo.DeleteLink(ctx, id); err != nil {
		return err
	}
	s.publish("link", ActionDeleted, id)
	return nil
}

// CreateTag stores a new tag and attaches it to the supplied artists, tracks and links.
func (s *Service) CreateTag(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	t.ID = 0
	t.CreatedAt = time.Time{}
	t.Touch(s.now())
	if err := s.repo.CreateTag(ctx, t, tagRelations(t)); err != nil {
		return nil, err
	}
	s.publish("tag", ActionCreated, t.ID)
	return s.repo.Tag(ctx, t.ID, s.depth)
}

// GetTag returns one tag with relationships.
func (s *Service) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	return s.repo.Tag(ctx, id, s.depth)
}

// ListTags returns every tag with relationships.
func (s *Service) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.repo.Tags(ctx, s.depth)
}

// UpdateTag replaces the tag's name and any supplied association sets.
func (s *Service) UpdateTag(ctx context.Context, id int64, t *models.Tag) (*models.Tag, error) {
	t.ID = id
	t.Touch(s.now())
	if err := s.repo.UpdateTag(ctx, t, tagRelations(t)); err != nil {
		return nil, err
	}
	s.publish("tag", ActionUpdated, id)
	return s.repo.Tag(ctx, id, s.depth)
}

// DeleteTag removes the tag and its association rows; tagged records are kept.
func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.publish("tag", ActionDeleted, id)
	return nil
}

func tagRelations(t *models.Tag) store.TagRelations {
	return store.TagRelations{
		ArtistIDs: models.IDs(t.Artists),
		TrackIDs:  models.IDs(t.Tracks),
		LinkIDs:   models.IDs(t.Links),
	}
}
