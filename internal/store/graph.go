package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/trakker/internal/apperr"
	"github.com/starford/trakker/internal/models"
)

type kind uint8

const (
	artistKind kind = iota
	trackKind
	linkKind
	tagKind
)

type nodeKey struct {
	kind kind
	id   int64
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// graph hydrates an object graph breadth-first. Every (kind, id) is backed by
// exactly one instance, so the same record reached through different paths is
// shared.
type graph struct {
	q       queryer
	artists map[int64]*models.Artist
	tracks  map[int64]*models.Track
	links   map[int64]*models.Link
	tags    map[int64]*models.Tag
}

func newGraph(q queryer) *graph {
	return &graph{
		q:       q,
		artists: make(map[int64]*models.Artist),
		tracks:  make(map[int64]*models.Track),
		links:   make(map[int64]*models.Link),
		tags:    make(map[int64]*models.Tag),
	}
}

// walk loads relationships for every node less than depth hops away from roots.
func (g *graph) walk(ctx context.Context, roots []nodeKey, depth int) error {
	seen := make(map[nodeKey]struct{}, len(roots))
	for _, k := range roots {
		seen[k] = struct{}{}
	}
	frontier := roots
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []nodeKey
		for _, k := range frontier {
			neighbours, err := g.expand(ctx, k)
			if err != nil {
				return err
			}
			for _, n := range neighbours {
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return nil
}

func (g *graph) expand(ctx context.Context, k nodeKey) ([]nodeKey, error) {
	var (
		out []nodeKey
		err error
	)
	switch k.kind {
	case artistKind:
		a := g.artists[k.id]
		if a.Tracks, err = g.tracksWhere(ctx, &out, `WHERE e.artist_id = ? ORDER BY e.id`, a.ID); err != nil {
			return nil, err
		}
		if a.Links, err = g.linksWhere(ctx, &out, `WHERE e.artist_id = ? ORDER BY e.id`, a.ID); err != nil {
			return nil, err
		}
		if a.Tags, err = g.tagsWhere(ctx, &out, joinOn(artistTags), a.ID); err != nil {
			return nil, err
		}
	case trackKind:
		t := g.tracks[k.id]
		artists, err := g.artistsWhere(ctx, &out, `WHERE e.id = ?`, t.ArtistID)
		if err != nil {
			return nil, err
		}
		t.Artist = first(artists)
		if t.Links, err = g.linksWhere(ctx, &out, `WHERE e.track_id = ? ORDER BY e.id`, t.ID); err != nil {
			return nil, err
		}
		if t.Tags, err = g.tagsWhere(ctx, &out, joinOn(trackTags), t.ID); err != nil {
			return nil, err
		}
	case linkKind:
		l := g.links[k.id]
		artists, err := g.artistsWhere(ctx, &out, `WHERE e.id = ?`, l.ArtistID)
		if err != nil {
			return nil, err
		}
		l.Artist = first(artists)
		tracks, err := g.tracksWhere(ctx, &out, `WHERE e.id = ?`, l.TrackID)
		if err != nil {
			return nil, err
		}
		l.Track = first(tracks)
		if l.Tags, err = g.tagsWhere(ctx, &out, joinOn(linkTags), l.ID); err != nil {
			return nil, err
		}
	case tagKind:
		t := g.tags[k.id]
		if t.Artists, err = g.artistsWhere(ctx, &out, joinOn(tagArtists), t.ID); err != nil {
			return nil, err
		}
		if t.Tracks, err = g.tracksWhere(ctx, &out, joinOn(tagTracks), t.ID); err != nil {
			return nil, err
		}
		if t.Links, err = g.linksWhere(ctx, &out, joinOn(tagLinks), t.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// joinOn selects the records related to an owner id through an association table.
func joinOn(a assoc) string {
	return fmt.Sprintf(`JOIN %s x ON x.%s = e.id WHERE x.%s = ? ORDER BY e.id`, a.table, a.other, a.owner)
}

func first[T any](items []*T) *T {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func (g *graph) artistsWhere(ctx context.Context, keys *[]nodeKey, clause string, args ...any) ([]*models.Artist, error) {
	rows, err := queryAll(ctx, g.q, `SELECT e.id, e.name, e.created_at, e.updated_at FROM artists e `+clause, args, scanArtist)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Artist, 0, len(rows))
	for _, a := range rows {
		if got, ok := g.artists[a.ID]; ok {
			a = got
		} else {
			g.artists[a.ID] = a
		}
		out = append(out, a)
		*keys = append(*keys, nodeKey{artistKind, a.ID})
	}
	return out, nil
}

func (g *graph) tracksWhere(ctx context.Context, keys *[]nodeKey, clause string, args ...any) ([]*models.Track, error) {
	rows, err := queryAll(ctx, g.q, `SELECT e.id, e.name, e.artist_id, e.created_at, e.updated_at FROM tracks e `+clause, args, scanTrack)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Track, 0, len(rows))
	for _, t := range rows {
		if got, ok := g.tracks[t.ID]; ok {
			t = got
		} else {
			g.tracks[t.ID] = t
		}
		out = append(out, t)
		*keys = append(*keys, nodeKey{trackKind, t.ID})
	}
	return out, nil
}

func (g *graph) linksWhere(ctx context.Context, keys *[]nodeKey, clause string, args ...any) ([]*models.Link, error) {
	rows, err := queryAll(ctx, g.q, `SELECT e.id, e.name, e.artist_id, e.track_id, e.created_at, e.updated_at FROM links e `+clause, args, scanLink)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Link, 0, len(rows))
	for _, l := range rows {
		if got, ok := g.links[l.ID]; ok {
			l = got
		} else {
			g.links[l.ID] = l
		}
		out = append(out, l)
		*keys = append(*keys, nodeKey{linkKind, l.ID})
	}
	return out, nil
}

func (g *graph) tagsWhere(ctx context.Context, keys *[]nodeKey, clause string, args ...any) ([]*models.Tag, error) {
	rows, err := queryAll(ctx, g.q, `SELECT e.id, e.name, e.created_at, e.updated_at FROM tags e `+clause, args, scanTag)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Tag, 0, len(rows))
	for _, t := range rows {
		if got, ok := g.tags[t.ID]; ok {
			t = got
		} else {
			g.tags[t.ID] = t
		}
		out = append(out, t)
		*keys = append(*keys, nodeKey{tagKind, t.ID})
	}
	return out, nil
}

func queryAll[T any](ctx context.Context, q queryer, query string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("query", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, translate("scan", err)
		}
		out = append(out, v)
	}
	return out, translate("query", rows.Err())
}

func scanArtist(r scanner) (*models.Artist, error) {
	a := &models.Artist{}
	return a, r.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
}

func scanTrack(r scanner) (*models.Track, error) {
	t := &models.Track{}
	return t, r.Scan(&t.ID, &t.Name, &t.ArtistID, &t.CreatedAt, &t.UpdatedAt)
}

func scanLink(r scanner) (*models.Link, error) {
	l := &models.Link{}
	return l, r.Scan(&l.ID, &l.Name, &l.ArtistID, &l.TrackID, &l.CreatedAt, &l.UpdatedAt)
}

func scanTag(r scanner) (*models.Tag, error) {
	t := &models.Tag{}
	return t, r.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
}

// read runs fn against a graph backed by a single transaction so every query
// of one hydration sees the same snapshot.
func (s *Store) read(ctx context.Context, fn func(g *graph) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only
	return fn(newGraph(tx))
}

// Artist loads one artist with relationships hydrated up to depth hops.
func (s *Store) Artist(ctx context.Context, id int64, depth int) (*models.Artist, error) {
	var out *models.Artist
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		found, err := g.artistsWhere(ctx, &keys, `WHERE e.id = ?`, id)
		if err != nil {
			return err
		}
		a := first(found)
		if a == nil {
			return apperr.NotFound("artist", id)
		}
		out = a
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Artists loads every artist ordered by id.
func (s *Store) Artists(ctx context.Context, depth int) ([]*models.Artist, error) {
	var out []*models.Artist
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		var err error
		if out, err = g.artistsWhere(ctx, &keys, `ORDER BY e.id`); err != nil {
			return err
		}
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Track loads one track with relationships hydrated up to depth hops.
func (s *Store) Track(ctx context.Context, id int64, depth int) (*models.Track, error) {
	var out *models.Track
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		found, err := g.tracksWhere(ctx, &keys, `WHERE e.id = ?`, id)
		if err != nil {
			return err
		}
		t := first(found)
		if t == nil {
			return apperr.NotFound("track", id)
		}
		out = t
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Tracks loads every track ordered by id.
func (s *Store) Tracks(ctx context.Context, depth int) ([]*models.Track, error) {
	var out []*models.Track
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		var err error
		if out, err = g.tracksWhere(ctx, &keys, `ORDER BY e.id`); err != nil {
			return err
		}
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Link loads one link with relationships hydrated up to depth hops.
func (s *Store) Link(ctx context.Context, id int64, depth int) (*models.Link, error) {
	var out *models.Link
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		found, err := g.linksWhere(ctx, &keys, `WHERE e.id = ?`, id)
		if err != nil {
			return err
		}
		l := first(found)
		if l == nil {
			return apperr.NotFound("link", id)
		}
		out = l
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Links loads every link ordered by id.
func (s *Store) Links(ctx context.Context, depth int) ([]*models.Link, error) {
	var out []*models.Link
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		var err error
		if out, err = g.linksWhere(ctx, &keys, `ORDER BY e.id`); err != nil {
			return err
		}
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Tag loads one tag with relationships hydrated up to depth hops.
func (s *Store) Tag(ctx context.Context, id int64, depth int) (*models.Tag, error) {
	var out *models.Tag
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		found, err := g.tagsWhere(ctx, &keys, `WHERE e.id = ?`, id)
		if err != nil {
			return err
		}
		t := first(found)
		if t == nil {
			return apperr.NotFound("tag", id)
		}
		out = t
		return g.walk(ctx, keys, depth)
	})
	return out, err
}

// Tags loads every tag ordered by id.
func (s *Store) Tags(ctx context.Context, depth int) ([]*models.Tag, error) {
	var out []*models.Tag
	err := s.read(ctx, func(g *graph) error {
		var keys []nodeKey
		var err error
		if out, err = g.tagsWhere(ctx, &keys, `ORDER BY e.id`); err != nil {
			return err
		}
		return g.walk(ctx, keys, depth)
	})
	return out, err
}
