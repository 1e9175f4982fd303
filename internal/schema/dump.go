// Package schema renders catalog entities as nested wire documents and decodes
// wire documents back into entities.
//
// Each related entity is rendered without the relationship that points back at
// its parent (artist -> tracks omit "artist", tag -> links omit "tags", ...).
// That breaks one-hop cycles only; longer cycles such as
// artist -> tracks -> links -> artist are cut by MaxDepth. Entities at MaxDepth
// carry their scalar and foreign key fields and no relationships.
package schema

import (
	"github.com/starford/trakker/internal/models"
)

// Document is the wire form of a single entity.
type Document = map[string]any

// Field names of relationship members.
const (
	FieldArtist  = "artist"
	FieldArtists = "artists"
	FieldTrack   = "track"
	FieldTracks  = "tracks"
	FieldLinks   = "links"
	FieldTags    = "tags"
)

// DefaultMaxDepth is the nesting depth used when none is configured.
const DefaultMaxDepth = 2

// Dumper renders entities up to MaxDepth hops from the root.
type Dumper struct {
	MaxDepth int
}

// NewDumper returns a Dumper with the given depth, falling back to DefaultMaxDepth.
func NewDumper(maxDepth int) Dumper {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return Dumper{MaxDepth: maxDepth}
}

// Artist renders a single artist.
func (d Dumper) Artist(a *models.Artist) Document { return d.artist(a, "", 0) }

// Artists renders a list of artists.
func (d Dumper) Artists(items []*models.Artist) []Document {
	return each(items, func(a *models.Artist) Document { return d.artist(a, "", 0) })
}

// Track renders a single track.
func (d Dumper) Track(t *models.Track) Document { return d.track(t, "", 0) }

// Tracks renders a list of tracks.
func (d Dumper) Tracks(items []*models.Track) []Document {
	return each(items, func(t *models.Track) Document { return d.track(t, "", 0) })
}

// Link renders a single link.
func (d Dumper) Link(l *models.Link) Document { return d.link(l, "", 0) }

// Links renders a list of links.
func (d Dumper) Links(items []*models.Link) []Document {
	return each(items, func(l *models.Link) Document { return d.link(l, "", 0) })
}

// Tag renders a single tag.
func (d Dumper) Tag(t *models.Tag) Document { return d.tag(t, "", 0) }

// Tags renders a list of tags.
func (d Dumper) Tags(items []*models.Tag) []Document {
	return each(items, func(t *models.Tag) Document { return d.tag(t, "", 0) })
}

func (d Dumper) artist(a *models.Artist, exclude string, depth int) Document {
	doc := Document{
		"id":         a.ID,
		"name":       a.Name,
		"created_at": a.CreatedAt,
		"updated_at": a.UpdatedAt,
	}
	if depth >= d.MaxDepth {
		return doc
	}
	next := depth + 1
	if exclude != FieldTracks {
		doc[FieldTracks] = each(a.Tracks, func(t *models.Track) Document { return d.track(t, FieldArtist, next) })
	}
	if exclude != FieldLinks {
		doc[FieldLinks] = each(a.Links, func(l *models.Link) Document { return d.link(l, FieldArtist, next) })
	}
	if exclude != FieldTags {
		doc[FieldTags] = each(a.Tags, func(t *models.Tag) Document { return d.tag(t, FieldArtists, next) })
	}
	return doc
}

func (d Dumper) track(t *models.Track, exclude string, depth int) Document {
	doc := Document{
		"id":         t.ID,
		"name":       t.Name,
		"artist_id":  t.ArtistID,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
	if depth >= d.MaxDepth {
		return doc
	}
	next := depth + 1
	if exclude != FieldArtist {
		doc[FieldArtist] = single(t.Artist, func(a *models.Artist) Document { return d.artist(a, FieldTracks, next) })
	}
	if exclude != FieldLinks {
		doc[FieldLinks] = each(t.Links, func(l *models.Link) Document { return d.link(l, FieldTrack, next) })
	}
	if exclude != FieldTags {
		doc[FieldTags] = each(t.Tags, func(tg *models.Tag) Document { return d.tag(tg, FieldTracks, next) })
	}
	return doc
}

func (d Dumper) link(l *models.Link, exclude string, depth int) Document {
	doc := Document{
		"id":         l.ID,
		"name":       l.Name,
		"artist_id":  l.ArtistID,
		"track_id":   l.TrackID,
		"created_at": l.CreatedAt,
		"updated_at": l.UpdatedAt,
	}
	if depth >= d.MaxDepth {
		return doc
	}
	next := depth + 1
	if exclude != FieldArtist {
		doc[FieldArtist] = single(l.Artist, func(a *models.Artist) Document { return d.artist(a, FieldLinks, next) })
	}
	if exclude != FieldTrack {
		doc[FieldTrack] = single(l.Track, func(t *models.Track) Document { return d.track(t, FieldLinks, next) })
	}
	if exclude != FieldTags {
		doc[FieldTags] = each(l.Tags, func(t *models.Tag) Document { return d.tag(t, FieldLinks, next) })
	}
	return doc
}

func (d Dumper) tag(t *models.Tag, exclude string, depth int) Document {
	doc := Document{
		"id":         t.ID,
		"name":       t.Name,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
	if depth >= d.MaxDepth {
		return doc
	}
	next := depth + 1
	if exclude != FieldArtists {
		doc[FieldArtists] = each(t.Artists, func(a *models.Artist) Document { return d.artist(a, FieldTags, next) })
	}
	if exclude != FieldTracks {
		doc[FieldTracks] = each(t.Tracks, func(tr *models.Track) Document { return d.track(tr, FieldTags, next) })
	}
	if exclude != FieldLinks {
		doc[FieldLinks] = each(t.Links, func(l *models.Link) Document { return d.link(l, FieldTags, next) })
	}
	return doc
}

// each maps items to documents; the result is never nil so it encodes as [].
func each[T any](items []*T, fn func(*T) Document) []Document {
	out := make([]Document, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

func single[T any](item *T, fn func(*T) Document) any {
	if item == nil {
		return nil
	}
	return fn(item)
}
