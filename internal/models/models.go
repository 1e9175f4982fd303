// Package models defines the domain types for Trakker.
package models

import "time"

// Timestamps holds the creation and last-mutation times of a record.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps the record before it is written. CreatedAt is only set once.
func (t *Timestamps) Touch(now time.Time) {
	now = now.UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Artist owns tracks and links and is tagged through artist_tags.
type Artist struct {
	ID   int64
	Name string
	Timestamps

	Tracks []*Track
	Links  []*Link
	Tags   []*Tag
}

// Track belongs to exactly one artist.
type Track struct {
	ID       int64
	Name     string
	ArtistID int64
	Timestamps

	Artist *Artist
	Links  []*Link
	Tags   []*Tag
}

// Link belongs to exactly one artist and exactly one track.
type Link struct {
	ID       int64
	Name     string
	ArtistID int64
	TrackID  int64
	Timestamps

	Artist *Artist
	Track  *Track
	Tags   []*Tag
}

// Tag is attached to artists, tracks and links through three separate association tables.
type Tag struct {
	ID   int64
	Name string
	Timestamps

	Artists []*Artist
	Tracks  []*Track
	Links   []*Link
}

// Identified is implemented by every entity type.
type Identified interface {
	*Artist | *Track | *Link | *Tag
}

// IDs returns the ids of the given entities. A nil slice yields nil so callers
// can tell "not supplied" apart from "empty".
func IDs[T Identified](items []T) []int64 {
	if items == nil {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, idOf(it))
	}
	return out
}

func idOf[T Identified](v T) int64 {
	switch e := any(v).(type) {
	case *Artist:
		return e.ID
	case *Track:
		return e.ID
	case *Link:
		return e.ID
	case *Tag:
		return e.ID
	}
	return 0
}
