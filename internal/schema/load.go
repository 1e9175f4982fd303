package schema

import (
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/trakker/internal/apperr"
	"github.com/starford/trakker/internal/models"
)

// Associations are supplied as id lists on load; nested objects in the input
// (as produced by Dumper) are ignored. An absent id list decodes to a nil
// relationship slice, an empty list to an empty one.

type artistDoc struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TagIDs    []int64   `json:"tag_ids"`
}

func (d *artistDoc) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, nameRules...),
		validation.Field(&d.TagIDs, idListRule),
	)
}

type trackDoc struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ArtistID  int64     `json:"artist_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TagIDs    []int64   `json:"tag_ids"`
}

func (d *trackDoc) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, nameRules...),
		validation.Field(&d.ArtistID, validation.Required, validation.Min(int64(1))),
		validation.Field(&d.TagIDs, idListRule),
	)
}

type linkDoc struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ArtistID  int64     `json:"artist_id"`
	TrackID   int64     `json:"track_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TagIDs    []int64   `json:"tag_ids"`
}

func (d *linkDoc) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, nameRules...),
		validation.Field(&d.ArtistID, validation.Required, validation.Min(int64(1))),
		validation.Field(&d.TrackID, validation.Required, validation.Min(int64(1))),
		validation.Field(&d.TagIDs, idListRule),
	)
}

type tagDoc struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ArtistIDs []int64   `json:"artist_ids"`
	TrackIDs  []int64   `json:"track_ids"`
	LinkIDs   []int64   `json:"link_ids"`
}

func (d *tagDoc) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, nameRules...),
		validation.Field(&d.ArtistIDs, idListRule),
		validation.Field(&d.TrackIDs, idListRule),
		validation.Field(&d.LinkIDs, idListRule),
	)
}

// Names are limited to 255 characters, not bytes.
var nameRules = []validation.Rule{validation.Required, validation.RuneLength(1, 255)}

// idListRule rejects zero and negative ids inside association lists. Min alone
// skips zero values, hence Required.
var idListRule = validation.Each(validation.Required, validation.Min(int64(1)))

// LoadArtist decodes an artist document. Tags are returned as id-only stubs.
func LoadArtist(data []byte) (*models.Artist, error) {
	var d artistDoc
	if err := decode(data, &d); err != nil {
		return nil, err
	}
	return &models.Artist{
		ID:         d.ID,
		Name:       d.Name,
		Timestamps: models.Timestamps{CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Tags:       stubs(d.TagIDs, func(id int64) *models.Tag { return &models.Tag{ID: id} }),
	}, nil
}

// LoadTrack decodes a track document. Tags are returned as id-only stubs.
func LoadTrack(data []byte) (*models.Track, error) {
	var d trackDoc
	if err := decode(data, &d); err != nil {
		return nil, err
	}
	return &models.Track{
		ID:         d.ID,
		Name:       d.Name,
		ArtistID:   d.ArtistID,
		Timestamps: models.Timestamps{CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Tags:       stubs(d.TagIDs, func(id int64) *models.Tag { return &models.Tag{ID: id} }),
	}, nil
}

// LoadLink decodes a link document. Tags are returned as id-only stubs.
func LoadLink(data []byte) (*models.Link, error) {
	var d linkDoc
	if err := decode(data, &d); err != nil {
		return nil, err
	}
	return &models.Link{
		ID:         d.ID,
		Name:       d.Name,
		ArtistID:   d.ArtistID,
		TrackID:    d.TrackID,
		Timestamps: models.Timestamps{CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Tags:       stubs(d.TagIDs, func(id int64) *models.Tag { return &models.Tag{ID: id} }),
	}, nil
}

// LoadTag decodes a tag document. Related artists, tracks and links are
// returned as id-only stubs.
func LoadTag(data []byte) (*models.Tag, error) {
	var d tagDoc
	if err := decode(data, &d); err != nil {
		return nil, err
	}
	return &models.Tag{
		ID:         d.ID,
		Name:       d.Name,
		Timestamps: models.Timestamps{CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Artists:    stubs(d.ArtistIDs, func(id int64) *models.Artist { return &models.Artist{ID: id} }),
		Tracks:     stubs(d.TrackIDs, func(id int64) *models.Track { return &models.Track{ID: id} }),
		Links:      stubs(d.LinkIDs, func(id int64) *models.Link { return &models.Link{ID: id} }),
	}, nil
}

func decode(data []byte, target validation.Validatable) error {
	if err := json.Unmarshal(data, target); err != nil {
		return apperr.Invalid(fmt.Errorf("decode body: %w", err))
	}
	if err := target.Validate(); err != nil {
		return apperr.Invalid(err)
	}
	return nil
}

func stubs[T any](ids []int64, mk func(int64) *T) []*T {
	if ids == nil {
		return nil
	}
	out := make([]*T, len(ids))
	for i, id := range ids {
		out[i] = mk(id)
	}
	return out
}
