package store

import (
	"context"
	"database/sql"

	"github.com/starford/trakker/internal/models"
)

// TagRelations carries the association id sets written with a tag. A nil
// slice leaves that association set unchanged on update.
type TagRelations struct {
	ArtistIDs []int64
	TrackIDs  []int64
	LinkIDs   []int64
}

// CreateTag inserts t together with its associations and sets t.ID.
func (s *Store) CreateTag(ctx context.Context, t *models.Tag, rel TagRelations) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name, created_at, updated_at) VALUES (?, ?, ?)`,
			t.Name, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return translate("create tag", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return translate("create tag", err)
		}
		if err := writeTagRelations(ctx, tx, id, rel); err != nil {
			return err
		}
		t.ID = id
		return nil
	})
}

// UpdateTag rewrites the tag's name and any supplied association sets.
func (s *Store) UpdateTag(ctx context.Context, t *models.Tag, rel TagRelations) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tags SET name = ?, updated_at = ? WHERE id = ?`,
			t.Name, t.UpdatedAt, t.ID)
		if err != nil {
			return translate("update tag", err)
		}
		if err := mustAffect(res, "tag", t.ID); err != nil {
			return err
		}
		return writeTagRelations(ctx, tx, t.ID, rel)
	})
}

// DeleteTag removes the tag and every association row that references it.
// Tagged artists, tracks and links are kept.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range []assoc{tagArtists, tagTracks, tagLinks} {
			if err := a.clear(ctx, tx, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return translate("delete tag", err)
		}
		return mustAffect(res, "tag", id)
	})
}

func writeTagRelations(ctx context.Context, tx *sql.Tx, tagID int64, rel TagRelations) error {
	if err := tagArtists.replace(ctx, tx, tagID, rel.ArtistIDs); err != nil {
		return err
	}
	if err := tagTracks.replace(ctx, tx, tagID, rel.TrackIDs); err != nil {
		return err
	}
	return tagLinks.replace(ctx, tx, tagID, rel.LinkIDs)
}
