package store

import (
	"context"
	"database/sql"

	"github.com/starford/trakker/internal/apperr"
	"github.com/starford/trakker/internal/models"
)

// CreateTrack inserts t together with its tag associations and sets t.ID.
func (s *Store) CreateTrack(ctx context.Context, t *models.Track, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (name, artist_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			t.Name, t.ArtistID, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return translate("create track", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return translate("create track", err)
		}
		if err := trackTags.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		t.ID = id
		return nil
	})
}

// UpdateTrack rewrites the track's name and artist and, when tagIDs is non-nil, its tags.
func (s *Store) UpdateTrack(ctx context.Context, t *models.Track, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tracks SET name = ?, artist_id = ?, updated_at = ? WHERE id = ?`,
			t.Name, t.ArtistID, t.UpdatedAt, t.ID)
		if err != nil {
			return translate("update track", err)
		}
		if err := mustAffect(res, "track", t.ID); err != nil {
			return err
		}
		if s.linkArtistMatch {
			var n int
			err := tx.QueryRowContext(ctx,
				`SELECT count(*) FROM links WHERE track_id = ? AND artist_id <> ?`,
				t.ID, t.ArtistID).Scan(&n)
			if err != nil {
				return translate("update track", err)
			}
			if n > 0 {
				return apperr.Constraint("track %d has %d links by another artist", t.ID, n)
			}
		}
		return trackTags.replace(ctx, tx, t.ID, tagIDs)
	})
}

// DeleteTrack removes the track, its links and their association rows.
func (s *Store) DeleteTrack(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM link_tags WHERE link_id IN (SELECT id FROM links WHERE track_id = ?1)`,
			`DELETE FROM links WHERE track_id = ?1`,
			`DELETE FROM tag_tracks WHERE track_id = ?1`,
		}
		if err := execAll(ctx, tx, "delete track", stmts, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
		if err != nil {
			return translate("delete track", err)
		}
		return mustAffect(res, "track", id)
	})
}
