package store

import (
	"context"
	"database/sql"

	"github.com/starford/trakker/internal/models"
)

// CreateArtist inserts a together with its tag associations and sets a.ID.
func (s *Store) CreateArtist(ctx context.Context, a *models.Artist, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO artists (name, created_at, updated_at) VALUES (?, ?, ?)`,
			a.Name, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return translate("create artist", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return translate("create artist", err)
		}
		if err := artistTags.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		a.ID = id
		return nil
	})
}

// UpdateArtist rewrites the artist's name and, when tagIDs is non-nil, its tags.
func (s *Store) UpdateArtist(ctx context.Context, a *models.Artist, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE artists SET name = ?, updated_at = ? WHERE id = ?`,
			a.Name, a.UpdatedAt, a.ID)
		if err != nil {
			return translate("update artist", err)
		}
		if err := mustAffect(res, "artist", a.ID); err != nil {
			return err
		}
		return artistTags.replace(ctx, tx, a.ID, tagIDs)
	})
}

// DeleteArtist removes the artist, its tracks, every link pointing at the
// artist or at one of its tracks, and all association rows of those records.
func (s *Store) DeleteArtist(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM link_tags WHERE link_id IN (
				SELECT id FROM links WHERE artist_id = ?1
				OR track_id IN (SELECT id FROM tracks WHERE artist_id = ?1))`,
			`DELETE FROM links WHERE artist_id = ?1
				OR track_id IN (SELECT id FROM tracks WHERE artist_id = ?1)`,
			`DELETE FROM tag_tracks WHERE track_id IN (SELECT id FROM tracks WHERE artist_id = ?1)`,
			`DELETE FROM tracks WHERE artist_id = ?1`,
			`DELETE FROM artist_tags WHERE artist_id = ?1`,
		}
		if err := execAll(ctx, tx, "delete artist", stmts, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
		if err != nil {
			return translate("delete artist", err)
		}
		return mustAffect(res, "artist", id)
	})
}

func execAll(ctx context.Context, tx *sql.Tx, op string, stmts []string, args ...any) error {
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return translate(op, err)
		}
	}
	return nil
}
