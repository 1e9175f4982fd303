package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/starford/trakker/internal/apperr"
	"github.com/starford/trakker/internal/models"
)

// CreateLink inserts l together with its tag associations and sets l.ID.
func (s *Store) CreateLink(ctx context.Context, l *models.Link, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkLinkArtist(ctx, tx, l); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO links (name, artist_id, track_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			l.Name, l.ArtistID, l.TrackID, l.CreatedAt, l.UpdatedAt)
		if err != nil {
			return translate("create link", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return translate("create link", err)
		}
		if err := linkTags.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		l.ID = id
		return nil
	})
}

// UpdateLink rewrites the link's scalars and foreign keys and, when tagIDs is non-nil, its tags.
func (s *Store) UpdateLink(ctx context.Context, l *models.Link, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkLinkArtist(ctx, tx, l); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE links SET name = ?, artist_id = ?, track_id = ?, updated_at = ? WHERE id = ?`,
			l.Name, l.ArtistID, l.TrackID, l.UpdatedAt, l.ID)
		if err != nil {
			return translate("update link", err)
		}
		if err := mustAffect(res, "link", l.ID); err != nil {
			return err
		}
		return linkTags.replace(ctx, tx, l.ID, tagIDs)
	})
}

// DeleteLink removes the link and its tag associations.
func (s *Store) DeleteLink(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := linkTags.clear(ctx, tx, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
		if err != nil {
			return translate("delete link", err)
		}
		return mustAffect(res, "link", id)
	})
}

// checkLinkArtist enforces the optional artist-match rule. A missing track is
// left for the foreign key to report.
func (s *Store) checkLinkArtist(ctx context.Context, tx *sql.Tx, l *models.Link) error {
	if !s.linkArtistMatch {
		return nil
	}
	var artistID int64
	err := tx.QueryRowContext(ctx, `SELECT artist_id FROM tracks WHERE id = ?`, l.TrackID).Scan(&artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return translate("check link artist", err)
	}
	if artistID != l.ArtistID {
		return apperr.Constraint("track %d belongs to artist %d, not %d", l.TrackID, artistID, l.ArtistID)
	}
	return nil
}
