package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
)

// assoc describes one side of a many-to-many association table.
type assoc struct {
	table string
	owner string // column holding the id of the record being written
	other string // column holding the related id
}

var (
	artistTags = assoc{table: "artist_tags", owner: "artist_id", other: "tag_id"}
	trackTags  = assoc{table: "tag_tracks", owner: "track_id", other: "tag_id"}
	linkTags   = assoc{table: "link_tags", owner: "link_id", other: "tag_id"}
	tagArtists = assoc{table: "artist_tags", owner: "tag_id", other: "artist_id"}
	tagTracks  = assoc{table: "tag_tracks", owner: "tag_id", other: "track_id"}
	tagLinks   = assoc{table: "link_tags", owner: "tag_id", other: "link_id"}
)

// replace swaps the association set of ownerID for ids. A nil ids slice leaves
// the current set untouched.
func (a assoc) replace(ctx context.Context, tx *sql.Tx, ownerID int64, ids []int64) error {
	if ids == nil {
		return nil
	}
	op := "replace " + a.table
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, a.table, a.owner), ownerID); err != nil {
		return translate(op, err)
	}
	if len(ids) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, ?)`, a.table, a.owner, a.other))
	if err != nil {
		return translate(op, err)
	}
	defer stmt.Close()

	for _, id := range dedupe(ids) {
		if _, err := stmt.ExecContext(ctx, ownerID, id); err != nil {
			return translate(op, err)
		}
	}
	return nil
}

// clear removes every association row for ownerID.
func (a assoc) clear(ctx context.Context, tx *sql.Tx, ownerID int64) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, a.table, a.owner), ownerID)
	return translate("clear "+a.table, err)
}

func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
