package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/trakker/internal/apperr"
)

// translate maps SQLite constraint failures onto apperr kinds and wraps
// everything else with the operation name.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("store: %s: %w", op, apperr.Constraint("name already in use"))
		case sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("store: %s: %w", op, apperr.Constraint("duplicate association"))
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("store: %s: %w", op, apperr.Constraint("referenced record does not exist"))
		case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return fmt.Errorf("store: %s: %w", op, apperr.Constraint("required field is missing"))
		default:
			return fmt.Errorf("store: %s: %w", op, apperr.Constraint("%s", sqliteErr.Error()))
		}
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

// mustAffect turns a zero-row update or delete into a NotFound error.
func mustAffect(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
