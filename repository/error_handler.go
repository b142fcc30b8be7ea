package repository

import (
	"database/sql"
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/zynexa/go-zynexa-server/types"
)

const pgUniqueViolation = "23505"

// handleError maps driver errors to the types errors the services branch on
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
		return types.ErrConflict
	}
	return err
}
