package postgres

import (
	"database/sql"
	"errors"
)

// IsNoRowsError reports whether err means "row not found".
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
