package user

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEmailTaken is reported when a user with the same email already exists.
var ErrEmailTaken = errors.New("email already exists")

func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" &&
		pgErr.ConstraintName == "users_email_key"
}
