package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/usermgmt/internal/db/sqlc"
	"github.com/sundayezeilo/usermgmt/internal/errx"
)

// store is an internal interface that abstracts *db.Store.
type store interface {
	db.Querier
	ExecTx(ctx context.Context, fn func(db.Querier) error) error
}

type repo struct {
	s store
}

// NewRepository creates a new Repository implementation
func NewRepository(s store) Repository {
	return &repo{s: s}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time.UTC(), nil
}

func toDomainUser(x db.User) (User, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return User{}, err
	}
	updatedAt, err := mustTime(x.UpdatedAt, "updated_at")
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           x.ID,
		FirstName:    x.FirstName,
		LastName:     x.LastName,
		Email:        x.Email,
		PasswordHash: x.Password,
		Role:         Role(x.Role),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case errors.Is(err, ErrEmailTaken), isEmailUniqueViolation(err):
		return errx.E(op, errx.Conflict, ErrEmailTaken)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *repo) Create(ctx context.Context, u User) (User, error) {
	const op = "user.repo.Create"

	var row db.User
	err := r.s.ExecTx(ctx, func(q db.Querier) error {
		_, err := q.GetUserByEmail(ctx, u.Email)
		switch {
		case err == nil:
			return ErrEmailTaken
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}

		row, err = q.CreateUser(ctx, db.CreateUserParams{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Password:  u.PasswordHash,
			Role:      string(u.Role),
		})
		return err
	})
	if err != nil {
		return User{}, mapRepoError(op, err)
	}

	created, err := toDomainUser(row)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}
	return created, nil
}

func (r *repo) List(ctx context.Context) ([]User, error) {
	const op = "user.repo.List"

	rows, err := r.s.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		u, err := toDomainUser(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (User, error) {
	const op = "user.repo.GetByID"

	row, err := r.s.GetUserByID(ctx, id)
	if err != nil {
		return User{}, mapRepoError(op, err)
	}

	u, err := toDomainUser(row)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}
	return u, nil
}
