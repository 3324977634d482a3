package user

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/sundayezeilo/usermgmt/internal/errx"
)

const (
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

var emailValidator = validator.New()

// CreateUserRequest represents the parameters for creating a new user.
type CreateUserRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role // Optional: defaults to RoleUser
}

// Service defines the user management use cases.
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

type service struct {
	repo       Repository
	bcryptCost int
	hash       func(password []byte, cost int) ([]byte, error)
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	BcryptCost int // default: bcrypt.DefaultCost
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	cost := config.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &service{
		repo:       repo,
		bcryptCost: cost,
		hash:       bcrypt.GenerateFromPassword,
	}
}

// Create validates req, hashes the password and stores the new user.
func (s *service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	const op = "user.service.Create"

	req = normalizeCreateRequest(req)
	if err := validateCreateRequest(req); err != nil {
		return User{}, errx.E(op, errx.Invalid, err)
	}

	hash, err := s.hash([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}

	created, err := s.repo.Create(ctx, User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err != nil {
		return User{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]User, error) {
	const op = "user.service.List"

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return users, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (User, error) {
	const op = "user.service.GetByID"

	if id <= 0 {
		return User{}, errx.E(op, errx.Invalid, errors.New("id must be positive"))
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, errx.E(op, errx.KindOf(err), err)
	}
	return u, nil
}

func normalizeCreateRequest(req CreateUserRequest) CreateUserRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = RoleUser
	}
	return req
}

func validateCreateRequest(req CreateUserRequest) error {
	if req.FirstName == "" {
		return errors.New("first name cannot be empty")
	}
	if len(req.FirstName) > MaxNameLength {
		return errors.New("first name too long (max 100 characters)")
	}
	if req.LastName == "" {
		return errors.New("last name cannot be empty")
	}
	if len(req.LastName) > MaxNameLength {
		return errors.New("last name too long (max 100 characters)")
	}

	if req.Email == "" {
		return errors.New("email cannot be empty")
	}
	if len(req.Email) > MaxEmailLength {
		return errors.New("email too long (max 254 characters)")
	}
	if err := emailValidator.Var(req.Email, "email"); err != nil {
		return errors.New("invalid email format")
	}

	if len(req.Password) < MinPasswordLength {
		return errors.New("password too short (minimum 8 characters)")
	}
	if len(req.Password) > MaxPasswordLength {
		return errors.New("password too long (maximum 72 bytes)")
	}

	if !req.Role.Valid() {
		return errors.New("role must be ADMIN or USER")
	}
	return nil
}
