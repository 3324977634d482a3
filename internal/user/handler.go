package user

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sundayezeilo/usermgmt/internal/errx"
	"github.com/sundayezeilo/usermgmt/internal/httpx"
)

// IDCodec converts database keys to the opaque tokens clients see.
// *hashid.Codec satisfies it.
type IDCodec interface {
	Encode(id int64) (string, error)
	Decode(token string) (int64, bool)
}

// HTTPCreateUserRequest represents the JSON request body for creating a user.
type HTTPCreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN USER"`
}

// UserResponse is the public representation of a user. The password hash
// is never included and the ID is a codec token.
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Handler provides HTTP handlers for user management.
type Handler struct {
	service Service
	codec   IDCodec
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Codec   IDCodec
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		codec:   cfg.Codec,
		logger:  logger,
	}
}

// CreateUser handles POST /user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeAndValidate[HTTPCreateUserRequest](r)
	if err != nil {
		var fields httpx.FieldErrors
		if errors.As(err, &fields) {
			logger.WarnContext(ctx, "request validation failed",
				"error", err.Error(),
			)
			httpx.WriteError(w, http.StatusBadRequest, "validation_failed",
				"request validation failed", fields)
			return
		}

		logger.WarnContext(ctx, "failed to decode request",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	u, err := h.service.Create(ctx, CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      Role(req.Role),
	})
	if err != nil {
		h.handleServiceError(ctx, w, err, "create user")
		return
	}

	resp, err := h.toResponse(u)
	if err != nil {
		h.handleServiceError(ctx, w, err, "create user")
		return
	}

	logger.InfoContext(ctx, "user created",
		"user_id", resp.ID,
		"role", resp.Role,
	)

	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// ListUsers handles GET /user/list.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	users, err := h.service.List(ctx)
	if err != nil {
		h.handleServiceError(ctx, w, err, "list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp, err := h.toResponse(u)
		if err != nil {
			h.handleServiceError(ctx, w, err, "list users")
			return
		}
		out = append(out, resp)
	}

	logger.DebugContext(ctx, "users listed", "count", len(out))

	httpx.WriteJSON(w, http.StatusOK, out)
}

// GetUser handles GET /user/id/{userId}, where userId is a codec token.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	token := r.PathValue("userId")
	id, ok := h.codec.Decode(token)
	if !ok || id == 0 {
		logger.WarnContext(ctx, "invalid user id token", "token", token)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_id", "Invalid ID", nil)
		return
	}

	u, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err, "get user")
		return
	}

	resp, err := h.toResponse(u)
	if err != nil {
		h.handleServiceError(ctx, w, err, "get user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func (h *Handler) toResponse(u User) (UserResponse, error) {
	const op = "user.handler.toResponse"

	token, err := h.codec.Encode(u.ID)
	if err != nil {
		return UserResponse{}, errx.E(op, errx.Internal, err)
	}

	return UserResponse{
		ID:        token,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// handleServiceError maps service errors to HTTP responses.
func (h *Handler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error, action string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"request_id", httpx.GetRequestID(ctx),
	}

	message := "Unable to " + action + " at this time. Please try again."

	switch kind {
	case errx.Conflict:
		h.logger.WarnContext(ctx, "user conflict", logAttrs...)
		message = "A user with this email already exists"

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid user request", logAttrs...)
		message = errx.Message(err)

	case errx.NotFound:
		h.logger.WarnContext(ctx, "user not found", logAttrs...)
		message = "user doesn't exist"

	case errx.Unavailable:
		h.logger.ErrorContext(ctx, "service unavailable", logAttrs...)

	default:
		h.logger.ErrorContext(ctx, "unexpected error", append(logAttrs, "action", action)...)
	}

	httpx.WriteErrorKind(w, kind, message)
}
