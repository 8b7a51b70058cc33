package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hpnchanel/userapi/internal/handler/dto"
	"github.com/hpnchanel/userapi/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A malformed body is treated as an empty field set; validation
		// reports the missing fields.
		req = dto.CreateUserRequest{}
	}

	input := service.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
	}

	user, err := h.svc.CreateUser(r.Context(), input)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadRequest, vErr.Fields)
		case errors.Is(err, service.ErrEmailTaken):
			h.writeError(w, http.StatusConflict, "User with this email already exists")
		default:
			h.logger.Error("create_user_failed", "error", err)
			h.writeError(w, http.StatusBadRequest, "Database error occurred")
		}
		return
	}

	h.logger.Info("user_created", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list_users_failed", "error", err)
		h.writeError(w, http.StatusBadRequest, "Database error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get_user_failed", "user_id", id, "error", err)
		h.writeError(w, http.StatusBadRequest, "Database error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Same policy as Create: an unreadable body is an empty patch.
		req = dto.UpdateUserRequest{}
	}

	input := service.UpdateUserInput{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	}

	user, err := h.svc.UpdateUser(r.Context(), input)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.writeError(w, http.StatusNotFound, "User not found")
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadRequest, vErr.Fields)
		case errors.Is(err, service.ErrEmailTaken):
			h.writeError(w, http.StatusBadRequest, "Email already exists")
		default:
			h.logger.Error("update_user_failed", "user_id", id, "error", err)
			h.writeError(w, http.StatusBadRequest, "Database error occurred")
		}
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete_user_failed", "user_id", id, "error", err)
		h.writeError(w, http.StatusBadRequest, "Database error occurred")
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "User deleted"})
}

// userID parses the {id} route parameter. The route pattern restricts it to
// digits, so a parse failure only happens when the handler is mounted
// differently; it is reported as not found either way.
func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return 0, false
	}
	return id, true
}

// writeError writes a generic error response.
func (h *UserHandler) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}
