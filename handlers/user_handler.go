package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/web-core/internal/bizerr"
	"github.com/upb/web-core/models"
	"github.com/upb/web-core/utils"
	"go.uber.org/zap"
)

// UserHandler serves the demo user API. Responses carry unmasked data;
// only the traffic log sees masked values.
type UserHandler struct {
	users  []models.User
	logger *zap.Logger
}

// NewUserHandler creates a UserHandler over a fixed user directory
func NewUserHandler(users []models.User, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleGetUser handles GET /api/v1/users/{id}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	id, err := uuid.Parse(rawID)
	if err != nil {
		HandleBizError(w, bizerr.Newf(bizerr.CodeParamError, "invalid user id: %s", rawID), h.logger)
		return
	}

	for _, user := range h.users {
		if user.ID == id {
			_ = utils.WriteOK(w, user)
			return
		}
	}
	HandleBizError(w, bizerr.Newf(bizerr.CodeNotFound, "user %s not found", id), h.logger)
}

// HandleListUsers handles GET /api/v1/users?name=
// Users whose name contains the query (case-insensitive) are returned.
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("name")))

	result := make([]models.User, 0, len(h.users))
	for _, user := range h.users {
		if name == "" || strings.Contains(strings.ToLower(user.Name), name) {
			result = append(result, user)
		}
	}
	_ = utils.WriteOK(w, result)
}

// HandleCreateUser handles POST /api/v1/users
// The validated user is echoed back with a generated id.
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user := models.NewUser(req)
	h.logger.Info("user created", zap.String("id", user.ID.String()))
	_ = utils.WriteCreated(w, user)
}
