package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roadtrip/internal/domain"
	"roadtrip/internal/repository"
	"roadtrip/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Email string `json:"email"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TripCount int       `json:"trip_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(c, service.ErrInvalidEmail)
		return
	}

	// Check if user already exists
	existing, err := h.userRepo.GetByEmail(c.Request.Context(), email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": service.ErrUserAlreadyExists.Error(),
			"user":  toUserResponse(existing),
		})
		return
	}

	user := &domain.User{
		ID:    uuid.New().String(),
		Email: email,
	}

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}

	respondJSON(c, http.StatusOK, response)
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		TripCount: u.TripCount,
		CreatedAt: u.CreatedAt,
	}
}
