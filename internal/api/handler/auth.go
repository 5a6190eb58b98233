package handler

import (
	"mime"
	"net/http"

	"github.com/Rrens/article-hub/internal/api/middleware"
	"github.com/Rrens/article-hub/internal/api/response"
	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.users.Register(r.Context(), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, user)
}

// Login handles user login. It accepts a JSON body or an OAuth2 password
// form with username and password fields.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(maxBodyBytes) }
		}
		if err := parse(); err != nil {
			response.BadRequest(w, "invalid form body")
			return
		}
		input.Email = r.PostFormValue("username")
		input.Password = r.PostFormValue("password")
		if !validateStruct(w, &input) {
			return
		}
	default:
		if !decodeAndValidate(w, r, &input) {
			return
		}
	}

	tokens, err := h.users.Login(r.Context(), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, tokens)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tokens, err := h.users.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, tokens)
}

// Profile returns the current authenticated user
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, domain.ErrUnauthenticated)
		return
	}

	response.OK(w, h.users.Profile(user))
}
