// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package session

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/visibles-org/visibles/internal/platform/middleware"
	requestutil "github.com/visibles-org/visibles/internal/platform/request"
	"github.com/visibles-org/visibles/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	sessionService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{sessionService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register : Creates a viewer account and opens a session.
//   - POST /login    : Authenticates and opens a session.
//   - POST /logout   : Closes the current session. Idempotent.
//   - GET  /me       : Returns the authenticated account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	// Logout stays public on purpose: an expired session must still be able
	// to log out cleanly instead of earning a 401.
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Endpoint Implementations

/*
POST /api/v1/auth/register.

Request:
  - Body: registerRequest (Name, Email, Password)

Response:
  - 201: Credentials: Access token, expiry, and the new account
  - 400: Validation failures
  - 409: The email is already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.sessionService.Register(request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, credentials)
}

/*
POST /api/v1/auth/login.

Description: Every credential failure returns the same generic 401 message,
regardless of cause.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Credentials: Access token, expiry, and the account
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.sessionService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, credentials)
}

/*
POST /api/v1/auth/logout.

Description: Closes the session behind the bearer token, if any. Succeeds
with 204 whether or not a live session existed.

Response:
  - 204: Session closed or already absent
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := bearerToken(request)
	if token != "" {
		if err := handler.sessionService.Logout(request.Context(), token); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/auth/me.

Response:
  - 200: User: The authenticated account
  - 401: No live session
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.sessionService.Current(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// bearerToken extracts the raw token from the Authorization header, or ""
// when the header is absent or malformed.
func bearerToken(request *http.Request) string {
	parts := strings.Split(request.Header.Get("Authorization"), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
