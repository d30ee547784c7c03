// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/visibles-org/visibles/internal/platform/request"
	"github.com/visibles-org/visibles/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for profile comments.
//
// Routes are mounted beneath the profile page path, so the profile's public
// identifier arrives as a parent URL parameter.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comment [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the comment endpoints for one profile page.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	return router
}

/*
GET /api/v1/profiles/{publicID}/comments.

Response:
  - 200: []Comment: Chronological comments, oldest first
  - 404: The profile is not publicly listed
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	profilePublicID := chi.URLParam(request, "publicID")

	comments, err := handler.service.ListForProfile(request.Context(), profilePublicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comments)
}

// commentInput is the JSON payload for posting a comment.
type commentInput struct {
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
}

/*
POST /api/v1/profiles/{publicID}/comments.

Request:
  - author_name: string (required)
  - body: string (required)

Response:
  - 201: Comment: The stored message
  - 400: Missing or oversized fields
  - 404: The profile is not publicly listed
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	profilePublicID := chi.URLParam(request, "publicID")

	var input commentInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), profilePublicID, input.AuthorName, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}
