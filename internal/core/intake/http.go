// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package intake

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/visibles-org/visibles/internal/platform/middleware"
	requestutil "github.com/visibles-org/visibles/internal/platform/request"
	"github.com/visibles-org/visibles/internal/platform/respond"
	"github.com/visibles-org/visibles/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for the guided intake flow.
type Handler struct {
	service *Service
}

// NewHandler constructs a new intake [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the intake endpoints.
//
// The whole flow is a field-staff tool; every route requires at least
// [sec.RoleSocialWorker].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleSocialWorker))

	router.Post("/", handler.start)
	router.Post("/reformulate", handler.reformulate)

	router.Route("/{draftID}", func(r chi.Router) {
		r.Get("/", handler.get)
		r.Put("/", handler.update)
		r.Post("/advance", handler.advance)
		r.Post("/back", handler.back)
		r.Post("/submit", handler.submit)
	})

	return router
}

// # Endpoint Implementations

/*
POST /api/v1/intake.

Response:
  - 201: Draft: A fresh draft on the identity step
*/
func (handler *Handler) start(writer http.ResponseWriter, request *http.Request) {
	draft, err := handler.service.Start(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, draft)
}

/*
GET /api/v1/intake/{draftID}.

Response:
  - 200: Draft
  - 404: Unknown or expired draft
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	draft, err := handler.service.Get(request.Context(), chi.URLParam(request, "draftID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, draft)
}

/*
PUT /api/v1/intake/{draftID}.

Description: Partial update; absent fields are left untouched. Nothing is
validated before submission.

Request:
  - Body: Patch (name, location, photo, raw_story; all optional)

Response:
  - 200: Draft: The updated draft
  - 404: Unknown or expired draft
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := handler.service.Update(request.Context(), chi.URLParam(request, "draftID"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, draft)
}

/*
POST /api/v1/intake/{draftID}/advance.

Response:
  - 200: Draft: The draft on its next step
  - 404: Unknown or expired draft
*/
func (handler *Handler) advance(writer http.ResponseWriter, request *http.Request) {
	draft, err := handler.service.Advance(request.Context(), chi.URLParam(request, "draftID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, draft)
}

/*
POST /api/v1/intake/{draftID}/back.

Response:
  - 200: Draft: The draft on its previous step, fields intact
  - 404: Unknown or expired draft
*/
func (handler *Handler) back(writer http.ResponseWriter, request *http.Request) {
	draft, err := handler.service.Back(request.Context(), chi.URLParam(request, "draftID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, draft)
}

/*
POST /api/v1/intake/{draftID}/submit.

Description: Runs the single validation gate and creates the published
profile. The draft is removed on success.

Response:
  - 201: profile.Profile: The persisted, publicly listed profile
  - 400: Missing name or raw story
  - 404: Unknown or expired draft
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	persisted, err := handler.service.Submit(request.Context(), chi.URLParam(request, "draftID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, persisted)
}

// reformulateInput is the JSON payload for a reformulation preview.
type reformulateInput struct {
	Text string `json:"text"`
}

// reformulateOutput carries the preview back to the story step.
type reformulateOutput struct {
	Text string `json:"text"`
}

/*
POST /api/v1/intake/reformulate.

Description: Stateless preview used by the story step. On provider failure
the input text comes back unchanged, so the endpoint never fails the flow.

Request:
  - Body: reformulateInput (text)

Response:
  - 200: reformulateOutput: The reformulated narrative
*/
func (handler *Handler) reformulate(writer http.ResponseWriter, request *http.Request) {
	var input reformulateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	text := handler.service.Reformulate(request.Context(), input.Text)
	respond.OK(writer, reformulateOutput{Text: text})
}
