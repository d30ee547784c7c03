// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package profile provides the HTTP interface for the public directory and the
admin management surface.

# Routing Strategy

  - Public: directory browsing, single profile pages, QR/share endpoints.
    Accessible anonymously; storage failures degrade to error envelopes the
    frontend renders as an empty directory with an operator notice.
  - Management: create/update, visibility and archive toggles, and bulk
    operations require field-staff roles; irreversible deletion requires the
    admin role.

The handler translates between the web/JSON layer and the domain [Service].
*/
package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/middleware"
	requestutil "github.com/visibles-org/visibles/internal/platform/request"
	"github.com/visibles-org/visibles/internal/platform/respond"
	"github.com/visibles-org/visibles/internal/platform/sec"
	"github.com/visibles-org/visibles/pkg/convert"
	"github.com/visibles-org/visibles/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for profile discovery and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new profile [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the public directory endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.directory)
	router.Get("/{publicID}", handler.getProfile)
	router.Get("/{publicID}/qr", handler.qrCode)
	router.Post("/{publicID}/share", handler.recordShare)

	return router
}

// AdminRoutes returns the staff management endpoints.
//
// The whole group requires at least [sec.RoleSocialWorker]; destructive
// deletes additionally require [sec.RoleAdmin].
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleSocialWorker))

	router.Get("/", handler.adminList)
	router.Post("/", handler.saveProfile)
	router.Put("/{publicID}", handler.updateProfile)
	router.Patch("/{publicID}/visibility", handler.setVisibility)
	router.Patch("/{publicID}/archive", handler.setArchived)
	router.Post("/bulk", handler.bulk)

	router.Group(func(destructive chi.Router) {
		destructive.Use(middleware.RequireRole(sec.RoleAdmin))
		destructive.Delete("/{publicID}", handler.deleteProfile)
	})

	return router
}

// # Public Endpoints

/*
GET /api/v1/profiles.

Description: Returns the public directory grouped by location, filtered and
sorted by the query-string state. The same query string always yields the
same grouped output for the same underlying data.

Request:
  - q: string (Case-insensitive text search over name/story/location)
  - urgent: bool (Only profiles at or above the urgency threshold)
  - needs: string (Comma-separated tags, substring-matched against needs)
  - sort: string (recent | name | urgency)

Response:
  - 200: []Group: Location groups
  - 503: Store unreachable; clients render an empty directory plus a notice
*/
func (handler *Handler) directory(writer http.ResponseWriter, request *http.Request) {
	state := FromValues(request.URL.Query())

	groups, err := handler.service.Directory(request.Context(), state)
	if err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Directory is temporarily unavailable"))
		return
	}
	if groups == nil {
		groups = []Group{}
	}

	respond.OK(writer, groups)
}

/*
GET /api/v1/profiles/{publicID}.

Description: Returns one public profile page payload and records a view.
A missing identifier is a normal 404, not a server fault.

Response:
  - 200: Profile
  - 404: Unknown public identifier, or profile not publicly listed
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	publicID := requestutil.Param(request, "publicID")

	found, err := handler.service.GetByPublicID(request.Context(), publicID, true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
GET /api/v1/profiles/{publicID}/qr.

Description: Renders a PNG QR code pointing at the shareable profile URL and
bumps the qr_downloads counter.

Request:
  - size: int (Square pixel size, default 256)

Response:
  - 200: image/png
  - 404: Unknown or unlisted profile
*/
func (handler *Handler) qrCode(writer http.ResponseWriter, request *http.Request) {
	publicID := requestutil.Param(request, "publicID")
	size := convert.ToIntD(request.URL.Query().Get("size"), 256)

	png, err := handler.service.QRCode(request.Context(), publicID, size)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", "image/png")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(png)
}

/*
POST /api/v1/profiles/{publicID}/share.

Description: Records that the profile link was shared.

Response:
  - 204: Counter bumped
  - 404: Unknown public identifier
*/
func (handler *Handler) recordShare(writer http.ResponseWriter, request *http.Request) {
	publicID := requestutil.Param(request, "publicID")

	if err := handler.service.RecordShare(request.Context(), publicID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Management Endpoints

/*
GET /api/v1/admin/profiles.

Description: Returns every profile, including archived and unpublished ones,
page by page. Never served from the public listing cache.

Request:
  - page: int (1-indexed, default 1)
  - limit: int (default 20, capped)

Response:
  - 200: []Profile with pagination metadata
*/
func (handler *Handler) adminList(writer http.ResponseWriter, request *http.Request) {
	profiles, err := handler.service.AdminList(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	total := len(profiles)

	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	page := profiles[start:end]
	if page == nil {
		page = []*Profile{}
	}

	respond.Paginated(writer, page, pagination.NewMeta(params.Page, params.Limit, total))
}

// profileInput is the JSON payload for creating or updating a profile.
type profileInput struct {
	PublicID    string   `json:"public_id"`
	Name        string   `json:"name"`
	RawStory    string   `json:"raw_story"`
	Story       string   `json:"story"`
	Needs       string   `json:"needs"`
	UrgentNeeds []string `json:"urgent_needs"`
	Location    string   `json:"location"`
	ImageURL    string   `json:"image_url"`
	IsPublic    bool     `json:"is_public"`
	IsArchived  bool     `json:"is_archived"`
	IsVerified  bool     `json:"is_verified"`
	Meta        Metadata `json:"meta"`
}

// toEntity maps the transport payload onto a domain entity.
func (input profileInput) toEntity() *Profile {
	return &Profile{
		PublicID:    input.PublicID,
		Name:        input.Name,
		RawStory:    input.RawStory,
		Story:       input.Story,
		Needs:       input.Needs,
		UrgentNeeds: input.UrgentNeeds,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
		IsPublic:    input.IsPublic,
		IsArchived:  input.IsArchived,
		IsVerified:  input.IsVerified,
		Meta:        input.Meta,
	}
}

/*
POST /api/v1/admin/profiles.

Description: Creates a profile (or overwrites the record with the same public
identifier; the write is an upsert). A payload without a public identifier
receives a generated one.

Response:
  - 201: Profile (persisted record, including assigned identifiers)
  - 400: Validation failure
*/
func (handler *Handler) saveProfile(writer http.ResponseWriter, request *http.Request) {
	var input profileInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	persisted, err := handler.service.Save(request.Context(), input.toEntity())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, persisted)
}

/*
PUT /api/v1/admin/profiles/{publicID}.

Description: Full update of an existing profile. The path identifier wins
over any public_id in the body; public identifiers are immutable.

Response:
  - 200: Profile
  - 400: Validation failure
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	var input profileInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity := input.toEntity()
	entity.PublicID = requestutil.Param(request, "publicID")

	persisted, err := handler.service.Save(request.Context(), entity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, persisted)
}

// flagInput is the JSON payload for single-flag toggles.
type flagInput struct {
	IsPublic   *bool `json:"is_public"`
	IsArchived *bool `json:"is_archived"`
}

/*
PATCH /api/v1/admin/profiles/{publicID}/visibility.

Response:
  - 204: Flag updated
  - 400: Missing is_public field
  - 404: Unknown public identifier
*/
func (handler *Handler) setVisibility(writer http.ResponseWriter, request *http.Request) {
	var input flagInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.IsPublic == nil {
		respond.Error(writer, request, apperr.ValidationError("is_public is required"))
		return
	}

	publicID := requestutil.Param(request, "publicID")
	if err := handler.service.SetVisibility(request.Context(), publicID, *input.IsPublic); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/admin/profiles/{publicID}/archive.

Response:
  - 204: Flag updated
  - 400: Missing is_archived field
  - 404: Unknown public identifier
*/
func (handler *Handler) setArchived(writer http.ResponseWriter, request *http.Request) {
	var input flagInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.IsArchived == nil {
		respond.Error(writer, request, apperr.ValidationError("is_archived is required"))
		return
	}

	publicID := requestutil.Param(request, "publicID")
	if err := handler.service.SetArchived(request.Context(), publicID, *input.IsArchived); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// bulkInput is the JSON payload for multi-select operations.
type bulkInput struct {
	Action    BulkAction `json:"action"`
	PublicIDs []string   `json:"public_ids"`
}

/*
POST /api/v1/admin/profiles/bulk.

Description: Applies the action independently per item with no rollback.
204-style all-or-nothing semantics do not apply here: the response always
lists each item's outcome so staff can see exactly which records failed.
Bulk deletion is restricted to admins.

Response:
  - 200: []BulkResult (per-item outcomes, input order)
  - 400: Unknown action or empty selection
  - 403: Bulk delete attempted without the admin role
*/
func (handler *Handler) bulk(writer http.ResponseWriter, request *http.Request) {
	var input bulkInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if len(input.PublicIDs) == 0 {
		respond.Error(writer, request, apperr.ValidationError("No profiles selected"))
		return
	}

	// Deletion is irreversible; the group-level social_worker gate is not enough.
	if input.Action == BulkDelete {
		claims := requestutil.Claims(request)
		if claims == nil || !sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin) {
			respond.Error(writer, request, apperr.Forbidden("Bulk deletion requires the admin role"))
			return
		}
	}

	results, err := handler.service.Bulk(request.Context(), input.Action, input.PublicIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, results)
}

/*
DELETE /api/v1/admin/profiles/{publicID}.

Description: Irreversible removal. The admin frontend gates this behind an
explicit confirmation dialog.

Response:
  - 204: Profile removed
  - 404: Unknown public identifier
*/
func (handler *Handler) deleteProfile(writer http.ResponseWriter, request *http.Request) {
	publicID := requestutil.Param(request, "publicID")

	if err := handler.service.Delete(request.Context(), publicID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
