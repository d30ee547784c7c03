// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package intake

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/visibles-org/visibles/internal/ai"
	"github.com/visibles-org/visibles/internal/core/profile"
	"github.com/visibles-org/visibles/internal/platform/validate"
	"github.com/visibles-org/visibles/pkg/uuidv7"
)

// # Contracts & Types

// Analyzer defines the generative operations the flow relies on.
type Analyzer interface {
	Reformulate(context context.Context, rawText string) string
	AnalyzeFull(context context.Context, rawText string, image *ai.ImagePayload) ai.Analysis
}

// ProfileSaver persists the profile produced by a submitted intake.
type ProfileSaver interface {
	Save(context context.Context, record *profile.Profile) (*profile.Profile, error)
}

// Patch carries the editable draft fields. Nil pointers leave a field
// untouched, so any step can save just its own inputs.
type Patch struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Photo    *string `json:"photo"`
	RawStory *string `json:"raw_story"`
}

// Service orchestrates the guided intake flow.
type Service struct {
	drafts   DraftStore
	analyzer Analyzer
	profiles ProfileSaver
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(drafts DraftStore, analyzer Analyzer, profiles ProfileSaver, logger *slog.Logger) *Service {
	return &Service{
		drafts:   drafts,
		analyzer: analyzer,
		profiles: profiles,
		logger:   logger,
	}
}

// # Draft Lifecycle

/*
Start opens a fresh draft positioned on the first step.

Parameters:
  - context: context.Context

Returns:
  - *Draft: The stored empty draft
  - error: Storage failures
*/
func (service *Service) Start(context context.Context) (*Draft, error) {
	now := time.Now()
	draft := &Draft{
		ID:        uuidv7.New(),
		Step:      StepIdentity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.drafts.Save(context, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

/*
Get returns one draft by identifier.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Draft: The stored draft
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Get(context context.Context, id string) (*Draft, error) {
	return service.drafts.Get(context, id)
}

/*
Update applies a partial edit to a draft. No validation runs here; partial,
messy, out-of-order input is the normal case mid-interview.

Parameters:
  - context: context.Context
  - id: string
  - patch: Patch

Returns:
  - *Draft: The updated draft
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Update(context context.Context, id string, patch Patch) (*Draft, error) {
	draft, err := service.drafts.Get(context, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		draft.Name = *patch.Name
	}
	if patch.Location != nil {
		draft.Location = *patch.Location
	}
	if patch.Photo != nil {
		draft.Photo = *patch.Photo
	}
	if patch.RawStory != nil {
		draft.RawStory = *patch.RawStory
	}
	draft.UpdatedAt = time.Now()

	if err := service.drafts.Save(context, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

/*
Advance moves a draft one step forward. Unconditional: an empty step can be
skipped and filled in later.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Draft: The draft on its new step
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Advance(context context.Context, id string) (*Draft, error) {
	return service.move(context, id, Step.Next)
}

/*
Back moves a draft one step backward. Unconditional, and never loses any
already-entered field.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Draft: The draft on its new step
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Back(context context.Context, id string) (*Draft, error) {
	return service.move(context, id, Step.Prev)
}

func (service *Service) move(context context.Context, id string, step func(Step) Step) (*Draft, error) {
	draft, err := service.drafts.Get(context, id)
	if err != nil {
		return nil, err
	}

	draft.Step = step(draft.Step)
	draft.UpdatedAt = time.Now()

	if err := service.drafts.Save(context, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

// # Submission

/*
Submit runs the single validation gate, builds the profile through the
generative analysis, and persists it.

Description: The only hard requirements are a name and a raw story; every
other field is optional. The analysis runs best-effort: when the provider is
down the profile still gets created, carrying the fixed unavailability
notice as its story. Submitted profiles are published immediately; the whole
point of the flow is visibility. The draft is deleted only after the profile
is safely stored.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *profile.Profile: The persisted, publicly listed profile
  - error: Validation, apperr.NotFound, or persistence failures
*/
func (service *Service) Submit(context context.Context, id string) (*profile.Profile, error) {
	draft, err := service.drafts.Get(context, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.
		Required("name", strings.TrimSpace(draft.Name)).
		Required("raw_story", strings.TrimSpace(draft.RawStory))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	analysis := service.analyzer.AnalyzeFull(context, draft.RawStory, decodeDataURI(draft.Photo))
	if analysis.FromFallback {
		service.logger.Warn("intake_analysis_degraded", slog.String("draft_id", draft.ID))
	}

	record := &profile.Profile{
		Name:     strings.TrimSpace(draft.Name),
		RawStory: draft.RawStory,
		Story:    composeStory(analysis),
		Needs:    analysis.Needs,
		Location: strings.TrimSpace(draft.Location),
		ImageURL: draft.Photo,
		IsPublic: true,
	}

	persisted, err := service.profiles.Save(context, record)
	if err != nil {
		return nil, err
	}

	if err := service.drafts.Delete(context, draft.ID); err != nil {
		service.logger.Warn("intake_draft_cleanup_failed",
			slog.String("draft_id", draft.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("intake_submitted",
		slog.String("draft_id", draft.ID),
		slog.String("public_id", persisted.PublicID),
	)

	return persisted, nil
}

/*
Reformulate rewrites raw notes into a dignified narrative, for the story
step's preview. Falls back to the input text when the provider is down.

Parameters:
  - context: context.Context
  - rawText: string

Returns:
  - string: The reformulated narrative, or rawText on degradation
*/
func (service *Service) Reformulate(context context.Context, rawText string) string {
	return service.analyzer.Reformulate(context, rawText)
}

// composeStory folds the optional analysis sections into one narrative,
// biography first.
func composeStory(analysis ai.Analysis) string {
	sections := []string{
		analysis.Bio,
		analysis.MentalHealth,
		analysis.FamilyCircle,
		analysis.Passions,
		analysis.Projects,
	}

	var kept []string
	for _, section := range sections {
		if section != "" {
			kept = append(kept, section)
		}
	}

	return strings.Join(kept, "\n\n")
}

// decodeDataURI parses a browser data URI into an inline image payload.
// Anything unparseable is treated as no image; the photo is optional anyway.
func decodeDataURI(uri string) *ai.ImagePayload {
	if !strings.HasPrefix(uri, "data:") {
		return nil
	}

	meta, encoded, found := strings.Cut(uri[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil
	}

	return &ai.ImagePayload{
		MIMEType: strings.TrimSuffix(meta, ";base64"),
		Data:     data,
	}
}
