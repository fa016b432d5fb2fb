package service

import (
	"context"
	"strings"

	"spotly/internal/concierge"
	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/validation"
)

const (
	// conciergeContextSize caps how many spots the model sees in plan mode.
	conciergeContextSize = 30
	itinerarySize        = 3
)

// ItineraryInput is the body of an itinerary request.
type ItineraryInput struct {
	Prompt string `json:"prompt" validate:"max=1000"`
}

// Itinerary is a generated day plan.
type Itinerary struct {
	Stops  []concierge.Stop `json:"itinerary"`
	Source string           `json:"source"`
}

// ConciergeService answers discovery questions over the approved catalog.
type ConciergeService interface {
	Ask(ctx context.Context, req concierge.Request) (*concierge.Answer, error)
	Itinerary(ctx context.Context, in ItineraryInput) (*Itinerary, error)
}

type conciergeService struct {
	repos     *repository.Repositories
	concierge *concierge.Concierge
}

// NewConciergeService creates a new concierge service.
func NewConciergeService(repos *repository.Repositories, c *concierge.Concierge) ConciergeService {
	return &conciergeService{repos: repos, concierge: c}
}

func (s *conciergeService) Ask(ctx context.Context, req concierge.Request) (*concierge.Answer, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var catalog []concierge.Spot
	if req.Mode == concierge.ModePlan {
		spots, _, err := s.repos.Spots.List(ctx,
			repository.SpotFilter{Status: model.StatusApproved, ActiveOnly: true, Sort: "-rating"},
			model.PageQuery{Page: 1, Limit: conciergeContextSize})
		if err != nil {
			return nil, storeError(err, nil, "load concierge catalog")
		}
		catalog = toConciergeSpots(spots)
	}

	ans := s.concierge.Ask(ctx, req, catalog)
	return &ans, nil
}

func (s *conciergeService) Itinerary(ctx context.Context, in ItineraryInput) (*Itinerary, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, apperrors.BadRequest("Prompt is required")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	top, err := s.repos.Spots.TopRated(ctx, itinerarySize)
	if err != nil {
		return nil, storeError(err, nil, "load top rated spots")
	}

	stops, source := s.concierge.Itinerary(ctx, prompt, toConciergeSpots(top))
	return &Itinerary{Stops: stops, Source: source}, nil
}

func toConciergeSpots(spots []model.Spot) []concierge.Spot {
	out := make([]concierge.Spot, 0, len(spots))
	for _, sp := range spots {
		out = append(out, concierge.Spot{
			ID:       sp.ID.String(),
			Name:     sp.Name,
			Category: string(sp.Category),
			Price:    string(sp.PriceRange),
			Tags:     nonNil(sp.Tags),
			Location: sp.Location.City,
			Rating:   sp.Rating,
		})
	}
	return out
}
