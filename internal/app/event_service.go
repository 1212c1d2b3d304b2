package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"iga-community/internal/content"
	"iga-community/internal/model"
)

// ErrEventSignupFailed wraps storage failures so handlers can tell them
// apart from validation errors.
var ErrEventSignupFailed = errors.New("failed to add event signup")

type EventStore interface {
	Create(ctx context.Context, signup *model.EventSignup) error
}

type EventService struct {
	events  EventStore
	catalog *content.Catalog
}

type EventSignupInput struct {
	EventName string
	Date      string
	Time      string
	Location  string
	UserEmail string
}

func NewEventService(events EventStore, catalog *content.Catalog) *EventService {
	return &EventService{events: events, catalog: catalog}
}

// Signup records one RSVP. Only the event name and email are required; the
// same person may RSVP more than once.
func (s *EventService) Signup(ctx context.Context, input EventSignupInput) (*model.EventSignup, error) {
	name := strings.TrimSpace(input.EventName)
	email := strings.TrimSpace(input.UserEmail)
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}

	signup := &model.EventSignup{
		EventName: name,
		Date:      strings.TrimSpace(input.Date),
		Time:      strings.TrimSpace(input.Time),
		Location:  strings.TrimSpace(input.Location),
		UserEmail: email,
	}
	if err := s.events.Create(ctx, signup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventSignupFailed, err)
	}
	return signup, nil
}

// Upcoming lists the published event flyers.
func (s *EventService) Upcoming() []content.Event {
	return s.catalog.Events
}
