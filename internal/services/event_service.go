package services

import (
	"context"
	"errors"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPage is one page of events. NextCursor is empty on the last page.
type EventPage struct {
	Events     []*models.Event `json:"events"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// EventDetail is an event record with its dependent records
type EventDetail struct {
	Event  *models.Event   `json:"event"`
	Images []string        `json:"images"`
	Quests []*models.Quest `json:"quests"`
}

// EventServiceInterface defines the read side of events
type EventServiceInterface interface {
	ListEvents(ctx context.Context, sess session.Session, status models.EventStatus, limit int, cursor string) (*EventPage, error)
	GetEvent(ctx context.Context, sess session.Session, id primitive.ObjectID) (*EventDetail, error)
}

// EventService serves event queries scoped to the admin's faculty
type EventService struct {
	store Store
}

func NewEventService(store Store) *EventService {
	return &EventService{store: store}
}

// ErrInvalidCursor is returned for a cursor that is not an event id
var ErrInvalidCursor = errors.New("invalid cursor")

func (s *EventService) ListEvents(ctx context.Context, sess session.Session, status models.EventStatus, limit int, cursor string) (*EventPage, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	q := repositories.EventQuery{OrganiserID: sess.FacultyID, Status: status, Limit: limit}
	if cursor != "" {
		id, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, ErrInvalidCursor
		}
		q.Cursor = id
	}

	events, err := s.store.Events.List(ctx, q)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	page := &EventPage{Events: events}
	if len(events) == limit {
		page.NextCursor = events[len(events)-1].ID.Hex()
	}
	return page, nil
}

func (s *EventService) GetEvent(ctx context.Context, sess session.Session, id primitive.ObjectID) (*EventDetail, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	event, err := s.store.Events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, storeErr("get event", err)
	}
	if event.OrganiserID != sess.FacultyID {
		return nil, ErrForbidden
	}

	detail := &EventDetail{Event: event, Images: []string{}}
	images, err := s.store.Images.FindByEventID(ctx, id)
	switch {
	case err == nil:
		detail.Images = images.Images
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, storeErr("get event images", err)
	}

	detail.Quests, err = s.store.Quests.FindByListID(ctx, id)
	if err != nil {
		return nil, storeErr("get quests", err)
	}
	return detail, nil
}
