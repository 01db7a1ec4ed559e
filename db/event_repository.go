package db

import (
	"context"
	"errors"

	"github.com/Kotlang/summitGo/logger"
	"github.com/Kotlang/summitGo/models"
	"go.uber.org/zap"
)

const (
	eventsCollection = "events"
	attendeesField   = "attendees"
)

type EventRepositoryInterface interface {
	Collection[models.EventModel]
	Add(ctx context.Context, event *models.EventModel) chan error
	GetEvents(ctx context.Context) ([]models.EventModel, error)
	GetEventById(ctx context.Context, id string) (*models.EventModel, error)
	AppendAttendee(ctx context.Context, eventId string, attendee models.AttendeeModel) chan error
}

type EventRepository struct {
	Collection[models.EventModel]
	clock Clock
}

func NewEventRepository(collection Collection[models.EventModel], clock Clock) *EventRepository {
	return &EventRepository{Collection: collection, clock: clock}
}

// Add inserts event with a fresh id, server timestamp and no attendees.
func (e *EventRepository) Add(ctx context.Context, event *models.EventModel) chan error {
	event.EventId = newDocumentId()
	event.CreatedAt = e.clock.Now()
	event.Attendees = []models.AttendeeModel{}
	return e.Save(ctx, *event)
}

func (e *EventRepository) GetEvents(ctx context.Context) ([]models.EventModel, error) {
	resultChan, errChan := e.Find(ctx)

	select {
	case events := <-resultChan:
		return events, nil
	case err := <-errChan:
		logger.Error("Error fetching events", zap.Error(err))
		return []models.EventModel{}, err
	}
}

// GetEventById returns ErrNotFound (wrapped) for unknown ids.
func (e *EventRepository) GetEventById(ctx context.Context, id string) (*models.EventModel, error) {
	event, err := Await(e.FindOneById(ctx, id))
	if errors.Is(err, ErrNotFound) {
		logger.Info("Event not found", zap.String("eventId", id))
		return nil, err
	}
	if err != nil {
		logger.Error("Error fetching event", zap.String("eventId", id), zap.Error(err))
		return nil, err
	}
	if event.Attendees == nil {
		event.Attendees = []models.AttendeeModel{}
	}
	return &event, nil
}

func (e *EventRepository) AppendAttendee(ctx context.Context, eventId string, attendee models.AttendeeModel) chan error {
	return e.Push(ctx, eventId, attendeesField, attendee)
}
