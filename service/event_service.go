package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Kotlang/summitGo/db"
	"github.com/Kotlang/summitGo/extensions"
	"github.com/Kotlang/summitGo/logger"
	"github.com/Kotlang/summitGo/models"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type EventService struct {
	db       db.SummitDbInterface
	notifier extensions.NotifierInterface
	now      func() time.Time
}

func ProvideEventService(summitDb db.SummitDbInterface, notifier extensions.NotifierInterface) *EventService {
	return &EventService{db: summitDb, notifier: notifier, now: time.Now}
}

// Admin only API
func (s *EventService) AddEvent(ctx context.Context, req *EventRequest) (string, error) {
	trimAll(&req.Title, &req.Location, &req.Date, &req.Time, &req.TimeZone, &req.Description, &req.Image)
	if err := ValidateEventRequest(req); err != nil {
		return "", err
	}

	event := &models.EventModel{}
	copier.Copy(event, req)
	event.Date = FormatDisplayDate(req.Date, req.Time, req.TimeZone)

	if err := <-s.db.Event().Add(ctx, event); err != nil {
		logger.Error("Error adding event", zap.Error(err))
		storeFailures.WithLabelValues("add_event").Inc()
		return "", fmt.Errorf("failed to add event: %w", err)
	}

	eventsCreated.Inc()
	notify(ctx, s.notifier, extensions.EventCreated, event)
	return event.EventId, nil
}

func (s *EventService) GetEvents(ctx context.Context) ([]models.EventModel, error) {
	events, err := s.db.Event().GetEvents(ctx)
	if err != nil {
		storeFailures.WithLabelValues("get_events").Inc()
		return events, fmt.Errorf("failed to fetch events: %w", err)
	}
	return events, nil
}

// GetEventById returns db.ErrNotFound (wrapped) when no such event exists.
func (s *EventService) GetEventById(ctx context.Context, eventId string) (*models.EventModel, error) {
	event, err := s.db.Event().GetEventById(ctx, eventId)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			storeFailures.WithLabelValues("get_event").Inc()
		}
		return nil, err
	}
	return event, nil
}

// AddAttendeeToEvent appends a registration to the event. Capacity is not
// checked: it is display metadata only.
func (s *EventService) AddAttendeeToEvent(ctx context.Context, eventId string, req *AttendeeRequest) error {
	trimAll(&req.Name, &req.Business, &req.Email, &req.Phone)
	if err := ValidateAttendeeRequest(req); err != nil {
		return err
	}

	attendee := models.AttendeeModel{}
	copier.Copy(&attendee, req)
	attendee.CreatedAt = s.now().UTC().Format(models.AttendeeTimeLayout)

	err := <-s.db.Event().AppendAttendee(ctx, eventId, attendee)
	if errors.Is(err, db.ErrNotFound) {
		logger.Info("Registration for unknown event", zap.String("eventId", eventId))
		return err
	}
	if err != nil {
		logger.Error("Error adding attendee to event", zap.String("eventId", eventId), zap.Error(err))
		storeFailures.WithLabelValues("add_attendee").Inc()
		return fmt.Errorf("failed to register for event %q: %w", eventId, err)
	}

	attendeesRegistered.Inc()
	notify(ctx, s.notifier, extensions.AttendeeRegistered, map[string]interface{}{
		"eventId":  eventId,
		"attendee": attendee,
	})
	return nil
}

// Admin only API
func (s *EventService) DeleteEvent(ctx context.Context, eventId string) error {
	if err := <-s.db.Event().DeleteById(ctx, eventId); err != nil {
		logger.Error("Error deleting event", zap.String("eventId", eventId), zap.Error(err))
		storeFailures.WithLabelValues("delete_event").Inc()
		return fmt.Errorf("failed to delete event %q: %w", eventId, err)
	}
	return nil
}

// FormatDisplayDate turns a bare YYYY-MM-DD date into the display string
// stored on the event, e.g. "2024-06-01 at 18:30 (New York)". Any other
// value is already free text and is kept as is.
func FormatDisplayDate(date, clock, timeZone string) string {
	if !isoDatePattern.MatchString(date) {
		return date
	}
	city := timeZone
	if parts := strings.Split(timeZone, "/"); len(parts) > 1 {
		city = parts[1]
	}
	city = strings.ReplaceAll(city, "_", " ")
	return fmt.Sprintf("%s at %s (%s)", date, clock, city)
}
