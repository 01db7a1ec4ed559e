package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/dashboard"
	"github.com/Kotlang/summitGo/db"
	"github.com/Kotlang/summitGo/logger"
	"github.com/Kotlang/summitGo/models"
	s3client "github.com/Kotlang/summitGo/s3Client"
	"github.com/Kotlang/summitGo/service"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

type LeadIntake interface {
	AddLead(ctx context.Context, req *service.LeadRequest) (string, error)
}

type EventCatalog interface {
	GetEvents(ctx context.Context) ([]models.EventModel, error)
	GetEventById(ctx context.Context, eventId string) (*models.EventModel, error)
	AddAttendeeToEvent(ctx context.Context, eventId string, req *service.AttendeeRequest) error
}

// Api holds everything the HTTP handlers call into. Presigner may be nil
// when image uploads are not configured.
type Api struct {
	Leads     LeadIntake
	Events    EventCatalog
	Board     *dashboard.Board
	Issuer    *auth.SessionIssuer
	Presigner s3client.ImagePresignerInterface
	Db        db.SummitDbInterface
}

type eventResponse struct {
	models.EventModel
	AttendeeCount int `json:"attendeeCount"`
	SpotsLeft     int `json:"spotsLeft"`
}

func toEventResponse(event models.EventModel) eventResponse {
	if event.Attendees == nil {
		event.Attendees = []models.AttendeeModel{}
	}
	return eventResponse{
		EventModel:    event,
		AttendeeCount: len(event.Attendees),
		SpotsLeft:     event.SpotsLeft(),
	}
}

func toEventResponses(events []models.EventModel) []eventResponse {
	res := make([]eventResponse, 0, len(events))
	for _, event := range events {
		res = append(res, toEventResponse(event))
	}
	return res
}

// writeServiceError maps a failed write to its HTTP response.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "errors": validationErr.Fields})
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func (a *Api) createLead(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &service.LeadRequest{}
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	leadId, err := a.Leads.AddLead(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "id": leadId})
}

func (a *Api) listEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	events, err := a.Events.GetEvents(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			"success": false,
			"error":   "Failed to load events",
			"events":  []eventResponse{},
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "events": toEventResponses(events)})
}

func (a *Api) getEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	event, err := a.Events.GetEventById(r.Context(), pathParams["id"])
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to load event")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "event": toEventResponse(*event)})
}

func (a *Api) registerAttendee(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	req := &service.AttendeeRequest{}
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.Events.AddAttendeeToEvent(r.Context(), pathParams["id"], req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true})
}

type sessionRequest struct {
	Password string `json:"password"`
}

func (a *Api) createSession(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &sessionRequest{}
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, expiresAt, err := a.Issuer.Login(req.Password)
	if errors.Is(err, auth.ErrWrongPassword) {
		logger.Warn("Failed admin login", zap.String("ip", clientIP(r)))
		writeError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}
	if err != nil {
		logger.Error("Failed issuing session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}

// requireAdmin rejects requests without a valid admin session token.
func (a *Api) requireAdmin(next runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		header := r.Header.Get("Authorization")
		const prefix = "bearer "
		if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if _, err := a.Issuer.ParseToken(strings.TrimSpace(header[len(prefix):])); err != nil {
			logger.Info("Rejected admin request", zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, pathParams)
	}
}

func boardEnvelope(key string, state dashboard.State, items interface{}, deletingId string, shown, total int) envelope {
	return envelope{
		"success":    state != dashboard.StateError,
		"state":      state,
		key:          items,
		"deletingId": deletingId,
		"shown":      shown,
		"total":      total,
	}
}

// parseTimeZone reads the admin's IANA zone; date filters use its calendar.
// An empty name means server local time.
func parseTimeZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}

func (a *Api) adminLeads(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	query := r.URL.Query()
	dateFilter, err := dashboard.ParseDateFilter(query.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := parseTimeZone(query.Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := a.Board.Leads(r.Context(), query.Get("search"), dateFilter, loc, query.Get("refresh") == "true")
	body := boardEnvelope("leads", view.State, view.Items, view.DeletingId, view.Shown, view.Total)
	if view.Err != nil {
		body["error"] = "Failed to load leads"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *Api) adminEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	query := r.URL.Query()
	view := a.Board.Events(r.Context(), query.Get("search"), query.Get("refresh") == "true")
	body := boardEnvelope("events", view.State, toEventResponses(view.Items), view.DeletingId, view.Shown, view.Total)
	if view.Err != nil {
		body["error"] = "Failed to load events"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *Api) deleteLead(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	if err := a.Board.DeleteLead(r.Context(), pathParams["id"]); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true})
}

func (a *Api) createEvent(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &service.EventRequest{}
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eventId, err := a.Board.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "id": eventId})
}

func (a *Api) deleteEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	if err := a.Board.DeleteEvent(r.Context(), pathParams["id"]); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true})
}

type uploadUrlRequest struct {
	Extension string `json:"extension"`
}

func (a *Api) imageUploadUrl(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if a.Presigner == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	req := &uploadUrlRequest{}
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	uploadUrl, downloadUrl, err := a.Presigner.GetPresignedUrlForEventImage(r.Context(), req.Extension)
	if errors.Is(err, s3client.ErrUnsupportedExtension) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Error("Failed presigning upload url", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create upload url")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "uploadUrl": uploadUrl, "downloadUrl": downloadUrl})
}

func (a *Api) healthz(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if a.Db != nil {
		if err := a.Db.Ping(r.Context()); err != nil {
			logger.Warn("Store ping failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, envelope{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope{"status": "ok"})
}
