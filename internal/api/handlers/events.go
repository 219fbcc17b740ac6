package handlers

import (
	"net/http"
	"time"

	"github.com/guestlist/server/internal/api/problem"
	"github.com/guestlist/server/internal/domain/registration"
)

type EventsHandler struct {
	Events  *registration.EventService
	Queries *registration.Queries
	Env     string
}

func NewEventsHandler(events *registration.EventService, queries *registration.Queries, env string) *EventsHandler {
	return &EventsHandler{Events: events, Queries: queries, Env: env}
}

type createEventRequest struct {
	EventID     string `json:"eventId" validate:"max=100"`
	Name        string `json:"name" validate:"max=200"`
	Capacity    int    `json:"capacity" validate:"lte=100000"`
	HasWaitlist bool   `json:"hasWaitlist"`
}

type eventResponse struct {
	EventID     string    `json:"eventId"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	HasWaitlist bool      `json:"hasWaitlist"`
	CreatedAt   time.Time `json:"createdAt"`
}

type capacityResponse struct {
	EventID           string `json:"eventId"`
	TotalCapacity     int    `json:"totalCapacity"`
	AvailableCapacity int    `json:"availableCapacity"`
}

func newEventResponse(event *registration.Event) eventResponse {
	return eventResponse{
		EventID:     event.ID,
		Name:        event.Name,
		Capacity:    event.Capacity,
		HasWaitlist: event.HasWaitlist,
		CreatedAt:   event.CreatedAt,
	}
}

// Create stores a new event. The eventId is optional; when omitted the
// service mints one.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Events == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req createEventRequest
	if !decodeBody(w, r, &req, h.Env) {
		return
	}
	if !checkBounds(w, r, &req, h.Env) {
		return
	}

	event, err := h.Events.CreateEvent(r.Context(), req.EventID, req.Name, req.Capacity, req.HasWaitlist)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, newEventResponse(event))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Events == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	event, err := h.Events.GetEvent(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

// Capacity reports total versus remaining capacity. Only active
// registrations consume capacity; waitlist entries never do.
func (h *EventsHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Events == nil || h.Queries == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	eventID := pathParam(r, "id")
	event, err := h.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	available, err := h.Queries.AvailableCapacity(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, capacityResponse{
		EventID:           event.ID,
		TotalCapacity:     event.Capacity,
		AvailableCapacity: available,
	})
}
