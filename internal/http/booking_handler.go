package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/booking-scheduler/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.BookingResult, error)
	CancelBooking(ctx context.Context, params application.CancelBookingParams) error
	AcceptBooking(ctx context.Context, bookingID string) error
	RejectBooking(ctx context.Context, bookingID string, reason string) error
	RescheduleBooking(ctx context.Context, params application.RescheduleBookingParams) (application.BookingResult, error)
	GetBooking(ctx context.Context, bookingID string) (application.Booking, error)
}

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

type attendeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

type recurrenceRequest struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	Count     int    `json:"count"`
}

type createBookingRequest struct {
	EventTypeID  string             `json:"event_type_id"`
	Start        time.Time          `json:"start"`
	Attendee     attendeeRequest    `json:"attendee"`
	Recurrence   *recurrenceRequest `json:"recurrence,omitempty"`
	AllOrNothing bool               `json:"all_or_nothing,omitempty"`
}

type occurrenceResponse struct {
	Start     time.Time `json:"start"`
	Status    string    `json:"status"`
	BookingID string    `json:"booking_id,omitempty"`
	HostIDs   []string  `json:"host_ids,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type bookingResultResponse struct {
	Status      string               `json:"status"`
	SeriesID    string               `json:"series_id,omitempty"`
	Occurrences []occurrenceResponse `json:"occurrences"`
}

type bookingResponse struct {
	ID               string    `json:"id"`
	EventTypeID      string    `json:"event_type_id"`
	HostIDs          []string  `json:"host_ids"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Status           string    `json:"status"`
	SeriesID         string    `json:"series_id,omitempty"`
	AttendeeName     string    `json:"attendee_name"`
	AttendeeEmail    string    `json:"attendee_email"`
	AttendeeTimezone string    `json:"attendee_timezone,omitempty"`
	CancelReason     string    `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Create handles POST /bookings. A conflicting request is a normal outcome,
// reported with 409 and the per-occurrence detail rather than an error page.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params := application.CreateBookingParams{
		EventTypeID: req.EventTypeID,
		Start:       req.Start,
		Attendee: application.AttendeeInfo{
			Name:     req.Attendee.Name,
			Email:    req.Attendee.Email,
			Timezone: req.Attendee.Timezone,
		},
		AllOrNothing: req.AllOrNothing,
	}
	if req.Recurrence != nil {
		params.Recurrence = &application.RecurrenceInput{
			Frequency: req.Recurrence.Frequency,
			Interval:  req.Recurrence.Interval,
			Count:     req.Recurrence.Count,
		}
	}

	result, err := h.service.CreateBooking(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	switch result.Status {
	case application.OutcomeConflict:
		status = http.StatusConflict
	case application.OutcomeRejectedPolicy:
		status = http.StatusUnprocessableEntity
	}

	handlerLogger(r.Context(), h.logger, "bookings", "create", "event_type_id", req.EventTypeID).
		InfoContext(r.Context(), "booking request handled", "status", result.Status)
	h.responder.writeJSON(r.Context(), w, status, toBookingResult(result))
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{
		ID:               booking.ID,
		EventTypeID:      booking.EventTypeID,
		HostIDs:          booking.HostIDs,
		Start:            booking.Start,
		End:              booking.End,
		Status:           booking.Status,
		SeriesID:         booking.SeriesID,
		AttendeeName:     booking.AttendeeName,
		AttendeeEmail:    booking.AttendeeEmail,
		AttendeeTimezone: booking.AttendeeTimezone,
		CancelReason:     booking.CancelReason,
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	})
}

type cancelBookingRequest struct {
	Scope  string `json:"scope"`
	Reason string `json:"reason,omitempty"`
}

// Cancel handles POST /bookings/{id}/cancel.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.Scope == "" {
		req.Scope = application.CancelScopeOne
	}

	err := h.service.CancelBooking(r.Context(), application.CancelBookingParams{
		BookingID: bookingID,
		Scope:     req.Scope,
		Reason:    req.Reason,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "bookings", "cancel", "booking_id", bookingID).
		InfoContext(r.Context(), "booking cancelled", "scope", req.Scope)
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Accept handles POST /bookings/{id}/accept.
func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}

	if err := h.service.AcceptBooking(r.Context(), bookingID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type rejectBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Reject handles POST /bookings/{id}/reject.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}

	var req rejectBookingRequest
	if r.Body != nil {
		// An empty body is fine for a reject without a reason.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.service.RejectBooking(r.Context(), bookingID, req.Reason); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type rescheduleBookingRequest struct {
	NewStart time.Time `json:"new_start"`
}

// Reschedule handles POST /bookings/{id}/reschedule.
func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}

	var req rescheduleBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.RescheduleBooking(r.Context(), application.RescheduleBookingParams{
		BookingID: bookingID,
		NewStart:  req.NewStart,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingResult(result))
}

func (h *BookingHandler) bookingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return "", false
	}
	return bookingID, true
}

func toBookingResult(result application.BookingResult) bookingResultResponse {
	payload := bookingResultResponse{
		Status:      result.Status,
		SeriesID:    result.SeriesID,
		Occurrences: make([]occurrenceResponse, 0, len(result.Occurrences)),
	}
	for _, occurrence := range result.Occurrences {
		payload.Occurrences = append(payload.Occurrences, occurrenceResponse{
			Start:     occurrence.Start,
			Status:    occurrence.Status,
			BookingID: occurrence.BookingID,
			HostIDs:   occurrence.HostIDs,
			Reason:    occurrence.Reason,
		})
	}
	return payload
}
