package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/booking-scheduler/internal/application"
)

type slotService interface {
	ListSlots(ctx context.Context, params application.ListSlotsParams) ([]application.Slot, error)
}

// SlotHandler serves slot listings for an event type.
type SlotHandler struct {
	service   slotService
	responder responder
	logger    *slog.Logger
}

// NewSlotHandler constructs the handler.
func NewSlotHandler(service slotService, logger *slog.Logger) *SlotHandler {
	return &SlotHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

type slotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type slotListResponse struct {
	Slots []slotResponse `json:"slots"`
}

// List handles GET /event-types/{id}/slots?start=...&end=...&timezone=...
// with RFC 3339 range bounds.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventTypeID, ok := EventTypeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventTypeID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventType)
		return
	}

	query := r.URL.Query()
	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingRangeParam)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingRangeParam)
		return
	}

	slots, err := h.service.ListSlots(r.Context(), application.ListSlotsParams{
		EventTypeID:      eventTypeID,
		RangeStart:       start,
		RangeEnd:         end,
		AttendeeTimezone: query.Get("timezone"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := slotListResponse{Slots: make([]slotResponse, 0, len(slots))}
	for _, slot := range slots {
		payload.Slots = append(payload.Slots, slotResponse{Start: slot.Start, End: slot.End})
	}

	handlerLogger(r.Context(), h.logger, "slots", "list", "event_type_id", eventTypeID).
		DebugContext(r.Context(), "slots listed", "count", len(payload.Slots))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}
