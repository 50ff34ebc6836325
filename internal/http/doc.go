// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - GET /event-types/{id}/slots?start=...&end=...&timezone=...: lists
//     bookable slots for the event type within the RFC 3339 UTC range.
//     Response: {"slots":[{"start","end"}]}.
//   - POST /bookings: requests a booking for one slot start, optionally
//     expanded into a recurring series. Returns 201 with the per-occurrence
//     outcome, 409 when every occurrence conflicted, or 422 when rejected by
//     policy.
//   - GET /bookings/{id}: returns a single booking.
//   - POST /bookings/{id}/cancel: cancels with scope ONE or SERIES_FROM_HERE.
//   - POST /bookings/{id}/accept, /reject: host confirmation actions for
//     pending bookings.
//   - POST /bookings/{id}/reschedule: moves the booking to a new start,
//     running the full commit pipeline for the new time.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
