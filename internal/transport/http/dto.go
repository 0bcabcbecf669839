package http

import (
	"time"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/service/scheduling"
)

type createBookingRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
	ServiceID  string `json:"service_id" binding:"required"`

	CustomerUserID string `json:"customer_user_id"`
	GuestName      string `json:"guest_name"`
	GuestPhone     string `json:"guest_phone"`
	GuestEmail     string `json:"guest_email"`

	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`

	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	CustomerNotes string `json:"customer_notes"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Reason    string    `json:"reason"`
}

type bookingResponse struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	ServiceID  string `json:"service_id"`

	CustomerUserID string `json:"customer_user_id,omitempty"`
	GuestName      string `json:"guest_name,omitempty"`
	GuestPhone     string `json:"guest_phone,omitempty"`
	GuestEmail     string `json:"guest_email,omitempty"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status   string  `json:"status"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	CustomerNotes      string `json:"customer_notes,omitempty"`
	ProviderNotes      string `json:"provider_notes,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                 b.ID.String(),
		ProviderID:         b.ProviderID.String(),
		ServiceID:          b.ServiceID.String(),
		CustomerUserID:     b.CustomerUserID,
		GuestName:          b.GuestName,
		GuestPhone:         b.GuestPhone,
		GuestEmail:         b.GuestEmail,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		Price:              b.Price,
		Currency:           b.Currency,
		CustomerNotes:      b.CustomerNotes,
		ProviderNotes:      b.ProviderNotes,
		CancellationReason: b.CancellationReason,
		ConfirmedAt:        b.ConfirmedAt,
		CompletedAt:        b.CompletedAt,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

type slotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type availabilityResponse struct {
	ProviderID string         `json:"provider_id"`
	Date       string         `json:"date"`
	Available  bool           `json:"available"`
	Slots      []slotResponse `json:"slots"`
	Message    string         `json:"message,omitempty"`
}

// toAvailabilityResponse exposes only the free slots; callers asking
// "when can I book" have no use for the occupied ones.
func toAvailabilityResponse(providerID string, date time.Time, res scheduling.AvailabilityResult) availabilityResponse {
	slots := make([]slotResponse, 0, len(res.Slots))
	for _, slot := range res.Slots {
		if !slot.Available {
			continue
		}
		slots = append(slots, slotResponse{
			StartTime: slot.Range.Start,
			EndTime:   slot.Range.End,
		})
	}
	return availabilityResponse{
		ProviderID: providerID,
		Date:       date.UTC().Format("2006-01-02"),
		Available:  res.Available,
		Slots:      slots,
		Message:    res.Message,
	}
}

type statsResponse struct {
	ProviderID string         `json:"provider_id"`
	Total      int            `json:"total"`
	Counts     map[string]int `json:"counts"`
}

func toStatsResponse(providerID string, stats scheduling.BookingStats) statsResponse {
	counts := make(map[string]int, len(stats.Counts))
	for status, n := range stats.Counts {
		counts[string(status)] = n
	}
	return statsResponse{ProviderID: providerID, Total: stats.Total, Counts: counts}
}
