// Package events publishes booking lifecycle notifications.
package events

import (
	"context"
	"time"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingUpdated   Type = "booking.updated"
	BookingApproved  Type = "booking.approved"
	BookingRejected  Type = "booking.rejected"
	BookingCancelled Type = "booking.cancelled"
	BookingDeleted   Type = "booking.deleted"
)

type Event struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"booking_id"`
	RoomID     string    `json:"room_id"`
	UserID     string    `json:"user_id"`
	ActorID    string    `json:"actor_id"`
	Status     string    `json:"status"`
	Dates      []string  `json:"dates"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
