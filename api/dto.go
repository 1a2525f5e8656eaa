package api

import "time"

// Bookings

type BookingRequest struct {
	RoomID       string `json:"room_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Purpose      string `json:"purpose" validate:"required,max=500"`
	Participants int    `json:"participants" validate:"gte=0"`
	Department   string `json:"department" validate:"max=200"`
}

type BulkBookingRequest struct {
	RoomID       string   `json:"room_id" validate:"required"`
	Dates        []string `json:"dates" validate:"required,min=1,max=366,dive,datetime=2006-01-02"`
	StartTime    string   `json:"start_time" validate:"required"`
	EndTime      string   `json:"end_time" validate:"required"`
	Purpose      string   `json:"purpose" validate:"required,max=500"`
	Participants int      `json:"participants" validate:"gte=0"`
	Department   string   `json:"department" validate:"max=200"`
}

// BookingUpdateRequest replaces the editable fields of a pending booking.
// Dates turns the booking into a bulk booking, Date into a regular one.
type BookingUpdateRequest struct {
	RoomID       string   `json:"room_id" validate:"required"`
	Date         string   `json:"date,omitempty" validate:"required_without=Dates,excluded_with=Dates"`
	Dates        []string `json:"dates,omitempty" validate:"omitempty,min=1,max=366,dive,datetime=2006-01-02"`
	StartTime    string   `json:"start_time" validate:"required"`
	EndTime      string   `json:"end_time" validate:"required"`
	Purpose      string   `json:"purpose" validate:"required,max=500"`
	Participants int      `json:"participants" validate:"gte=0"`
	Department   string   `json:"department" validate:"max=200"`
}

type BookingResponse struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	RoomName     string    `json:"room_name,omitempty"`
	UserID       string    `json:"user_id"`
	OwnerName    string    `json:"owner_name,omitempty"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	Bulk         bool      `json:"bulk"`
	Date         string    `json:"date"`
	Dates        []string  `json:"dates"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Purpose      string    `json:"purpose"`
	Status       string    `json:"status"`
	Participants int       `json:"participants"`
	Department   string    `json:"department,omitempty"`
	HasDocument  bool      `json:"has_document"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BookingListQuery struct {
	UserID string `validate:"omitempty"`
	RoomID string `validate:"omitempty"`
	Status string `validate:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	From   string `validate:"omitempty,datetime=2006-01-02"`
	To     string `validate:"omitempty,datetime=2006-01-02"`
}

// Conflicts

type ConflictCheckRequest struct {
	RoomID    string `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
	StartTime string `validate:"required"`
	EndTime   string `validate:"required"`
	ExcludeID string
}

type ConflictCheckResponse struct {
	HasConflict bool              `json:"has_conflict"`
	Detail      string            `json:"detail,omitempty"`
	Conflicts   []BookingResponse `json:"conflicts"`
}

// Timeline

type Owner struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type TimelineEntry struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	RoomName  string    `json:"room_name"`
	Date      string    `json:"date"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Purpose   string    `json:"purpose"`
	Status    string    `json:"status"`
	Bulk      bool      `json:"bulk"`
	Owner     Owner     `json:"owner"`
}

type TimelineResponse struct {
	Date    string          `json:"date"`
	Entries []TimelineEntry `json:"entries"`
}

// Rooms

type RoomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Building string `json:"building" validate:"max=100"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

type RoomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Building  string    `json:"building,omitempty"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// Auth

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
