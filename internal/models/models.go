package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Building  string    `db:"building"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Admin  bool
}

// BookingFilter narrows booking listings. Empty fields do not filter. From and To
// are inclusive and match a bulk booking when any one of its dates is in range.
type BookingFilter struct {
	UserID string
	RoomID string
	Status string
	From   *time.Time
	To     *time.Time
}
