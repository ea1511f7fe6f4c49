package database

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

type Event struct {
	ID           int64
	CreatedBy    int64
	Title        string
	Description  sql.NullString
	ImageURL     sql.NullString
	Date         time.Time
	Location     string
	GuestLimit   sql.NullInt64
	IsPublic     bool
	RSVPApproval bool
	CreatedAt    time.Time
}

// EventSummary is a recent-events row: the event plus its attendee
// count and a status derived from the event date.
type EventSummary struct {
	ID        int64
	Title     string
	Date      time.Time
	Attendees int
	Status    string
}

// DashboardStats aggregates an owner's events and attendees.
type DashboardStats struct {
	Name           string
	TotalEvents    int
	UpcomingEvents int
	TodaysEvents   int
	TotalAttendees int
}
