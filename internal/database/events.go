package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateEvent inserts a new event and returns it with its assigned ID.
func (db *DB) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	err := db.QueryRowContext(ctx,
		`INSERT INTO events (created_by, title, description, image_url, date, location, guest_limit, is_public, rsvp_approval)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		event.CreatedBy, event.Title, event.Description, event.ImageURL, event.Date,
		event.Location, event.GuestLimit, event.IsPublic, event.RSVPApproval,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// GetEventByID retrieves an event by ID, or nil if none exists.
func (db *DB) GetEventByID(ctx context.Context, id int64) (*Event, error) {
	event := &Event{}
	err := db.QueryRowContext(ctx,
		`SELECT id, created_by, title, description, image_url, date, location, guest_limit, is_public, rsvp_approval, created_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.CreatedBy, &event.Title, &event.Description, &event.ImageURL,
		&event.Date, &event.Location, &event.GuestLimit, &event.IsPublic, &event.RSVPApproval, &event.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// RecentEvents retrieves the owner's five most recent events with
// attendee counts and a date-derived status.
func (db *DB) RecentEvents(ctx context.Context, ownerID int64) ([]*EventSummary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, date,
		        (SELECT COUNT(*) FROM rsvps WHERE event_id = events.id) AS attendees,
		        CASE
		          WHEN date > NOW() THEN 'Upcoming'
		          WHEN date <= NOW() AND date >= CURRENT_DATE THEN 'Active'
		          ELSE 'Completed'
		        END AS status
		 FROM events
		 WHERE created_by = $1
		 ORDER BY date DESC
		 LIMIT 5`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	defer rows.Close()

	var events []*EventSummary
	for rows.Next() {
		summary := &EventSummary{}
		err := rows.Scan(&summary.ID, &summary.Title, &summary.Date, &summary.Attendees, &summary.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event summary: %w", err)
		}
		events = append(events, summary)
	}

	return events, rows.Err()
}

// GetDashboardStats aggregates event and attendee counts for an owner.
func (db *DB) GetDashboardStats(ctx context.Context, ownerID int64) (*DashboardStats, error) {
	stats := &DashboardStats{}
	err := db.QueryRowContext(ctx,
		`SELECT
		   (SELECT name FROM users WHERE id = $1),
		   (SELECT COUNT(*) FROM events WHERE created_by = $1),
		   (SELECT COUNT(*) FROM events WHERE created_by = $1 AND date > NOW()),
		   (SELECT COUNT(*) FROM events WHERE created_by = $1 AND DATE(date) = CURRENT_DATE),
		   (SELECT COUNT(*) FROM rsvps WHERE event_id IN (SELECT id FROM events WHERE created_by = $1))`,
		ownerID,
	).Scan(&stats.Name, &stats.TotalEvents, &stats.UpcomingEvents, &stats.TodaysEvents, &stats.TotalAttendees)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return stats, nil
}
