package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"evently/internal/invite"
)

// guestPasswordHash marks accounts created through invite redemption.
// It is not a valid bcrypt hash, so these accounts cannot log in until
// they sign up properly.
const guestPasswordHash = "placeholder"

// InviteStore is the durable invite mapping backed by Postgres. It is
// the sole invite.Store implementation; all redemption races are
// settled by the conditional update in Consume.
type InviteStore struct {
	db *DB
}

func (db *DB) Invites() *InviteStore {
	return &InviteStore{db: db}
}

// Insert persists a new unconsumed invite.
func (s *InviteStore) Insert(ctx context.Context, inv *invite.Invite) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invites (token, event_id, guest_email, created_at, consumed)
		 VALUES ($1, $2, $3, $4, FALSE)`,
		inv.Token, inv.EventID, inv.GuestEmail, inv.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return invite.ErrDuplicateToken
	}
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return nil
}

// FindByToken retrieves an invite by token.
func (s *InviteStore) FindByToken(ctx context.Context, token string) (*invite.Invite, error) {
	inv := &invite.Invite{}
	err := s.db.QueryRowContext(ctx,
		`SELECT token, event_id, guest_email, created_at, consumed
		 FROM invites WHERE token = $1`,
		token,
	).Scan(&inv.Token, &inv.EventID, &inv.GuestEmail, &inv.CreatedAt, &inv.Consumed)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, invite.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return inv, nil
}

// Consume flips the invite to consumed and records the guest's RSVP in
// one transaction. The conditional UPDATE serializes concurrent
// redemptions of the same token: the first wins, the rest observe zero
// affected rows and get ErrAlreadyConsumed. Any later failure rolls the
// whole transaction back, so consumed is never left true without an
// RSVP row.
func (s *InviteStore) Consume(ctx context.Context, token, displayName string) (*invite.RSVP, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var eventID int64
	var guestEmail string
	err = tx.QueryRowContext(ctx,
		`UPDATE invites SET consumed = TRUE
		 WHERE token = $1 AND consumed = FALSE
		 RETURNING event_id, guest_email`,
		token,
	).Scan(&eventID, &guestEmail)
	if errors.Is(err, sql.ErrNoRows) {
		// No unconsumed row matched: either the token is unknown or
		// someone else got here first.
		var consumed bool
		err = tx.QueryRowContext(ctx, `SELECT consumed FROM invites WHERE token = $1`, token).Scan(&consumed)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invite.ErrInviteNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check invite state: %w", err)
		}
		return nil, invite.ErrAlreadyConsumed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	// Get or create the guest identity keyed by the invite's email. The
	// no-op conflict update makes RETURNING yield the existing id.
	var userID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET email = users.email
		 RETURNING id`,
		guestEmail, displayName, guestPasswordHash,
	).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rsvps (event_id, user_id, approved) VALUES ($1, $2, TRUE)
		 ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rsvp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &invite.RSVP{EventID: eventID, UserID: userID, Approved: true}, nil
}
