package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// maxTokenAttempts bounds regeneration on token collision. Collisions
// are cryptographically negligible; the loop guards against a broken
// randomness source looping forever.
const maxTokenAttempts = 5

// Store is the durable invite mapping the coordinator drives. All
// cross-request coordination lives in Consume's conditional update;
// the coordinator itself holds no shared state.
type Store interface {
	// Insert persists a new, unconsumed invite. Returns
	// ErrDuplicateToken if the token is already taken.
	Insert(ctx context.Context, inv *Invite) error

	// FindByToken returns the invite for a token, or ErrInviteNotFound.
	FindByToken(ctx context.Context, token string) (*Invite, error)

	// Consume atomically flips the invite to consumed and records the
	// guest's RSVP in a single transaction. The conditional update on
	// the consumed flag is the serialization point: of N concurrent
	// calls for one token, exactly one succeeds and the rest get
	// ErrAlreadyConsumed. A failure after the flip rolls the flip back.
	Consume(ctx context.Context, token, displayName string) (*RSVP, error)
}

// Coordinator validates invite tokens and redeems them exactly once.
type Coordinator struct {
	store  Store
	window time.Duration
	log    zerolog.Logger

	// test seams
	now      func() time.Time
	newToken func() (string, error)
}

func NewCoordinator(store Store, window time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		window:   window,
		log:      log,
		now:      time.Now,
		newToken: GenerateToken,
	}
}

// Generate mints a token for one guest on one event and persists the
// invite. The token is only returned once the invite is durably
// committed; on any failure the token is discarded, never exposed.
func (c *Coordinator) Generate(ctx context.Context, eventID int64, guestEmail string) (string, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := c.newToken()
		if err != nil {
			return "", err
		}

		inv := &Invite{
			Token:      token,
			EventID:    eventID,
			GuestEmail: guestEmail,
			CreatedAt:  c.now().UTC(),
		}

		err = c.store.Insert(ctx, inv)
		if err == nil {
			return token, nil
		}
		if errors.Is(err, ErrDuplicateToken) {
			c.log.Warn().Int("attempt", attempt).Msg("invite token collision, regenerating")
			continue
		}
		return "", fmt.Errorf("failed to persist invite: %w", err)
	}
	return "", fmt.Errorf("failed to generate unique token after %d attempts", maxTokenAttempts)
}

// Validate reports whether a token is currently redeemable. Unknown and
// expired tokens both come back as errors the caller presents
// identically; consumption state is never revealed here.
func (c *Coordinator) Validate(ctx context.Context, token string) error {
	inv, err := c.store.FindByToken(ctx, token)
	if errors.Is(err, ErrInviteNotFound) {
		c.log.Info().Msg("validation of unknown invite token")
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("failed to look up invite: %w", err)
	}

	if Expired(inv.CreatedAt, c.now(), c.window) {
		c.log.Info().Int64("event_id", inv.EventID).Msg("validation of expired invite token")
		return ErrTokenExpired
	}
	return nil
}

// Redeem consumes a token and records the guest's RSVP.
//
// The expiry check runs before the consume attempt: an expired token is
// rejected the same way whether or not it was ever used, so probing a
// token reveals nothing about its consumption state. The consume step
// is the single serialization point; a guest double-submitting races
// there and the loser sees ErrAlreadyRedeemed, never a second RSVP.
func (c *Coordinator) Redeem(ctx context.Context, token, displayName string) (*RSVP, error) {
	inv, err := c.store.FindByToken(ctx, token)
	if errors.Is(err, ErrInviteNotFound) {
		c.log.Info().Msg("redemption of unknown invite token")
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}

	if Expired(inv.CreatedAt, c.now(), c.window) {
		c.log.Info().Int64("event_id", inv.EventID).Msg("redemption of expired invite token")
		return nil, ErrTokenExpired
	}

	rsvp, err := c.store.Consume(ctx, token, displayName)
	switch {
	case errors.Is(err, ErrAlreadyConsumed):
		return nil, ErrAlreadyRedeemed
	case errors.Is(err, ErrInviteNotFound):
		return nil, ErrInvalidToken
	case err != nil:
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	c.log.Info().Int64("event_id", rsvp.EventID).Int64("user_id", rsvp.UserID).Msg("invite redeemed")
	return rsvp, nil
}
