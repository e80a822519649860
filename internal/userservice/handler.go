package userservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sushihentaime/quillpress/internal/common"
)

func NewUserService(db *sql.DB, c *common.Cache, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		c:      c,
		logger: logger,
	}
}

// GetUser returns the user with the given id, served from the cache when possible.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	key := common.CacheKeyUser(id)
	if cached, ok := s.c.Get(key); ok {
		u := cached.(User)
		return &u, nil
	}

	u, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, *u, UserCacheTime)
	return u, nil
}

// CheckAccess reports whether the user may generate content and their current balance.
// Any lookup failure is treated as no access.
func (s *UserService) CheckAccess(ctx context.Context, id uuid.UUID) Access {
	role, tokens, active, err := s.m.getAccess(ctx, id)
	if err != nil {
		s.logger.Error("access check failed", "user_id", id, "error", err)
		return Access{}
	}

	return Access{
		HasAccess: active && role != RoleBanned,
		Tokens:    tokens,
	}
}

// UpdateRole sets the role of a user. The caller must already be authorized as an admin.
func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*UserSummary, error) {
	v := common.NewValidator()
	validateUserID(v, id)
	r := validateRole(v, role)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.updateRole(ctx, id, r)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyUser(id))
	s.logger.Info("user role updated", "user_id", id, "role", r)

	return u, nil
}

// ListUsers returns a page of users together with the total number of users.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	users, err := s.m.listUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.m.countUsers(ctx)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ApplySubscriptionEvent records a billing event and reports whether it changed anything.
// Activations and renewals credit the event's tokens and extend the subscription period.
// An event id that was already processed is acknowledged without being applied again.
func (s *UserService) ApplySubscriptionEvent(ctx context.Context, ev SubscriptionEvent) (bool, error) {
	v := common.NewValidator()
	validateSubscriptionEvent(v, ev)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error("rollback failed", "error", err)
		}
	}()

	fresh, err := s.m.recordEvent(tx, ctx, ev)
	if err != nil {
		return false, err
	}
	if !fresh {
		s.logger.Info("duplicate subscription event ignored", "event_id", ev.ID, "user_id", ev.UserID)
		return false, nil
	}

	switch ev.Type {
	case SubscriptionCanceled:
		if err := s.m.cancelSubscription(tx, ctx, ev.UserID); err != nil {
			return false, err
		}
	default:
		if err := s.m.creditTokens(tx, ctx, ev.UserID, ev.Tokens); err != nil {
			return false, err
		}

		if err := s.m.upsertSubscription(tx, ctx, ev.UserID, ev.CurrentPeriodEnd); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	s.c.Delete(common.CacheKeyUser(ev.UserID))
	s.logger.Info("subscription event applied", "event_id", ev.ID, "user_id", ev.UserID, "type", ev.Type, "tokens", ev.Tokens)

	return true, nil
}
