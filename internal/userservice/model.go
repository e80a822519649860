package userservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) getByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, name, email, role, tokens, created_at, updated_at, version
		FROM users
		WHERE id = $1`

	var u User
	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.Tokens,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) updateRole(ctx context.Context, id uuid.UUID, role Role) (*UserSummary, error) {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2
		RETURNING id, name, email, role`

	var u UserSummary
	err := m.db.QueryRowContext(ctx, query, role, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) listUsers(ctx context.Context, limit, offset int) ([]*User, error) {
	query := `
		SELECT id, name, email, role, tokens, created_at, updated_at, version
		FROM users
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Tokens, &u.CreatedAt, &u.UpdatedAt, &u.Version)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (m *DBModel) countUsers(ctx context.Context) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// getAccess reads the role, balance and entitlement of a user in one round trip.
func (m *DBModel) getAccess(ctx context.Context, id uuid.UUID) (Role, int, bool, error) {
	query := `
		SELECT u.role, u.tokens, EXISTS (
			SELECT 1 FROM subscriptions s
			WHERE s.user_id = u.id AND s.status = 'active' AND s.current_period_end > NOW()
		)
		FROM users u
		WHERE u.id = $1`

	var (
		role   Role
		tokens int
		active bool
	)
	err := m.db.QueryRowContext(ctx, query, id).Scan(&role, &tokens, &active)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, 0, false, ErrNotFound
		default:
			return 0, 0, false, err
		}
	}

	return role, tokens, active, nil
}

func (m *DBModel) creditTokens(tx *sql.Tx, ctx context.Context, id uuid.UUID, tokens int) error {
	query := `
		UPDATE users
		SET tokens = tokens + $1, updated_at = NOW(), version = version + 1
		WHERE id = $2`

	res, err := tx.ExecContext(ctx, query, tokens, id)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

func (m *DBModel) upsertSubscription(tx *sql.Tx, ctx context.Context, id uuid.UUID, periodEnd time.Time) error {
	query := `
		INSERT INTO subscriptions (user_id, status, current_period_end)
		VALUES ($1, 'active', $2)
		ON CONFLICT (user_id) DO UPDATE
		SET status = 'active', current_period_end = EXCLUDED.current_period_end, updated_at = NOW()`

	_, err := tx.ExecContext(ctx, query, id, periodEnd)
	return err
}

func (m *DBModel) cancelSubscription(tx *sql.Tx, ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE subscriptions
		SET status = 'canceled', updated_at = NOW()
		WHERE user_id = $1`

	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

// recordEvent claims the event id and reports false when it was already processed.
func (m *DBModel) recordEvent(tx *sql.Tx, ctx context.Context, ev SubscriptionEvent) (bool, error) {
	query := `
		INSERT INTO subscription_events (id, user_id, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`

	res, err := tx.ExecContext(ctx, query, ev.ID, ev.UserID, string(ev.Type))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		switch {
		case rows == 0:
			return ErrNotFound
		default:
			return errors.New("too many rows affected")
		}
	}
	return nil
}
