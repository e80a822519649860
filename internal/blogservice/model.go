package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const slugAttempts = 3

var (
	errBalanceTooLow = errors.New("balance too low")
	errSlugTaken     = errors.New("slug already taken")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

const postColumns = `id, user_id, title, slug, content, original_text, image_url, image_prompt,
		tokens_used, character_count, is_published, published_at, created_at, updated_at, version`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.OriginalText,
		&p.ImageURL,
		&p.ImagePrompt,
		&p.TokensUsed,
		&p.CharacterCount,
		&p.IsPublished,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Version,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// debit takes n tokens from the user only if the balance covers them and returns the new balance.
func (m *BlogModel) debit(tx *sql.Tx, ctx context.Context, userID uuid.UUID, n int) (int, error) {
	query := `
		UPDATE users
		SET tokens = tokens - $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND tokens >= $1
		RETURNING tokens`

	var remaining int
	err := tx.QueryRowContext(ctx, query, n, userID).Scan(&remaining)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, errBalanceTooLow
		default:
			return 0, err
		}
	}

	return remaining, nil
}

func (m *BlogModel) balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var tokens int
	err := m.db.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = $1`, userID).Scan(&tokens)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, ErrRecordNotFound
		default:
			return 0, err
		}
	}
	return tokens, nil
}

// insert stores p, deriving the slug and timestamps from createdAt. A slug collision moves
// the timestamp forward by a millisecond and tries again.
func (m *BlogModel) insert(tx *sql.Tx, ctx context.Context, p *Post, createdAt time.Time) error {
	query := `
		INSERT INTO blog_posts (user_id, title, slug, content, original_text, image_url, image_prompt,
			tokens_used, character_count, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, $10)
		ON CONFLICT (slug) DO NOTHING
		RETURNING ` + postColumns

	createdAt = createdAt.Truncate(time.Millisecond)
	for i := 0; i < slugAttempts; i++ {
		slug := makeSlug(p.Title, createdAt)
		args := []any{
			p.UserID,
			p.Title,
			slug,
			p.Content,
			p.OriginalText,
			p.ImageURL,
			p.ImagePrompt,
			p.TokensUsed,
			p.CharacterCount,
			createdAt,
		}

		saved, err := scanPost(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				createdAt = createdAt.Add(time.Millisecond)
				continue
			case ForeignKeyError(err, "blog_posts_user_id_fkey"):
				return ErrUserForeignKey
			default:
				return err
			}
		}

		*p = *saved
		return nil
	}

	return errSlugTaken
}

func (m *BlogModel) get(ctx context.Context, userID, id uuid.UUID) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM blog_posts
		WHERE id = $1 AND user_id = $2`

	p, err := scanPost(m.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *BlogModel) list(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*PostSummary, error) {
	query := `
		SELECT id, title, slug, tokens_used, character_count, is_published, created_at, updated_at, image_url
		FROM blog_posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := m.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*PostSummary{}
	for rows.Next() {
		var p PostSummary
		err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.TokensUsed, &p.CharacterCount, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt, &p.ImageURL)
		if err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (m *BlogModel) count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// update applies the non-nil fields of req at time now. published_at is stamped the first
// time the post is published and kept from then on.
func (m *BlogModel) update(ctx context.Context, userID, id uuid.UUID, req UpdatePostRequest, now time.Time) (*Post, error) {
	query := `
		UPDATE blog_posts
		SET title = COALESCE($1::text, title),
			content = COALESCE($2::text, content),
			is_published = COALESCE($3::boolean, is_published),
			published_at = CASE
				WHEN COALESCE($3::boolean, false) AND published_at IS NULL THEN $6::timestamptz
				ELSE published_at
			END,
			updated_at = $6::timestamptz,
			version = version + 1
		WHERE id = $4 AND user_id = $5
		RETURNING ` + postColumns

	p, err := scanPost(m.db.QueryRowContext(ctx, query, req.Title, req.Content, req.IsPublished, id, userID, now.Truncate(time.Millisecond)))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *BlogModel) delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		DELETE FROM blog_posts
		WHERE id = $1 AND user_id = $2`

	res, err := m.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
