package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/quillpress/internal/common"
)

func NewBlogService(db *sql.DB, access AccessChecker, gen Generator, mb common.MessageProducer, cfg Config, logger *slog.Logger) *BlogService {
	return &BlogService{
		m:      newBlogModel(db),
		access: access,
		gen:    gen,
		mb:     mb,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// GetPost returns a post owned by userID. Posts of other users are reported as not found.
func (s *BlogService) GetPost(ctx context.Context, userID, id uuid.UUID) (*Post, error) {
	return s.m.get(ctx, userID, id)
}

// ListPosts returns one page of the user's posts, newest first.
func (s *BlogService) ListPosts(ctx context.Context, userID uuid.UUID, page, limit int) ([]*PostSummary, common.Pagination, error) {
	page, limit = common.NormalizePage(page, limit)

	posts, err := s.m.list(ctx, userID, limit, common.Offset(page, limit))
	if err != nil {
		return nil, common.Pagination{}, err
	}

	total, err := s.m.count(ctx, userID)
	if err != nil {
		return nil, common.Pagination{}, err
	}

	return posts, common.NewPagination(page, limit, total), nil
}

// UpdatePost applies a partial update to a post owned by userID.
func (s *BlogService) UpdatePost(ctx context.Context, userID, id uuid.UUID, req UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateUpdate(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.Content != nil {
		content := sanitizeHTML(*req.Content)
		req.Content = &content
	}

	return s.m.update(ctx, userID, id, req, s.now())
}

// DeletePost removes a post owned by userID.
func (s *BlogService) DeletePost(ctx context.Context, userID, id uuid.UUID) error {
	return s.m.delete(ctx, userID, id)
}
