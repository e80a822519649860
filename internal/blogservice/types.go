package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/genservice"
	"github.com/sushihentaime/quillpress/internal/userservice"
)

type Post struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	OriginalText   string     `json:"originalText"`
	ImageURL       *string    `json:"imageUrl"`
	ImagePrompt    *string    `json:"imagePrompt"`
	TokensUsed     int        `json:"tokensUsed"`
	CharacterCount int        `json:"characterCount"`
	IsPublished    bool       `json:"isPublished"`
	PublishedAt    *time.Time `json:"publishedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Version        int        `json:"version"`
}

// PostSummary is the list projection of a post; it leaves out the bodies.
type PostSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	TokensUsed     int       `json:"tokensUsed"`
	CharacterCount int       `json:"characterCount"`
	IsPublished    bool      `json:"isPublished"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	ImageURL       *string   `json:"imageUrl"`
}

// UpdatePostRequest is a partial update; nil fields are left untouched.
type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"isPublished"`
}

type GenerateRequest struct {
	UserID       uuid.UUID
	Email        string
	OriginalText string
}

type GenerateResult struct {
	Post            *Post
	TokensUsed      int
	RemainingTokens int
}

// AccessChecker is satisfied by *userservice.UserService.
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID uuid.UUID) userservice.Access
}

// Generator is satisfied by *genservice.Client.
type Generator interface {
	GenerateText(ctx context.Context, source string) (*genservice.Draft, error)
	GenerateImage(ctx context.Context, prompt string) *string
}

type Config struct {
	TextTimeout  time.Duration
	ImageTimeout time.Duration
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	access AccessChecker
	gen    Generator
	mb     common.MessageProducer
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}
