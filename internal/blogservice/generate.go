package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/genservice"
)

// GeneratePost runs the paid generation workflow: entitlement, input validation, quota check,
// text generation, optional image generation, then the post insert and token debit in a
// single transaction. Nothing is persisted or debited unless every required step succeeds.
func (s *BlogService) GeneratePost(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	outcome := common.OutcomeError
	defer func() {
		common.GenerationsTotal.WithLabelValues(outcome).Inc()
	}()

	access := s.access.CheckAccess(ctx, req.UserID)
	if !access.HasAccess {
		outcome = common.OutcomeNoAccess
		return nil, ErrAccessRequired
	}

	v := common.NewValidator()
	validateOriginalText(v, req.OriginalText)
	if !v.Valid() {
		outcome = common.OutcomeInvalidInput
		return nil, v.ValidationError()
	}

	cost := genservice.TokenCost(req.OriginalText)
	if access.Tokens < cost {
		outcome = common.OutcomeInsufficientTokens
		return nil, &InsufficientTokensError{Required: cost, Available: access.Tokens}
	}

	draft, err := s.generateText(ctx, req.OriginalText)
	if err != nil {
		outcome = common.OutcomeGenerationFailed
		if errors.Is(err, ErrGenerationTimeout) {
			outcome = common.OutcomeTimeout
		}
		return nil, err
	}

	p := &Post{
		UserID:         req.UserID,
		Title:          draft.Title,
		Content:        sanitizeHTML(draft.Content),
		OriginalText:   req.OriginalText,
		TokensUsed:     cost,
		CharacterCount: genservice.CharacterCount(req.OriginalText),
	}

	if draft.ImagePrompt != "" {
		prompt := draft.ImagePrompt
		p.ImagePrompt = &prompt
		p.ImageURL = s.generateImage(ctx, prompt)
	}

	remaining, err := s.persist(ctx, p, cost)
	if err != nil {
		var ite *InsufficientTokensError
		if errors.As(err, &ite) {
			outcome = common.OutcomeInsufficientTokens
		}
		return nil, err
	}

	outcome = common.OutcomeSuccess
	common.TokensDebitedTotal.Add(float64(cost))
	s.logger.Info("post generated", "user_id", req.UserID, "post_id", p.ID, "tokens_used", cost, "remaining_tokens", remaining)

	s.publishGenerated(ctx, p, req.Email, remaining)

	return &GenerateResult{
		Post:            p,
		TokensUsed:      cost,
		RemainingTokens: remaining,
	}, nil
}

func (s *BlogService) generateText(ctx context.Context, source string) (*genservice.Draft, error) {
	tctx, cancel := withOptionalTimeout(ctx, s.cfg.TextTimeout)
	defer cancel()

	timer := prometheus.NewTimer(common.GenerationStepDuration.WithLabelValues("text"))
	draft, err := s.gen.GenerateText(tctx, source)
	timer.ObserveDuration()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrGenerationTimeout, err)
		}
		return nil, err
	}

	return draft, nil
}

func (s *BlogService) generateImage(ctx context.Context, prompt string) *string {
	ictx, cancel := withOptionalTimeout(ctx, s.cfg.ImageTimeout)
	defer cancel()

	timer := prometheus.NewTimer(common.GenerationStepDuration.WithLabelValues("image"))
	url := s.gen.GenerateImage(ictx, prompt)
	timer.ObserveDuration()

	if url == nil {
		common.ImageFailuresTotal.Inc()
	}

	return url
}

// persist debits the cost and inserts the post in one transaction. The debit is conditional
// on the balance, so concurrent generations for one user can never overdraw it.
func (s *BlogService) persist(ctx context.Context, p *Post, cost int) (int, error) {
	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error("rollback failed", "error", err)
		}
	}()

	remaining, err := s.m.debit(tx, ctx, p.UserID, cost)
	if err != nil {
		if errors.Is(err, errBalanceTooLow) {
			return 0, s.insufficientTokens(ctx, p.UserID, cost)
		}
		return 0, err
	}

	if err := s.m.insert(tx, ctx, p, s.now()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return remaining, nil
}

func (s *BlogService) insufficientTokens(ctx context.Context, userID uuid.UUID, cost int) error {
	available, err := s.m.balance(ctx, userID)
	if err != nil {
		s.logger.Error("could not read balance", "user_id", userID, "error", err)
	}
	return &InsufficientTokensError{Required: cost, Available: available}
}

func (s *BlogService) publishGenerated(ctx context.Context, p *Post, email string, remaining int) {
	if s.mb == nil {
		return
	}

	msg, err := json.Marshal(common.PostGeneratedEvent{
		PostID:          p.ID.String(),
		Title:           p.Title,
		Email:           email,
		TokensUsed:      p.TokensUsed,
		RemainingTokens: remaining,
	})
	if err != nil {
		s.logger.Error("could not encode post.generated event", "error", err)
		return
	}

	if err := s.mb.Publish(ctx, msg, common.PostGeneratedKey, common.BlogExchange); err != nil {
		s.logger.Error("could not publish post.generated event", "post_id", p.ID, "error", err)
	}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
