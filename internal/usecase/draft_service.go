package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pickpost/backend/internal/domain"
	"github.com/pickpost/backend/internal/observability"
)

// GenerateOptions carries the per-upload settings of a draft generation run.
type GenerateOptions struct {
	MaxRecommendations int
	UseAICopy          bool
	Templates          ComposerConfig
	CTAText            string
	CTAURL             string
}

// GenerateSummary reports what one generation run produced.
type GenerateSummary struct {
	BatchID       string          `json:"batchId"`
	ProductCount  int             `json:"productCount"`
	CustomerCount int             `json:"customerCount"`
	Drafts        []*domain.Draft `json:"drafts"`
}

// SendOutcome reports the result of dispatching one draft in a batch send.
type SendOutcome struct {
	DraftID string `json:"draftId"`
	Email   string `json:"email"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

// DraftService orchestrates the outbound-draft workflow: match products to
// customers, compose the emails, persist drafts, and walk them through
// review, approval, and dispatch.
type DraftService struct {
	matcher    *MatcherService
	repo       domain.DraftRepository
	sender     domain.Sender
	copywriter domain.CopyWriter
	logger     *zap.Logger
}

// NewDraftService creates a draft service. sender and copywriter may be nil;
// sending is then rejected and AI copy requests fall back to templates.
func NewDraftService(
	matcher *MatcherService,
	repo domain.DraftRepository,
	sender domain.Sender,
	copywriter domain.CopyWriter,
	logger *zap.Logger,
) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{
		matcher:    matcher,
		repo:       repo,
		sender:     sender,
		copywriter: copywriter,
		logger:     logger,
	}
}

// GenerateDrafts runs the matcher over the uploaded tables and persists one
// draft per customer, all under a fresh batch ID.
func (s *DraftService) GenerateDrafts(
	ctx context.Context,
	products []domain.Product,
	customers []domain.Customer,
	opts GenerateOptions,
) (*GenerateSummary, error) {
	results, err := s.matcher.Match(ctx, products, customers, opts.MaxRecommendations)
	if err != nil {
		return nil, err
	}

	composer := NewComposer(opts.Templates)
	batchID := uuid.NewString()
	now := time.Now().UTC()

	drafts := make([]*domain.Draft, 0, len(results))
	for _, res := range results {
		body := composer.PlainBody(res.Customer, res.Recommendations)
		if opts.UseAICopy && s.copywriter != nil {
			aiBody, err := s.copywriter.WriteBody(ctx, res.Customer, res.Recommendations, composer.cfg.SenderName)
			if err != nil {
				s.logger.Warn("ai copy failed, using template body",
					zap.String("customer", res.Customer.Email),
					zap.Error(err))
			} else if aiBody != "" {
				body = aiBody
			}
		}

		draft := &domain.Draft{
			ID:              uuid.NewString(),
			BatchID:         batchID,
			Email:           res.Customer.Email,
			Name:            res.Customer.Name,
			Subject:         composer.Subject(res.Customer),
			Body:            body,
			HTMLBody:        composer.HTMLBody(res.Customer, res.Recommendations, opts.CTAText, opts.CTAURL),
			Recommendations: res.Recommendations,
			Status:          domain.StatusDraft,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.repo.Save(ctx, draft); err != nil {
			return nil, fmt.Errorf("save draft for %s: %w", draft.Email, err)
		}
		observability.DraftsGenerated.Inc()
		drafts = append(drafts, draft)
	}

	s.logger.Info("drafts generated",
		zap.String("batch", batchID),
		zap.Int("customers", len(customers)),
		zap.Int("drafts", len(drafts)))

	return &GenerateSummary{
		BatchID:       batchID,
		ProductCount:  len(products),
		CustomerCount: len(customers),
		Drafts:        drafts,
	}, nil
}

// List returns drafts matching the filter in creation order.
func (s *DraftService) List(ctx context.Context, filter domain.DraftFilter) ([]*domain.Draft, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single draft by ID.
func (s *DraftService) Get(ctx context.Context, id string) (*domain.Draft, error) {
	return s.repo.Get(ctx, id)
}

// Update applies subject/body edits to a draft that has not been sent yet.
func (s *DraftService) Update(ctx context.Context, id string, update domain.DraftUpdate) (*domain.Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == domain.StatusSent {
		return nil, domain.ErrDraftNotEditable
	}

	if update.Subject != nil {
		draft.Subject = *update.Subject
	}
	if update.Body != nil {
		draft.Body = *update.Body
	}
	if update.HTMLBody != nil {
		draft.HTMLBody = *update.HTMLBody
	}
	draft.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Approve marks a draft ready for dispatch. Approving an already-approved
// draft is a no-op; a sent draft cannot go back to approved.
func (s *DraftService) Approve(ctx context.Context, id string) (*domain.Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == domain.StatusSent {
		return nil, domain.ErrDraftNotEditable
	}
	if draft.Status == domain.StatusApproved {
		return draft, nil
	}

	draft.Status = domain.StatusApproved
	draft.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Send dispatches one approved (or previously failed) draft through the mail
// transport and records the outcome on the draft.
func (s *DraftService) Send(ctx context.Context, id string) (*domain.Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != domain.StatusApproved && draft.Status != domain.StatusFailed {
		return nil, domain.ErrDraftNotApproved
	}
	if s.sender == nil {
		return nil, fmt.Errorf("%w: no mail transport configured", domain.ErrSendFailure)
	}

	now := time.Now().UTC()
	if err := s.sender.Send(ctx, draft.Email, draft.Subject, draft.Body); err != nil {
		draft.Status = domain.StatusFailed
		draft.SendError = err.Error()
		draft.UpdatedAt = now
		observability.SendFailures.Inc()
		if updErr := s.repo.Update(ctx, draft); updErr != nil {
			s.logger.Error("failed to record send failure", zap.String("draft", id), zap.Error(updErr))
		}
		return draft, fmt.Errorf("%w: %v", domain.ErrSendFailure, err)
	}

	draft.Status = domain.StatusSent
	draft.SendError = ""
	draft.SentAt = &now
	draft.UpdatedAt = now
	observability.EmailsSent.Inc()

	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SendBatch dispatches every approved draft in a batch, continuing past
// individual failures and reporting a per-draft outcome.
func (s *DraftService) SendBatch(ctx context.Context, batchID string) ([]SendOutcome, error) {
	drafts, err := s.repo.List(ctx, domain.DraftFilter{BatchID: batchID, Status: domain.StatusApproved})
	if err != nil {
		return nil, err
	}

	outcomes := make([]SendOutcome, 0, len(drafts))
	for _, d := range drafts {
		select {
		case <-ctx.Done():
			return outcomes, ctx.Err()
		default:
		}

		outcome := SendOutcome{DraftID: d.ID, Email: d.Email}
		if _, err := s.Send(ctx, d.ID); err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Sent = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ExportCSV writes drafts matching the filter as a mail-merge CSV with
// columns email,name,subject,body.
func (s *DraftService) ExportCSV(ctx context.Context, w io.Writer, filter domain.DraftFilter) error {
	drafts, err := s.repo.List(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"email", "name", "subject", "body"}); err != nil {
		return err
	}
	for _, d := range drafts {
		if err := cw.Write([]string{d.Email, d.Name, d.Subject, d.Body}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
