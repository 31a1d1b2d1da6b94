package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/pickpost/backend/internal/domain"
	"github.com/pickpost/backend/internal/infrastructure/store"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeCopyWriter struct {
	body string
	err  error
}

func (f *fakeCopyWriter) WriteBody(ctx context.Context, c domain.Customer, recs []domain.Recommendation, sender string) (string, error) {
	return f.body, f.err
}

func newTestService(sender domain.Sender, writer domain.CopyWriter) *DraftService {
	matcher := NewMatcherService(MatcherConfig{})
	return NewDraftService(matcher, store.NewMemoryStore(), sender, writer, nil)
}

func generateTestDrafts(t *testing.T, svc *DraftService, opts GenerateOptions) *GenerateSummary {
	t.Helper()
	summary, err := svc.GenerateDrafts(context.Background(), stationeryCatalogue(),
		[]domain.Customer{
			{Email: "amy@example.com", Name: "Amy", PreferredCategory: "Stationery", MaxBudget: "10"},
			{Email: "ben@example.com", Name: "Ben"},
		}, opts)
	if err != nil {
		t.Fatalf("GenerateDrafts: %v", err)
	}
	return summary
}

func TestGenerateDrafts(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one draft per customer under a shared batch", func(t *testing.T) {
		svc := newTestService(nil, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})

		if len(summary.Drafts) != 2 {
			t.Fatalf("drafts = %d, want 2", len(summary.Drafts))
		}
		if summary.BatchID == "" {
			t.Error("BatchID is empty")
		}
		for _, d := range summary.Drafts {
			if d.BatchID != summary.BatchID {
				t.Errorf("draft %s batch = %s, want %s", d.ID, d.BatchID, summary.BatchID)
			}
			if d.Status != domain.StatusDraft {
				t.Errorf("draft %s status = %s, want draft", d.ID, d.Status)
			}
			if !strings.Contains(d.Body, "Hi ") {
				t.Errorf("draft body has no greeting:\n%s", d.Body)
			}
		}

		stored, err := svc.List(ctx, domain.DraftFilter{BatchID: summary.BatchID})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(stored) != 2 {
			t.Errorf("stored drafts = %d, want 2", len(stored))
		}
	})

	t.Run("matcher recommendations land on the draft in order", func(t *testing.T) {
		svc := newTestService(nil, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})

		amy := summary.Drafts[0]
		if len(amy.Recommendations) != 1 || amy.Recommendations[0].Name != "Pen" {
			t.Errorf("Amy's recommendations = %v, want [Pen]", amy.Recommendations)
		}
	})

	t.Run("uses AI copy when the writer succeeds", func(t *testing.T) {
		svc := newTestService(nil, &fakeCopyWriter{body: "Hello from the robot"})
		summary := generateTestDrafts(t, svc, GenerateOptions{UseAICopy: true})

		if summary.Drafts[0].Body != "Hello from the robot" {
			t.Errorf("Body = %q, want AI copy", summary.Drafts[0].Body)
		}
	})

	t.Run("falls back to template body when the writer errors", func(t *testing.T) {
		svc := newTestService(nil, &fakeCopyWriter{err: errors.New("api down")})
		summary := generateTestDrafts(t, svc, GenerateOptions{UseAICopy: true})

		if !strings.Contains(summary.Drafts[0].Body, "Hi Amy,") {
			t.Errorf("Body = %q, want template fallback", summary.Drafts[0].Body)
		}
	})

	t.Run("surfaces matcher contract violations", func(t *testing.T) {
		svc := newTestService(nil, nil)
		_, err := svc.GenerateDrafts(ctx, stationeryCatalogue(),
			[]domain.Customer{{Email: "", Name: "Nameless"}}, GenerateOptions{})
		if !errors.Is(err, domain.ErrMissingRequiredField) {
			t.Errorf("error = %v, want ErrMissingRequiredField", err)
		}
	})
}

func TestDraftWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("edit then approve then send", func(t *testing.T) {
		sender := &fakeSender{}
		svc := newTestService(sender, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})
		id := summary.Drafts[0].ID

		subject := "Hand-tuned subject"
		draft, err := svc.Update(ctx, id, domain.DraftUpdate{Subject: &subject})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if draft.Subject != subject {
			t.Errorf("Subject = %q, want %q", draft.Subject, subject)
		}

		if _, err := svc.Send(ctx, id); !errors.Is(err, domain.ErrDraftNotApproved) {
			t.Errorf("Send before approve error = %v, want ErrDraftNotApproved", err)
		}

		if _, err := svc.Approve(ctx, id); err != nil {
			t.Fatalf("Approve: %v", err)
		}

		draft, err = svc.Send(ctx, id)
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if draft.Status != domain.StatusSent || draft.SentAt == nil {
			t.Errorf("after send: status = %s, sentAt = %v", draft.Status, draft.SentAt)
		}
		if len(sender.sent) != 1 || sender.sent[0] != draft.Email {
			t.Errorf("sender.sent = %v, want [%s]", sender.sent, draft.Email)
		}
	})

	t.Run("sent drafts are frozen", func(t *testing.T) {
		svc := newTestService(&fakeSender{}, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})
		id := summary.Drafts[0].ID

		if _, err := svc.Approve(ctx, id); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if _, err := svc.Send(ctx, id); err != nil {
			t.Fatalf("Send: %v", err)
		}

		subject := "too late"
		if _, err := svc.Update(ctx, id, domain.DraftUpdate{Subject: &subject}); !errors.Is(err, domain.ErrDraftNotEditable) {
			t.Errorf("Update after send error = %v, want ErrDraftNotEditable", err)
		}
		if _, err := svc.Approve(ctx, id); !errors.Is(err, domain.ErrDraftNotEditable) {
			t.Errorf("Approve after send error = %v, want ErrDraftNotEditable", err)
		}
	})

	t.Run("send failure marks the draft failed and allows retry", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("relay refused")}
		svc := newTestService(sender, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})
		id := summary.Drafts[0].ID

		if _, err := svc.Approve(ctx, id); err != nil {
			t.Fatalf("Approve: %v", err)
		}

		draft, err := svc.Send(ctx, id)
		if !errors.Is(err, domain.ErrSendFailure) {
			t.Fatalf("error = %v, want ErrSendFailure", err)
		}
		if draft.Status != domain.StatusFailed || draft.SendError == "" {
			t.Errorf("after failure: status = %s, sendError = %q", draft.Status, draft.SendError)
		}

		sender.err = nil
		draft, err = svc.Send(ctx, id)
		if err != nil {
			t.Fatalf("retry Send: %v", err)
		}
		if draft.Status != domain.StatusSent || draft.SendError != "" {
			t.Errorf("after retry: status = %s, sendError = %q", draft.Status, draft.SendError)
		}
	})

	t.Run("sending without a transport is rejected", func(t *testing.T) {
		svc := newTestService(nil, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})
		id := summary.Drafts[0].ID

		if _, err := svc.Approve(ctx, id); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if _, err := svc.Send(ctx, id); !errors.Is(err, domain.ErrSendFailure) {
			t.Errorf("error = %v, want ErrSendFailure", err)
		}
	})

	t.Run("SendBatch dispatches only approved drafts and continues past failures", func(t *testing.T) {
		sender := &fakeSender{}
		svc := newTestService(sender, nil)
		summary := generateTestDrafts(t, svc, GenerateOptions{})

		if _, err := svc.Approve(ctx, summary.Drafts[0].ID); err != nil {
			t.Fatalf("Approve: %v", err)
		}

		outcomes, err := svc.SendBatch(ctx, summary.BatchID)
		if err != nil {
			t.Fatalf("SendBatch: %v", err)
		}
		if len(outcomes) != 1 {
			t.Fatalf("outcomes = %d, want 1 (only approved drafts)", len(outcomes))
		}
		if !outcomes[0].Sent {
			t.Errorf("outcome = %+v, want sent", outcomes[0])
		}
	})
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil)
	summary := generateTestDrafts(t, svc, GenerateOptions{})

	var sb strings.Builder
	if err := svc.ExportCSV(ctx, &sb, domain.DraftFilter{BatchID: summary.BatchID}); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("csv records = %d, want header + 2 rows", len(records))
	}
	if got := strings.Join(records[0], ","); got != "email,name,subject,body" {
		t.Errorf("header = %q", got)
	}
	if records[1][0] != "amy@example.com" || records[2][0] != "ben@example.com" {
		t.Errorf("csv rows = %v / %v, want amy then ben", records[1], records[2])
	}
}
