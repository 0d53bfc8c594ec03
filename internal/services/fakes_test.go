package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/senyabanana/banner-auction/internal/github"
	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/payment"
	"github.com/senyabanana/banner-auction/internal/repository"

	"github.com/stretchr/testify/require"
)

// fakeGithub - подмена трекера задач для тестов сервисов.
type fakeGithub struct {
	comments        map[int64]*github.Comment
	reactions       map[int64][]github.Reaction
	posted          []string
	updatedComments map[int64]string
	closedIssues    []int
	pinnedIssues    []int
	unpinnedIssues  []int
	postErr         error
}

func newFakeGithub() *fakeGithub {
	return &fakeGithub{
		comments:        make(map[int64]*github.Comment),
		reactions:       make(map[int64][]github.Reaction),
		updatedComments: make(map[int64]string),
	}
}

func (f *fakeGithub) addComment(id int64, author, body string) {
	f.comments[id] = &github.Comment{
		ID:        id,
		Body:      body,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
}

func (f *fakeGithub) GetComment(_ context.Context, commentID int64) (*github.Comment, error) {
	comment, ok := f.comments[commentID]
	if !ok {
		return nil, github.ErrCommentNotFound
	}
	return comment, nil
}

func (f *fakeGithub) ListReactions(_ context.Context, commentID int64) ([]github.Reaction, error) {
	if _, ok := f.comments[commentID]; !ok {
		return nil, github.ErrCommentNotFound
	}
	return f.reactions[commentID], nil
}

func (f *fakeGithub) PostComment(_ context.Context, _ int, body string) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, body)
	return nil
}

func (f *fakeGithub) UpdateComment(_ context.Context, commentID int64, body string) error {
	f.updatedComments[commentID] = body
	return nil
}

func (f *fakeGithub) CreateIssue(_ context.Context, _, _ string) (*github.Issue, error) {
	return &github.Issue{Number: 7, URL: "https://github.com/acme/site/issues/7", NodeID: "I_1"}, nil
}

func (f *fakeGithub) UpdateIssueBody(_ context.Context, _ int, _ string) error {
	return nil
}

func (f *fakeGithub) CloseIssue(_ context.Context, issueNumber int) error {
	f.closedIssues = append(f.closedIssues, issueNumber)
	return nil
}

func (f *fakeGithub) PinIssue(_ context.Context, issueNumber int) error {
	f.pinnedIssues = append(f.pinnedIssues, issueNumber)
	return nil
}

func (f *fakeGithub) UnpinIssue(_ context.Context, issueNumber int) error {
	f.unpinnedIssues = append(f.unpinnedIssues, issueNumber)
	return nil
}

// fakeCharger - подмена платёжного провайдера.
type fakeCharger struct {
	result   *payment.ChargeResult
	err      error
	requests []payment.ChargeRequest
}

func (f *fakeCharger) Charge(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &payment.ChargeResult{ID: "pi_test", Status: "succeeded"}, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testPolicy() models.Policy {
	return models.Policy{
		MinimumBid:       50,
		BidIncrement:     5,
		ApprovalMode:     models.EmojiApproval,
		GraceHours:       24,
		OwnerUsername:    "owner",
		AllowedReactions: []string{"+1", "heart"},
	}
}

func savedOpenPeriod(t *testing.T, periods repository.PeriodRepository, bids ...models.Bid) *models.BiddingPeriod {
	t.Helper()
	start := time.Now().UTC().Add(-24 * time.Hour)
	period := &models.BiddingPeriod{
		ID:          models.PeriodID(start),
		Status:      models.OpenPeriod,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, 0),
		IssueNumber: 7,
		IssueURL:    "https://github.com/acme/site/issues/7",
		Bids:        append([]models.Bid{}, bids...),
	}
	require.NoError(t, periods.Save(period))
	return period
}

func bidBody(amount int64) string {
	return fmt.Sprintf("```\namount: %d\nbanner_url: https://cdn.example.com/banner.png\ndestination_url: https://example.com/landing\ncontact: ads@example.com\n```", amount)
}
