package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdmissionService(t *testing.T, gh *fakeGithub, policy models.Policy) (*AdmissionService, *repository.FilePeriodRepository, *repository.FileBidderRepository) {
	t.Helper()
	dir := t.TempDir()
	periods := repository.NewFilePeriodRepository(dir)
	bidders := repository.NewFileBidderRepository(dir)
	return NewAdmissionService(periods, bidders, gh, policy, testLogger()), periods, bidders
}

func TestAdmitNoOpenPeriod(t *testing.T) {
	service, _, _ := newAdmissionService(t, newFakeGithub(), testPolicy())

	_, err := service.Admit(context.Background(), 1)

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Equal(t, http.StatusNotFound, errorResponse.StatusCode)
	assert.Contains(t, errorResponse.Message, "no open bidding period")
}

func TestAdmitCommentDeleted(t *testing.T) {
	service, periods, _ := newAdmissionService(t, newFakeGithub(), testPolicy())
	savedOpenPeriod(t, periods)

	_, err := service.Admit(context.Background(), 404)

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Equal(t, http.StatusNotFound, errorResponse.StatusCode)
	assert.Contains(t, errorResponse.Message, "may have been deleted")
}

func TestAdmitValidationErrorsReported(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "alice", "```\namount: 7\nbanner_url: ftp://bad\ndestination_url: https://example.com\ncontact: nope\n```")
	service, periods, _ := newAdmissionService(t, gh, testPolicy())
	savedOpenPeriod(t, periods)

	_, err := service.Admit(context.Background(), 5)

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Equal(t, http.StatusBadRequest, errorResponse.StatusCode)
	assert.Contains(t, errorResponse.Message, "amount")
	assert.Contains(t, errorResponse.Message, "banner_url")
	assert.Contains(t, errorResponse.Message, "contact")

	// ни одно хранилище не изменилось
	period, loadErr := periods.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, period.Bids)
}

func TestAdmitMustExceedHighest(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "bob", bidBody(100))
	service, periods, _ := newAdmissionService(t, gh, testPolicy())
	savedOpenPeriod(t, periods, models.Bid{
		Bidder: "alice", Amount: 100, Status: models.PendingBid, CommentID: 1,
	})

	_, err := service.Admit(context.Background(), 5)

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Contains(t, errorResponse.Message, "must exceed the current highest bid of $100")

	period, loadErr := periods.Load()
	require.NoError(t, loadErr)
	assert.Len(t, period.Bids, 1)
}

func TestAdmitHigherBidBecomesHighest(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "bob", bidBody(150))
	service, periods, _ := newAdmissionService(t, gh, testPolicy())
	savedOpenPeriod(t, periods, models.Bid{
		Bidder: "alice", Amount: 100, Status: models.PendingBid, CommentID: 1,
	})

	result, err := service.Admit(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.PendingBid, result.Bid.Status)

	period, loadErr := periods.Load()
	require.NoError(t, loadErr)
	require.Len(t, period.Bids, 2)
	assert.Equal(t, "bob", period.HighestActiveBid().Bidder)
}

func TestAdmitDuplicateComment(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "bob", bidBody(150))
	service, periods, _ := newAdmissionService(t, gh, testPolicy())
	savedOpenPeriod(t, periods, models.Bid{
		Bidder: "bob", Amount: 100, Status: models.PendingBid, CommentID: 5,
	})

	_, err := service.Admit(context.Background(), 5)

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Equal(t, http.StatusConflict, errorResponse.StatusCode)
	assert.Contains(t, errorResponse.Message, "already been admitted")
}

func TestAdmitAutoModeApproves(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "alice", bidBody(100))
	policy := testPolicy()
	policy.ApprovalMode = models.AutoApproval
	service, periods, _ := newAdmissionService(t, gh, policy)
	savedOpenPeriod(t, periods)

	result, err := service.Admit(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovedBid, result.Bid.Status)
}

func TestAdmitUnlinkedBidderWarnedOnce(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "alice", bidBody(100))
	gh.addComment(6, "alice", bidBody(150))
	policy := testPolicy()
	policy.RequirePayment = true
	service, periods, bidders := newAdmissionService(t, gh, policy)
	savedOpenPeriod(t, periods)

	result, err := service.Admit(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.UnlinkedPendingBid, result.Bid.Status)

	registry, err := bidders.Load()
	require.NoError(t, err)
	record := registry.Get("alice")
	require.NotNil(t, record)
	require.NotNil(t, record.WarnedAt)
	firstWarning := *record.WarnedAt

	// комментарий зачёркнут, пояснение опубликовано ровно один раз
	assert.Contains(t, gh.updatedComments[5], "~~")
	require.Len(t, gh.posted, 1)
	assert.Contains(t, gh.posted[0], "on hold")

	// вторая заявка в том же цикле не перезаписывает предупреждение
	_, err = service.Admit(context.Background(), 6)
	require.NoError(t, err)

	registry, err = bidders.Load()
	require.NoError(t, err)
	assert.True(t, registry.Get("alice").WarnedAt.Equal(firstWarning))
	assert.Len(t, gh.posted, 1)
}

func TestAdmitLinkedBidderNotPaused(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "alice", bidBody(100))
	policy := testPolicy()
	policy.RequirePayment = true
	service, periods, bidders := newAdmissionService(t, gh, policy)
	savedOpenPeriod(t, periods)

	registry, err := bidders.Load()
	require.NoError(t, err)
	registry.Ensure("alice").PaymentLinked = true
	require.NoError(t, bidders.Save(registry))

	result, err := service.Admit(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.PendingBid, result.Bid.Status)
	assert.Empty(t, gh.posted)
}

func TestAdmitNotificationFailureIsSoft(t *testing.T) {
	gh := newFakeGithub()
	gh.addComment(5, "alice", bidBody(100))
	gh.postErr = assert.AnError
	policy := testPolicy()
	policy.RequirePayment = true
	service, periods, _ := newAdmissionService(t, gh, policy)
	savedOpenPeriod(t, periods)

	// нотификация падает, но заявка уже сохранена и операция успешна
	result, err := service.Admit(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, result.Success)

	period, loadErr := periods.Load()
	require.NoError(t, loadErr)
	require.Len(t, period.Bids, 1)
	assert.True(t, strings.HasPrefix(string(period.Bids[0].Status), "unlinked"))
}
