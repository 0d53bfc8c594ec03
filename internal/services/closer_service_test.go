package services

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/payment"
	"github.com/senyabanana/banner-auction/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFixture struct {
	service *CloserService
	periods *repository.FilePeriodRepository
	bidders *repository.FileBidderRepository
	gh      *fakeGithub
	charger *fakeCharger
	dataDir string
}

func newCloserFixture(t *testing.T) *closerFixture {
	t.Helper()
	dir := t.TempDir()
	periods := repository.NewFilePeriodRepository(dir)
	bidders := repository.NewFileBidderRepository(dir)
	archive := repository.NewFileArchiveRepository(dir)
	gh := newFakeGithub()
	charger := &fakeCharger{}
	return &closerFixture{
		service: NewCloserService(periods, bidders, archive, gh, charger, testLogger()),
		periods: periods,
		bidders: bidders,
		gh:      gh,
		charger: charger,
		dataDir: dir,
	}
}

func (f *closerFixture) linkBidder(t *testing.T, username string) {
	t.Helper()
	registry, err := f.bidders.Load()
	require.NoError(t, err)
	record := registry.Ensure(username)
	record.PaymentLinked = true
	record.StripeCustomerID = "cus_123"
	record.StripePaymentMethodID = "pm_123"
	require.NoError(t, f.bidders.Save(registry))
}

func (f *closerFixture) archived(t *testing.T, periodID string) *models.BiddingPeriod {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dataDir, "archive", "period-"+periodID+".json"))
	require.NoError(t, err)
	var period models.BiddingPeriod
	require.NoError(t, json.Unmarshal(data, &period))
	return &period
}

func TestCloseMissingPeriodIsNoop(t *testing.T) {
	f := newCloserFixture(t)

	result, err := f.service.Close(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "no bidding period to close")
}

func TestCloseCorruptedPeriodIsFatal(t *testing.T) {
	f := newCloserFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, "current-period.json"), []byte("{broken"), 0o644))

	_, err := f.service.Close(context.Background())

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Contains(t, errorResponse.Message, "corrupted")
}

func TestCloseNotOpenPeriodFails(t *testing.T) {
	f := newCloserFixture(t)
	require.NoError(t, f.periods.Save(&models.BiddingPeriod{ID: "2026-08-01", Status: models.ClosedPeriod}))

	_, err := f.service.Close(context.Background())

	var errorResponse *models.ErrorResponse
	require.ErrorAs(t, err, &errorResponse)
	assert.Equal(t, http.StatusConflict, errorResponse.StatusCode)
}

func TestCloseSelectsHighestApprovedBid(t *testing.T) {
	f := newCloserFixture(t)
	period := savedOpenPeriod(t, f.periods,
		models.Bid{Bidder: "a", Amount: 100, Status: models.ApprovedBid, CommentID: 1, DestinationURL: "https://a.example.com"},
		models.Bid{Bidder: "b", Amount: 500, Status: models.PendingBid, CommentID: 2, DestinationURL: "https://b.example.com"},
		models.Bid{Bidder: "c", Amount: 300, Status: models.ApprovedBid, CommentID: 3, DestinationURL: "https://c.example.com"},
		models.Bid{Bidder: "d", Amount: 400, Status: models.RejectedBid, CommentID: 4, DestinationURL: "https://d.example.com"},
	)
	f.linkBidder(t, "c")

	result, err := f.service.Close(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)

	// побеждает максимальная одобренная, а не просто максимальная
	require.NotNil(t, result.Winner)
	assert.Equal(t, "c", result.Winner.Bidder)
	assert.Equal(t, int64(300), result.Winner.Amount)

	require.NotNil(t, result.Payment)
	assert.Equal(t, models.PaidPayment, result.Payment.Status)
	require.Len(t, f.charger.requests, 1)
	assert.Equal(t, "cus_123", f.charger.requests[0].CustomerID)
	assert.Equal(t, int64(300), f.charger.requests[0].Amount)

	// метки добавлены до распространения ссылки
	assert.Contains(t, result.Winner.DestinationURL, "utm_source=banner-auction")
	assert.Contains(t, result.Winner.DestinationURL, "utm_campaign="+period.ID)

	archived := f.archived(t, period.ID)
	assert.Equal(t, models.ClosedPeriod, archived.Status)
	require.NotNil(t, archived.Payment)
	assert.Equal(t, models.PaidPayment, archived.Payment.Status)

	// живой слот сброшен
	live, loadErr := f.periods.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, live)

	assert.Equal(t, []int{period.IssueNumber}, f.gh.closedIssues)
	assert.Equal(t, []int{period.IssueNumber}, f.gh.unpinnedIssues)
	require.Len(t, f.gh.posted, 1)
	assert.Contains(t, f.gh.posted[0], "@c")
}

func TestCloseNoApprovedBids(t *testing.T) {
	f := newCloserFixture(t)
	period := savedOpenPeriod(t, f.periods,
		models.Bid{Bidder: "b", Amount: 500, Status: models.PendingBid, CommentID: 2},
		models.Bid{Bidder: "d", Amount: 400, Status: models.RejectedBid, CommentID: 4},
	)

	result, err := f.service.Close(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "no winner")
	assert.Nil(t, result.Winner)
	assert.Nil(t, result.Payment)
	assert.Empty(t, f.charger.requests)

	archived := f.archived(t, period.ID)
	assert.Equal(t, models.ClosedPeriod, archived.Status)
	assert.Nil(t, archived.Payment)

	live, loadErr := f.periods.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, live)
}

func TestCloseChargeDeclined(t *testing.T) {
	f := newCloserFixture(t)
	period := savedOpenPeriod(t, f.periods,
		models.Bid{Bidder: "c", Amount: 300, Status: models.ApprovedBid, CommentID: 3},
	)
	f.linkBidder(t, "c")
	f.charger.err = &payment.DeclineError{Code: "card_declined", Message: "insufficient funds"}

	result, err := f.service.Close(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Payment)
	assert.Equal(t, models.FailedPayment, result.Payment.Status)

	// отказ процессинга не мешает закрытию
	archived := f.archived(t, period.ID)
	require.NotNil(t, archived.Payment)
	assert.Equal(t, models.FailedPayment, archived.Payment.Status)
}

func TestCloseWithoutPaymentRefs(t *testing.T) {
	f := newCloserFixture(t)
	savedOpenPeriod(t, f.periods,
		models.Bid{Bidder: "c", Amount: 300, Status: models.ApprovedBid, CommentID: 3},
	)

	result, err := f.service.Close(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Equal(t, models.PendingPayment, result.Payment.Status)
	assert.Empty(t, f.charger.requests)
}

func TestCloseIfDueStillRunning(t *testing.T) {
	f := newCloserFixture(t)
	period := savedOpenPeriod(t, f.periods,
		models.Bid{Bidder: "c", Amount: 300, Status: models.ApprovedBid, CommentID: 3},
	)
	period.EndDate = time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, f.periods.Save(period))

	result, err := f.service.CloseIfDue(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "still running")

	live, loadErr := f.periods.Load()
	require.NoError(t, loadErr)
	require.NotNil(t, live)
	assert.Equal(t, models.OpenPeriod, live.Status)
}

func TestCloseIfDuePastEndDate(t *testing.T) {
	f := newCloserFixture(t)
	period := savedOpenPeriod(t, f.periods,
		models.Bid{Bidder: "c", Amount: 300, Status: models.ApprovedBid, CommentID: 3},
	)
	period.EndDate = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.periods.Save(period))

	result, err := f.service.CloseIfDue(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Winner)

	live, loadErr := f.periods.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, live)
}
