package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/banner-auction/internal/github"
	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/payment"
	"github.com/senyabanana/banner-auction/internal/repository"
	"github.com/senyabanana/banner-auction/internal/utils"
)

// CloserService выбирает победителя, списывает оплату и архивирует период.
type CloserService struct {
	Periods  repository.PeriodRepository
	Bidders  repository.BidderRepository
	Archive  repository.ArchiveRepository
	Github   github.Client
	Payments payment.Charger
	Logger   *log.Logger
}

// NewCloserService создает новый экземпляр CloserService.
func NewCloserService(periods repository.PeriodRepository, bidders repository.BidderRepository, archive repository.ArchiveRepository, gh github.Client, payments payment.Charger, logger *log.Logger) *CloserService {
	return &CloserService{
		Periods:  periods,
		Bidders:  bidders,
		Archive:  archive,
		Github:   gh,
		Payments: payments,
		Logger:   logger,
	}
}

// Close закрывает текущий период: победитель, оплата, архив, сброс живого слота.
// Отсутствие периода - успех без работы; нечитаемый файл - фатальный отказ.
func (s *CloserService) Close(ctx context.Context) (*models.CloseResult, error) {
	period, err := s.Periods.Load()
	if errors.Is(err, repository.ErrCorrupted) {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load bidding period")
	}
	if period == nil {
		return &models.CloseResult{Success: true, Message: "no bidding period to close"}, nil
	}
	if period.Status != models.OpenPeriod {
		return nil, models.NewErrorResponse(http.StatusConflict, "bidding period is not open")
	}

	winner := selectWinner(period)

	snapshot := *period
	snapshot.Status = models.ClosedPeriod

	var payRecord *models.PaymentRecord
	if winner != nil {
		// Метки добавляются до любого внешнего распространения ссылки.
		winner.DestinationURL = utils.AppendTrackingParams(winner.DestinationURL, period.ID)
		payRecord = s.chargeWinner(ctx, winner, period.ID)
		// Итог оплаты живёт только на архивной записи.
		snapshot.Payment = payRecord
	}

	if err := s.Archive.Save(&snapshot); err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to archive bidding period")
	}
	if err := s.Periods.Reset(); err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to reset bidding period slot")
	}

	// Дальше только best-effort зеркалирование, закрытие уже состоялось.
	s.announce(ctx, period, winner, payRecord)

	result := &models.CloseResult{
		Success:  true,
		PeriodID: period.ID,
		Winner:   winner,
		Payment:  payRecord,
	}
	if winner == nil {
		result.Message = "period closed with no winner"
	} else {
		result.Message = fmt.Sprintf("period closed, winner @%s at $%d", winner.Bidder, winner.Amount)
	}
	return result, nil
}

// CloseIfDue закрывает период только после его end_date. Используется планировщиком.
func (s *CloserService) CloseIfDue(ctx context.Context) (*models.CloseResult, error) {
	period, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if period == nil || period.Status != models.OpenPeriod {
		return &models.CloseResult{Success: true, Message: "no bidding period to close"}, nil
	}
	if time.Now().UTC().Before(period.EndDate) {
		return &models.CloseResult{Success: true, Message: "bidding period is still running"}, nil
	}
	return s.Close(ctx)
}

// selectWinner возвращает максимальную одобренную заявку.
// При равных суммах детерминированно побеждает раньше добавленная (строгое сравнение).
func selectWinner(period *models.BiddingPeriod) *models.Bid {
	var winner *models.Bid
	for i := range period.Bids {
		if period.Bids[i].Status != models.ApprovedBid {
			continue
		}
		if winner == nil || period.Bids[i].Amount > winner.Amount {
			winner = &period.Bids[i]
		}
	}
	return winner
}

// chargeWinner списывает оплату. Все три исхода (paid, failed, pending)
// не мешают закрытию периода.
func (s *CloserService) chargeWinner(ctx context.Context, winner *models.Bid, periodID string) *models.PaymentRecord {
	record := &models.PaymentRecord{Winner: winner.Bidder, Amount: winner.Amount}

	registry, err := s.Bidders.Load()
	if err != nil {
		s.Logger.Printf("failed to load bidder registry for charge: %v", err)
		record.Status = models.PendingPayment
		return record
	}
	bidder := registry.Get(winner.Bidder)
	if bidder == nil || bidder.StripeCustomerID == "" || bidder.StripePaymentMethodID == "" {
		record.Status = models.PendingPayment
		return record
	}

	result, err := s.Payments.Charge(ctx, payment.ChargeRequest{
		CustomerID:      bidder.StripeCustomerID,
		PaymentMethodID: bidder.StripePaymentMethodID,
		Amount:          winner.Amount,
		Metadata: map[string]string{
			"period_id": periodID,
			"bidder":    winner.Bidder,
		},
	})
	if err != nil {
		var decline *payment.DeclineError
		if errors.As(err, &decline) {
			s.Logger.Printf("charge declined for %s: %v", winner.Bidder, err)
		} else {
			s.Logger.Printf("charge error for %s: %v", winner.Bidder, err)
		}
		record.Status = models.FailedPayment
		return record
	}

	record.ID = result.ID
	record.Status = models.PaidPayment
	record.ChargedAt = time.Now().UTC()
	return record
}

func (s *CloserService) announce(ctx context.Context, period *models.BiddingPeriod, winner *models.Bid, payRecord *models.PaymentRecord) {
	var message string
	if winner == nil {
		message = fmt.Sprintf("Bidding period %s has closed with no approved bids. See you next round!", period.ID)
	} else {
		message = fmt.Sprintf("Bidding period %s has closed. Winner: @%s at $%d (payment: %s).",
			period.ID, winner.Bidder, winner.Amount, payRecord.Status)
	}
	if err := s.Github.PostComment(ctx, period.IssueNumber, message); err != nil {
		s.Logger.Printf("failed to post closing announcement: %v", err)
	}
	if err := s.Github.CloseIssue(ctx, period.IssueNumber); err != nil {
		s.Logger.Printf("failed to close auction issue #%d: %v", period.IssueNumber, err)
	}
	if err := s.Github.UnpinIssue(ctx, period.IssueNumber); err != nil {
		s.Logger.Printf("failed to unpin auction issue #%d: %v", period.IssueNumber, err)
	}
}
