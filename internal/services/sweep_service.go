package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/banner-auction/internal/github"
	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/repository"
	"github.com/senyabanana/banner-auction/internal/utils"
)

// SweepService обходит заявки в льготном сроке: восстанавливает привязавших оплату
// и исключает просрочивших. Безопасен для сколь угодно частого запуска.
type SweepService struct {
	Periods repository.PeriodRepository
	Bidders repository.BidderRepository
	Github  github.Client
	Policy  models.Policy
	Logger  *log.Logger
}

// NewSweepService создает новый экземпляр SweepService.
func NewSweepService(periods repository.PeriodRepository, bidders repository.BidderRepository, gh github.Client, policy models.Policy, logger *log.Logger) *SweepService {
	return &SweepService{
		Periods: periods,
		Bidders: bidders,
		Github:  gh,
		Policy:  policy,
		Logger:  logger,
	}
}

// уведомление, откладываемое до сохранения периода
type sweepNotice struct {
	bid      models.Bid
	restored bool
}

// Sweep обрабатывает все заявки со статусом unlinked_pending.
func (s *SweepService) Sweep(ctx context.Context) (*models.SweepResult, error) {
	period, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if period == nil || period.Status != models.OpenPeriod {
		return &models.SweepResult{Success: true, Message: "no open bidding period"}, nil
	}

	hasUnlinked := false
	for i := range period.Bids {
		if period.Bids[i].Status == models.UnlinkedPendingBid {
			hasUnlinked = true
			break
		}
	}
	if !hasUnlinked {
		return &models.SweepResult{Success: true, Message: "no bids awaiting payment link"}, nil
	}

	// Свежее чтение реестра: привязка могла появиться после приёма заявки.
	registry, err := s.Bidders.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load bidder registry")
	}

	result := &models.SweepResult{Success: true}
	now := time.Now().UTC()
	var notices []sweepNotice

	for i := range period.Bids {
		bid := &period.Bids[i]
		if bid.Status != models.UnlinkedPendingBid {
			continue
		}
		record := registry.Get(bid.Bidder)
		switch {
		case record != nil && record.PaymentLinked:
			// Восстановление, а не одобрение: режим одобрения сохраняет силу.
			if s.Policy.ApprovalMode == models.AutoApproval {
				bid.Status = models.ApprovedBid
			} else {
				bid.Status = models.PendingBid
			}
			result.Restored++
			notices = append(notices, sweepNotice{bid: *bid, restored: true})
		case record != nil && record.WarnedAt != nil && !now.Before(record.WarnedAt.Add(s.Policy.GracePeriod())):
			bid.Status = models.ExpiredBid
			result.Expired++
			notices = append(notices, sweepNotice{bid: *bid})
		default:
			// Ожидание внутри льготного срока - штатное состояние.
			result.Waiting++
		}
	}

	if result.Restored+result.Expired > 0 {
		if err := s.Periods.Save(period); err != nil {
			s.Logger.Println(err)
			return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to persist sweep results")
		}
	}

	// Нотификации идут строго после сохранения и не влияют на итог.
	for _, notice := range notices {
		s.notify(ctx, period.IssueNumber, notice)
	}

	result.Message = fmt.Sprintf("sweep finished: %d restored, %d expired, %d waiting",
		result.Restored, result.Expired, result.Waiting)
	return result, nil
}

func (s *SweepService) notify(ctx context.Context, issueNumber int, notice sweepNotice) {
	if notice.restored {
		if comment, err := s.Github.GetComment(ctx, notice.bid.CommentID); err == nil {
			if err := s.Github.UpdateComment(ctx, notice.bid.CommentID, utils.RemoveStrikeThrough(comment.Body)); err != nil {
				s.Logger.Printf("failed to restore comment %d: %v", notice.bid.CommentID, err)
			}
		} else {
			s.Logger.Printf("failed to fetch comment %d for restoration: %v", notice.bid.CommentID, err)
		}
		message := fmt.Sprintf("@%s payment method linked, your bid of $%d is back in the running (status: %s).",
			notice.bid.Bidder, notice.bid.Amount, notice.bid.Status)
		if err := s.Github.PostComment(ctx, issueNumber, message); err != nil {
			s.Logger.Printf("failed to post restoration notice for %s: %v", notice.bid.Bidder, err)
		}
		return
	}

	message := fmt.Sprintf("@%s the grace period has ended without a linked payment method, your bid of $%d has expired.",
		notice.bid.Bidder, notice.bid.Amount)
	if err := s.Github.PostComment(ctx, issueNumber, message); err != nil {
		s.Logger.Printf("failed to post expiry notice for %s: %v", notice.bid.Bidder, err)
	}
}
