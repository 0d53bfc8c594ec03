package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/senyabanana/banner-auction/internal/github"
	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/repository"
	"github.com/senyabanana/banner-auction/internal/utils"
)

// ApprovalService переводит заявку из pending по реакции владельца репозитория.
type ApprovalService struct {
	Periods repository.PeriodRepository
	Github  github.Client
	Policy  models.Policy
	Logger  *log.Logger
}

// NewApprovalService создает новый экземпляр ApprovalService.
func NewApprovalService(periods repository.PeriodRepository, gh github.Client, policy models.Policy, logger *log.Logger) *ApprovalService {
	return &ApprovalService{
		Periods: periods,
		Github:  gh,
		Policy:  policy,
		Logger:  logger,
	}
}

// Approve применяет сигнал одобрения к заявке. Повторный вызов по уже решённой
// заявке - успех без изменений.
func (s *ApprovalService) Approve(ctx context.Context, commentID int64) (*models.ApprovalResult, error) {
	if s.Policy.ApprovalMode == models.AutoApproval {
		return &models.ApprovalResult{
			Success: true,
			Message: "approval mode is auto, nothing to approve manually",
		}, nil
	}

	period, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if period == nil || period.Status != models.OpenPeriod {
		return nil, models.NewErrorResponse(http.StatusNotFound, "no open bidding period")
	}

	bid := period.FindBid(commentID)
	if bid == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "bid not found for this comment")
	}
	if utils.ContainsBidStatus(models.TerminalBidStatuses, bid.Status) {
		return &models.ApprovalResult{
			Success: true,
			Message: fmt.Sprintf("bid is already %s", bid.Status),
			Status:  bid.Status,
		}, nil
	}
	if bid.Status == models.UnlinkedPendingBid {
		// Этим статусом владеет Grace Sweeper; одобрение применимо после восстановления.
		return &models.ApprovalResult{
			Success: true,
			Message: "bid is awaiting a linked payment method",
			Status:  bid.Status,
		}, nil
	}

	reactions, err := s.Github.ListReactions(ctx, commentID)
	if errors.Is(err, github.ErrCommentNotFound) {
		return nil, models.NewErrorResponse(http.StatusNotFound, "comment not found, it may have been deleted")
	}
	if err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusBadGateway, "failed to fetch reactions")
	}

	// Первая реакция владельца из разрешённого набора одобряет, всё остальное отклоняет.
	decision := models.RejectedBid
	for _, reaction := range reactions {
		if reaction.Author != s.Policy.OwnerUsername {
			continue
		}
		if utils.ContainsString(s.Policy.AllowedReactions, reaction.Content) {
			decision = models.ApprovedBid
			break
		}
	}

	bid.Status = decision
	if err := s.Periods.Save(period); err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to persist approval decision")
	}

	// Решение уже сохранено, нотификация его потерять не может.
	message := fmt.Sprintf("Bid of $%d from @%s has been %s.", bid.Amount, bid.Bidder, decision)
	if err := s.Github.PostComment(ctx, period.IssueNumber, message); err != nil {
		s.Logger.Printf("failed to post approval notification for comment %d: %v", commentID, err)
	}

	return &models.ApprovalResult{
		Success: true,
		Message: fmt.Sprintf("bid has been %s", decision),
		Status:  decision,
	}, nil
}
