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
	"github.com/senyabanana/banner-auction/internal/repository"
	"github.com/senyabanana/banner-auction/internal/utils"
	"github.com/senyabanana/banner-auction/internal/validator"
)

// AdmissionService принимает заявки из комментариев аукционного треда.
type AdmissionService struct {
	Periods repository.PeriodRepository
	Bidders repository.BidderRepository
	Github  github.Client
	Policy  models.Policy
	Logger  *log.Logger
}

// NewAdmissionService создает новый экземпляр AdmissionService.
func NewAdmissionService(periods repository.PeriodRepository, bidders repository.BidderRepository, gh github.Client, policy models.Policy, logger *log.Logger) *AdmissionService {
	return &AdmissionService{
		Periods: periods,
		Bidders: bidders,
		Github:  gh,
		Policy:  policy,
		Logger:  logger,
	}
}

// Admit проводит заявку из комментария через валидацию и ценовой контроль.
// Единственное место, где новая заявка попадает в период.
func (s *AdmissionService) Admit(ctx context.Context, commentID int64) (*models.AdmissionResult, error) {
	period, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if period == nil || period.Status != models.OpenPeriod {
		return nil, models.NewErrorResponse(http.StatusNotFound, "no open bidding period")
	}

	comment, err := s.Github.GetComment(ctx, commentID)
	if errors.Is(err, github.ErrCommentNotFound) {
		return nil, models.NewErrorResponse(http.StatusNotFound, "comment not found, it may have been deleted")
	}
	if err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusBadGateway, "failed to fetch comment")
	}

	parsed, err := validator.ParseBid(comment.Body)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if result := validator.ValidateBid(parsed, s.Policy); !result.Valid {
		return nil, models.NewErrorResponse(http.StatusBadRequest, result.ErrorMessages())
	}

	// Свежее чтение: авторитет для "текущего максимума" - последнее сохранённое
	// состояние, а не снимок, по которому проверялась открытость периода.
	fresh, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if fresh == nil || fresh.Status != models.OpenPeriod {
		return nil, models.NewErrorResponse(http.StatusConflict, "bidding period closed while processing")
	}
	if fresh.FindBid(commentID) != nil {
		return nil, models.NewErrorResponse(http.StatusConflict, "bid for this comment has already been admitted")
	}
	if highest := fresh.HighestActiveBid(); highest != nil && parsed.Amount <= highest.Amount {
		return nil, models.NewErrorResponse(http.StatusBadRequest,
			fmt.Sprintf("bid must exceed the current highest bid of $%d", highest.Amount))
	}

	registry, err := s.Bidders.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to load bidder registry")
	}

	status := models.InitialBidStatus(s.Policy.RequirePayment, registry.Linked(comment.Author), s.Policy.ApprovalMode)
	bid := models.Bid{
		Bidder:         comment.Author,
		Amount:         parsed.Amount,
		BannerURL:      parsed.BannerURL,
		DestinationURL: parsed.DestinationURL,
		Contact:        parsed.Contact,
		Status:         status,
		CommentID:      comment.ID,
		Timestamp:      comment.CreatedAt,
	}

	var freshWarning bool
	if status == models.UnlinkedPendingBid {
		freshWarning = s.warnBidder(registry, comment.Author)
	}

	fresh.Bids = append(fresh.Bids, bid)
	if err := s.Periods.Save(fresh); err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to persist bid")
	}

	// Зеркалирование в тред - best-effort, запись уже сохранена.
	if status == models.UnlinkedPendingBid {
		if err := s.Github.UpdateComment(ctx, comment.ID, utils.StrikeThroughComment(comment.Body)); err != nil {
			s.Logger.Printf("failed to mark unlinked bid comment %d: %v", comment.ID, err)
		}
		if freshWarning {
			if err := s.Github.PostComment(ctx, fresh.IssueNumber, s.paymentWarningMessage(comment.Author)); err != nil {
				s.Logger.Printf("failed to post payment warning for %s: %v", comment.Author, err)
			}
		}
	}

	return &models.AdmissionResult{
		Success: true,
		Message: fmt.Sprintf("bid of $%d admitted with status %q", bid.Amount, bid.Status),
		Bid:     &bid,
	}, nil
}

// warnBidder ставит якорь льготного срока. Действующее предупреждение не перезаписывается,
// поэтому пояснение публикуется не чаще одного раза за цикл.
func (s *AdmissionService) warnBidder(registry *models.BidderRegistry, username string) bool {
	record := registry.Ensure(username)
	now := time.Now().UTC()
	if record.WarnedAt != nil && now.Before(record.WarnedAt.Add(s.Policy.GracePeriod())) {
		return false
	}
	record.WarnedAt = &now
	if err := s.Bidders.Save(registry); err != nil {
		s.Logger.Printf("failed to persist warning for %s: %v", username, err)
		return false
	}
	return true
}

func (s *AdmissionService) paymentWarningMessage(username string) string {
	return fmt.Sprintf(
		"@%s your bid is on hold: this auction requires a linked payment method. "+
			"Please link one within %d hours or the bid will expire.",
		username, s.Policy.GraceHours)
}
