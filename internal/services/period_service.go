package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/banner-auction/internal/github"
	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/repository"
)

// PeriodService открывает новые аукционные периоды и отдаёт текущий.
type PeriodService struct {
	Periods      repository.PeriodRepository
	Github       github.Client
	Policy       models.Policy
	DurationDays int
	Logger       *log.Logger
}

// NewPeriodService создает новый экземпляр PeriodService.
func NewPeriodService(periods repository.PeriodRepository, gh github.Client, policy models.Policy, durationDays int, logger *log.Logger) *PeriodService {
	return &PeriodService{
		Periods:      periods,
		Github:       gh,
		Policy:       policy,
		DurationDays: durationDays,
		Logger:       logger,
	}
}

// Open создает новый период и тред аукциона. Одновременно открыт максимум один период.
func (s *PeriodService) Open(ctx context.Context) (*models.BiddingPeriod, error) {
	existing, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if existing != nil && existing.Status == models.OpenPeriod {
		return nil, models.NewErrorResponse(http.StatusConflict, "a bidding period is already open")
	}

	start := time.Now().UTC()
	periodID := models.PeriodID(start)
	end := start.AddDate(0, 0, s.DurationDays)

	// Без треда принимать заявки некуда, поэтому ошибка создания прерывает открытие.
	issue, err := s.Github.CreateIssue(ctx,
		fmt.Sprintf("Banner sponsorship auction - %s", periodID),
		s.rulesBody(end))
	if err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusBadGateway, "failed to create auction issue")
	}

	period := &models.BiddingPeriod{
		ID:          periodID,
		Status:      models.OpenPeriod,
		StartDate:   start,
		EndDate:     end,
		IssueNumber: issue.Number,
		IssueURL:    issue.URL,
		Bids:        []models.Bid{},
	}
	if err := s.Periods.Save(period); err != nil {
		s.Logger.Println(err)
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to persist bidding period")
	}

	if err := s.Github.PinIssue(ctx, issue.Number); err != nil {
		s.Logger.Printf("failed to pin auction issue #%d: %v", issue.Number, err)
	}

	return period, nil
}

// Current возвращает активный период.
func (s *PeriodService) Current() (*models.BiddingPeriod, error) {
	period, err := s.Periods.Load()
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "bidding period file is corrupted")
	}
	if period == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "no active bidding period")
	}
	return period, nil
}

func (s *PeriodService) rulesBody(end time.Time) string {
	var b strings.Builder
	b.WriteString("## Banner sponsorship auction\n\n")
	b.WriteString("Bid for the banner slot by posting a comment with a fenced block:\n\n")
	b.WriteString("```\n")
	b.WriteString(fmt.Sprintf("amount: %d\n", s.Policy.MinimumBid))
	b.WriteString("banner_url: https://example.com/banner.png\n")
	b.WriteString("destination_url: https://example.com\n")
	b.WriteString("contact: sponsor@example.com\n")
	b.WriteString("```\n\n")
	b.WriteString(fmt.Sprintf("- Minimum bid: $%d, in increments of $%d\n", s.Policy.MinimumBid, s.Policy.BidIncrement))
	b.WriteString("- Each bid must exceed the current highest bid\n")
	if s.Policy.RequirePayment {
		b.WriteString(fmt.Sprintf("- A linked payment method is required; unlinked bids expire after %d hours\n", s.Policy.GraceHours))
	}
	b.WriteString(fmt.Sprintf("- Bidding closes on %s\n", end.Format("2006-01-02")))
	return b.String()
}
