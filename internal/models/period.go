package models

import "time"

type (
	PeriodStatus  string // Статус аукционного периода
	PaymentStatus string // Итог списания с победителя
)

const (
	OpenPeriod   PeriodStatus = "open"   // Период открыт, заявки принимаются
	ClosedPeriod PeriodStatus = "closed" // Период закрыт и заархивирован

	PaidPayment    PaymentStatus = "paid"    // Списание прошло успешно
	FailedPayment  PaymentStatus = "failed"  // Списание не удалось
	PendingPayment PaymentStatus = "pending" // Платёжные реквизиты отсутствуют
)

// BiddingPeriod представляет модель единственного активного аукционного окна.
type BiddingPeriod struct {
	ID          string         `json:"period_id"`
	Status      PeriodStatus   `json:"status"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	IssueNumber int            `json:"issue_number"`
	IssueURL    string         `json:"issue_url"`
	Bids        []Bid          `json:"bids"`
	Payment     *PaymentRecord `json:"payment,omitempty"`
}

// PaymentRecord представляет итог списания, записывается только в архив.
type PaymentRecord struct {
	ID        string        `json:"id,omitempty"`
	Status    PaymentStatus `json:"status"`
	Winner    string        `json:"winner,omitempty"`
	Amount    int64         `json:"amount,omitempty"`
	ChargedAt time.Time     `json:"charged_at,omitempty"`
}

// PeriodID выводит стабильный человекочитаемый идентификатор периода из даты старта.
func PeriodID(start time.Time) string {
	return start.UTC().Format("2006-01-02")
}

// FindBid возвращает заявку по идентификатору комментария или nil.
func (p *BiddingPeriod) FindBid(commentID int64) *Bid {
	for i := range p.Bids {
		if p.Bids[i].CommentID == commentID {
			return &p.Bids[i]
		}
	}
	return nil
}

// HighestActiveBid возвращает максимальную не отклонённую заявку.
// При равенстве сумм побеждает раньше добавленная.
func (p *BiddingPeriod) HighestActiveBid() *Bid {
	var highest *Bid
	for i := range p.Bids {
		if p.Bids[i].Status == RejectedBid {
			continue
		}
		if highest == nil || p.Bids[i].Amount > highest.Amount {
			highest = &p.Bids[i]
		}
	}
	return highest
}
