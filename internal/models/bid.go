package models

import "time"

type (
	BidStatus    string // Статус спонсорской заявки
	ApprovalMode string // Режим одобрения заявок
)

const (
	PendingBid         BidStatus = "pending"          // Заявка ждёт решения владельца
	ApprovedBid        BidStatus = "approved"         // Заявка одобрена
	RejectedBid        BidStatus = "rejected"         // Заявка отклонена
	UnlinkedPendingBid BidStatus = "unlinked_pending" // Заявка приостановлена до привязки оплаты
	ExpiredBid         BidStatus = "expired"          // Льготный срок истёк, заявка исключена

	AutoApproval  ApprovalMode = "auto"  // Заявки одобряются автоматически
	EmojiApproval ApprovalMode = "emoji" // Заявки одобряются реакцией владельца
)

// TerminalBidStatuses - статусы, из которых заявка уже не выходит в рамках периода.
var TerminalBidStatuses = []BidStatus{ApprovedBid, RejectedBid, ExpiredBid}

// Bid представляет модель спонсорской заявки, привязанной к комментарию.
type Bid struct {
	Bidder         string    `json:"bidder"`
	Amount         int64     `json:"amount"`
	BannerURL      string    `json:"banner_url"`
	DestinationURL string    `json:"destination_url"`
	Contact        string    `json:"contact"`
	Status         BidStatus `json:"status"`
	CommentID      int64     `json:"comment_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// InitialBidStatus реализует таблицу решений для начального статуса заявки.
// Непривязанная оплата при включённом контроле всегда важнее режима одобрения.
func InitialBidStatus(requirePayment, paymentLinked bool, mode ApprovalMode) BidStatus {
	if requirePayment && !paymentLinked {
		return UnlinkedPendingBid
	}
	if mode == AutoApproval {
		return ApprovedBid
	}
	return PendingBid
}
