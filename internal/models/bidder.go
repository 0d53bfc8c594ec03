package models

import "time"

// BidderRecord хранит платёжное состояние участника, переживает смену периодов.
type BidderRecord struct {
	GithubUsername        string     `json:"github_username"`
	PaymentLinked         bool       `json:"payment_linked"`
	LinkedAt              *time.Time `json:"linked_at,omitempty"`
	WarnedAt              *time.Time `json:"warned_at,omitempty"`
	StripeCustomerID      string     `json:"stripe_customer_id,omitempty"`
	StripePaymentMethodID string     `json:"stripe_payment_method_id,omitempty"`
}

// BidderRegistry представляет реестр всех известных участников.
type BidderRegistry struct {
	Bidders map[string]*BidderRecord `json:"bidders"`
}

// NewBidderRegistry создает пустой реестр участников.
func NewBidderRegistry() *BidderRegistry {
	return &BidderRegistry{Bidders: make(map[string]*BidderRecord)}
}

// Get возвращает запись участника или nil, если участник неизвестен.
func (r *BidderRegistry) Get(username string) *BidderRecord {
	return r.Bidders[username]
}

// Ensure возвращает запись участника, создавая её при первом обращении.
func (r *BidderRegistry) Ensure(username string) *BidderRecord {
	if rec, ok := r.Bidders[username]; ok {
		return rec
	}
	rec := &BidderRecord{GithubUsername: username}
	r.Bidders[username] = rec
	return rec
}

// Linked сообщает, привязан ли у участника платёжный метод.
func (r *BidderRegistry) Linked(username string) bool {
	rec := r.Bidders[username]
	return rec != nil && rec.PaymentLinked
}
