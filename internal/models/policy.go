package models

import "time"

// Policy описывает правила ценообразования и одобрения, загружается один раз на запуск.
type Policy struct {
	MinimumBid       int64
	BidIncrement     int64
	ApprovalMode     ApprovalMode
	RequirePayment   bool
	GraceHours       int
	OwnerUsername    string
	AllowedReactions []string
}

// GracePeriod возвращает длительность льготного срока после предупреждения.
func (p Policy) GracePeriod() time.Duration {
	return time.Duration(p.GraceHours) * time.Hour
}
