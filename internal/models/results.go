package models

// AdmissionResult представляет итог приёма заявки.
type AdmissionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Bid     *Bid   `json:"bid,omitempty"`
}

// ApprovalResult представляет итог обработки сигнала одобрения.
type ApprovalResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Status  BidStatus `json:"status,omitempty"`
}

// SweepResult представляет итог обхода заявок в льготном сроке.
type SweepResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Restored int    `json:"restored"`
	Expired  int    `json:"expired"`
	Waiting  int    `json:"waiting"`
}

// CloseResult представляет итог закрытия аукционного периода.
type CloseResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	PeriodID string         `json:"periodId,omitempty"`
	Winner   *Bid           `json:"winner,omitempty"`
	Payment  *PaymentRecord `json:"payment,omitempty"`
}
