package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// ChargeRequest описывает списание с сохранённого платёжного метода победителя.
type ChargeRequest struct {
	CustomerID      string
	PaymentMethodID string
	Amount          int64 // в долларах
	Metadata        map[string]string
}

// ChargeResult - ответ платёжного провайдера.
type ChargeResult struct {
	ID     string
	Status string
}

// DeclineError - структурированный отказ процессинга, в отличие от транспортной ошибки.
type DeclineError struct {
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("charge declined (%s): %s", e.Code, e.Message)
}

// Charger - интерфейс платёжного провайдера.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// StripeCharger - реализация Charger поверх Stripe PaymentIntents.
type StripeCharger struct{}

// NewStripeCharger создает новый экземпляр StripeCharger.
func NewStripeCharger(apiKey string) *StripeCharger {
	stripe.Key = apiKey
	return &StripeCharger{}
}

// Charge выполняет off-session списание с сохранённого платёжного метода.
func (c *StripeCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount * 100), // Stripe считает в центах
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Customer:      stripe.String(req.CustomerID),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.New().String())
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, &DeclineError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("stripe charge failed: %w", err)
	}
	return &ChargeResult{ID: intent.ID, Status: string(intent.Status)}, nil
}
