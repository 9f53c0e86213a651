// Package payment is the thin checkout glue in front of the payment processor.
package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned for webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type CheckoutRequest struct {
	UserID     uint
	Email      string
	CourseSlug string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is the part of a webhook notification the course cares about.
// Paid is only true for completed checkouts whose payment has cleared.
type Event struct {
	Type       string
	SessionID  string
	UserID     uint
	CourseSlug string
	Paid       bool
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
