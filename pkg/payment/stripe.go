package payment

import (
	"context"
	"course_backend/internal/config"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	metaUserID     = "user_id"
	metaCourseSlug = "course_slug"
)

type StripeGateway struct {
	cfg    config.PaymentConfig
	client session.Client
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	return &StripeGateway{
		cfg: cfg,
		client: session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.StripeSecretKey,
		},
	}
}

// CreateCheckout opens a one-off payment session for the course price. The
// user and course travel as client reference and metadata so the webhook can
// grant access without any local state.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(g.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(req.UserID), 10)),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata(metaUserID, strconv.FormatUint(uint64(req.UserID), 10))
	params.AddMetadata(metaCourseSlug, req.CourseSlug)

	s, err := g.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return parseWebhook(payload, signature, g.cfg.WebhookSecret)
}

func parseWebhook(payload []byte, signature, secret string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{Type: string(evt.Type)}
	if evt.Type != stripe.EventTypeCheckoutSessionCompleted || evt.Data == nil {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out.SessionID = cs.ID
	out.Paid = cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	out.CourseSlug = cs.Metadata[metaCourseSlug]

	uid := cs.Metadata[metaUserID]
	if uid == "" {
		uid = cs.ClientReferenceID
	}
	if id, err := strconv.ParseUint(uid, 10, 32); err == nil {
		out.UserID = uint(id)
	}
	return out, nil
}
