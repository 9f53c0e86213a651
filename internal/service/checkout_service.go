package service

import (
	"context"
	"course_backend/internal/config"
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"course_backend/pkg/logger"
	"course_backend/pkg/monitoring"
	"course_backend/pkg/payment"
	"errors"
	"time"

	"go.uber.org/zap"
)

const eventCheckoutCompleted = "checkout.session.completed"

// CheckoutService sells course access through the payment gateway. Gateway
// is nil when payments are not configured.
type CheckoutService struct {
	Gateway payment.Gateway
	Access  AccessStore
	Course  config.CourseConfig
	now     func() time.Time
}

func NewCheckoutService(gateway payment.Gateway, access AccessStore, course config.CourseConfig) *CheckoutService {
	return &CheckoutService{Gateway: gateway, Access: access, Course: course, now: time.Now}
}

type AccessStatus struct {
	CourseSlug      string `json:"courseSlug"`
	HasAccess       bool   `json:"hasAccess"`
	FreeModules     int    `json:"freeModules"`
	PaymentsEnabled bool   `json:"paymentsEnabled"`
}

func (s *CheckoutService) CreateSession(ctx context.Context) (*payment.CheckoutSession, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if s.Gateway == nil {
		return nil, util.ErrPaymentDisabled
	}

	owned, err := s.Access.HasAccess(ctx, sess.UserID(), s.Course.Slug)
	if err != nil {
		return nil, util.NewPersistenceError("check course access", err)
	}
	if owned {
		return nil, util.ErrAlreadyPurchased
	}

	return s.Gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		UserID:     sess.UserID(),
		Email:      sess.Email(),
		CourseSlug: s.Course.Slug,
	})
}

// HandleWebhook grants access for paid checkouts. Replayed notifications and
// unrelated events are acknowledged without effect.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.Gateway == nil {
		return util.ErrPaymentDisabled
	}
	evt, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return util.NewValidationError(err)
		}
		return err
	}

	if evt.Type != eventCheckoutCompleted || !evt.Paid {
		logger.Log.Debug("Ignoring payment event", zap.String("type", evt.Type), zap.Bool("paid", evt.Paid))
		return nil
	}
	if evt.UserID == 0 || evt.SessionID == "" {
		return util.Invalid("event", "checkout session without user reference")
	}

	slug := evt.CourseSlug
	if slug == "" {
		slug = s.Course.Slug
	}
	created, err := s.Access.Grant(ctx, &model.CourseAccess{
		UserID:            evt.UserID,
		CourseSlug:        slug,
		CheckoutSessionID: evt.SessionID,
		GrantedAt:         s.now(),
	})
	if err != nil {
		return util.NewPersistenceError("grant access", err)
	}
	if created {
		monitoring.AccessGrants.Inc()
		logger.Log.Info("Course access granted",
			zap.Uint("userID", evt.UserID),
			zap.String("course", slug),
			zap.String("session", evt.SessionID),
		)
	}
	return nil
}

func (s *CheckoutService) AccessStatus(ctx context.Context) (*AccessStatus, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.Access.HasAccess(ctx, sess.UserID(), s.Course.Slug)
	if err != nil {
		return nil, util.NewPersistenceError("check course access", err)
	}
	return &AccessStatus{
		CourseSlug:      s.Course.Slug,
		HasAccess:       owned,
		FreeModules:     s.Course.FreeModules,
		PaymentsEnabled: s.Gateway != nil,
	}, nil
}
