package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const DefaultOrderTimeout = 15 * time.Second

type SubmitterConfig struct {
	Policy  domain.DeliveryPolicy
	Token   string
	Timeout time.Duration
}

// Submitter validates a checkout and places the order with a single bounded request.
// Failed submissions are never retried.
type Submitter struct {
	client port.StoreClient
	cfg    SubmitterConfig
	logger *zap.Logger
}

func NewSubmitter(client port.StoreClient, cfg SubmitterConfig, logger *zap.Logger) (*Submitter, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOrderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Submitter{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (s *Submitter) Policy() domain.DeliveryPolicy {
	return s.cfg.Policy
}

// Submit returns *domain.ValidationError without touching the network when the
// checkout is invalid, and *domain.SubmitError when the order could not be placed.
func (s *Submitter) Submit(ctx context.Context, fields domain.CheckoutFields, cart *domain.Cart, user domain.PlatformUser) (domain.OrderConfirmation, error) {
	if err := domain.ValidateCheckout(fields, cart); err != nil {
		return domain.OrderConfirmation{}, err
	}

	payload := domain.NewOrderPayload(fields, cart, s.cfg.Policy, user, s.cfg.Token)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	orderID, err := s.client.PlaceOrder(ctx, payload)
	if err != nil {
		var submitErr *domain.SubmitError
		if !errors.As(err, &submitErr) {
			submitErr = &domain.SubmitError{Kind: domain.SubmitNetworkError, Err: err}
		}

		s.logger.Warn("place order",
			zap.String("ref", payload.Reference.String()),
			zap.Stringer("kind", submitErr.Kind),
			zap.Error(err),
		)

		return domain.OrderConfirmation{}, submitErr
	}

	s.logger.Info("order placed",
		zap.String("ref", payload.Reference.String()),
		zap.String("order_id", orderID),
		zap.Int("items", len(payload.Items)),
		zap.Stringer("grand_total", payload.Totals.GrandTotal),
		zap.Bool("anonymous", user.IsAnonymous()),
	)

	return domain.OrderConfirmation{
		Reference: payload.Reference,
		OrderID:   orderID,
		Totals:    payload.Totals,
	}, nil
}
