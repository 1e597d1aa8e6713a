package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/google/uuid"
)

type Service struct {
	repo      PaymentRepo
	processor Processor
	timeout   time.Duration
	metrics   *metrics.ShopMetrics
	log       *slog.Logger
}

func NewService(repo PaymentRepo, processor Processor, timeout time.Duration, m *metrics.ShopMetrics, log *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:      repo,
		processor: processor,
		timeout:   timeout,
		metrics:   m,
		log:       log,
	}
}

// CreatePayment charges a PENDING order owned by userID. The payment row is
// written as PENDING first, the processor is called with no transaction open,
// and the outcome is recorded in a second transaction: COMPLETED moves the
// order to PAID, FAILED leaves it PENDING and returns ErrPaymentFailed.
func (s *Service) CreatePayment(ctx context.Context, userID, orderID, method string) (domain.Payment, error) {
	method, err := domain.NormalizeMethod(method)
	if err != nil {
		return domain.Payment{}, err
	}
	if strings.TrimSpace(orderID) == "" {
		return domain.Payment{}, orderdomain.ErrInvalidInput
	}

	pending, err := s.open(ctx, userID, orderID, method)
	if err != nil {
		return domain.Payment{}, err
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	res, submitErr := s.processor.Submit(submitCtx, Charge{
		PaymentID: pending.ID,
		OrderID:   pending.OrderID,
		Method:    pending.Method,
		Amount:    pending.Amount,
	})
	cancel()

	if submitErr != nil {
		res = Result{Approved: false, Reason: submitErr.Error()}
		s.log.WarnContext(ctx, "payment processor error",
			slog.String("order_id", orderID),
			slog.String("payment_id", pending.ID),
			slog.Any("err", submitErr),
		)
	}

	// The outcome is recorded even if the caller went away meanwhile. A row
	// left PENDING by two failed writes is taken over once abandoned.
	settleCtx := context.WithoutCancel(ctx)
	final, err := s.settle(settleCtx, pending, res)
	if err != nil {
		s.log.WarnContext(ctx, "recording payment outcome failed, retrying",
			slog.String("order_id", orderID),
			slog.String("payment_id", pending.ID),
			slog.Any("err", err),
		)
		if final, err = s.settle(settleCtx, pending, res); err != nil {
			s.log.ErrorContext(ctx, "payment outcome not recorded",
				slog.String("order_id", orderID),
				slog.String("payment_id", pending.ID),
				slog.Bool("approved", res.Approved),
				slog.Any("err", err),
			)
			return domain.Payment{}, domain.ErrOutcomeNotRecorded.Wrap(err)
		}
	}

	s.metrics.Payment(string(final.Status))
	if final.Status != domain.StatusCompleted {
		failed := domain.ErrPaymentFailed.With(final.FailureReason)
		if submitErr != nil {
			return final, failed.Wrap(submitErr)
		}
		return final, failed
	}

	s.metrics.Transition(string(orderdomain.StatusPaid))
	s.log.InfoContext(ctx, "payment completed",
		slog.String("order_id", orderID),
		slog.String("payment_id", final.ID),
		slog.String("amount", final.Amount.String()),
	)
	return final, nil
}

func (s *Service) open(ctx context.Context, userID, orderID, method string) (domain.Payment, error) {
	var pending domain.Payment
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return orderdomain.ErrOrderNotFound
		}
		if err := orderdomain.Transition(o.Status, orderdomain.StatusPaid); err != nil {
			return err
		}

		existing, found, err := tx.PaymentForOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if found && existing.Active() && !s.abandoned(existing) {
			return domain.ErrPaymentAlreadyExists
		}

		p := domain.Payment{
			ID:      uuid.NewString(),
			OrderID: o.ID,
			Method:  method,
			Amount:  o.Total(),
			Status:  domain.StatusPending,
		}
		if found {
			// a failed attempt is retried on the same row
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
		}

		pending, err = tx.SavePayment(ctx, p)
		if err != nil {
			return err
		}
		return tx.Enqueue(ctx, events.New(events.PaymentCreated, o.ID, map[string]any{
			"payment_id": pending.ID,
			"method":     pending.Method,
			"amount":     pending.Amount.Amount,
			"currency":   pending.Amount.Currency,
		}))
	})
	return pending, err
}

// abandoned reports whether a PENDING payment has outlived any processor call
// that could still settle it. Such a row is taken over by the next attempt,
// which resubmits under the same payment id.
func (s *Service) abandoned(p domain.Payment) bool {
	return p.Status == domain.StatusPending && time.Since(p.UpdatedAt) > 2*s.timeout
}

func (s *Service) settle(ctx context.Context, pending domain.Payment, res Result) (domain.Payment, error) {
	var final domain.Payment
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, pending.OrderID)
		if err != nil {
			return err
		}
		current, found, err := tx.PaymentForOrder(ctx, pending.OrderID)
		if err != nil {
			return err
		}
		if !found || current.ID != pending.ID || current.Status != domain.StatusPending {
			return fmt.Errorf("payment %s changed while awaiting the processor", pending.ID)
		}

		if !res.Approved {
			current.Status = domain.StatusFailed
			current.FailureReason = res.Reason
			if current.FailureReason == "" {
				current.FailureReason = "declined"
			}
			if final, err = tx.SavePayment(ctx, current); err != nil {
				return err
			}
			return tx.Enqueue(ctx, events.New(events.PaymentFailed, o.ID, map[string]any{
				"payment_id": current.ID,
				"reason":     current.FailureReason,
			}))
		}

		if err := orderdomain.Transition(o.Status, orderdomain.StatusPaid); err != nil {
			return err
		}
		current.Status = domain.StatusCompleted
		current.Reference = res.Reference
		current.FailureReason = ""
		if final, err = tx.SavePayment(ctx, current); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, o.ID, orderdomain.StatusPaid); err != nil {
			return err
		}
		if err := tx.Enqueue(ctx, events.New(events.PaymentCaptured, o.ID, map[string]any{
			"payment_id": current.ID,
			"reference":  current.Reference,
		})); err != nil {
			return err
		}
		return tx.Enqueue(ctx, events.New(events.OrderPaid, o.ID, nil))
	})
	return final, err
}

func (s *Service) GetForOrder(ctx context.Context, orderID string) (domain.Payment, error) {
	return s.repo.GetByOrder(ctx, orderID)
}
