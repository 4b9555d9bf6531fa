package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

// Service drives a payment through PENDING -> (SUCCESS|FAILED|REFUNDED) and
// pairs every committed transition with its outbound event. SUCCESS, FAILED
// and REFUNDED are terminal for automatic transitions only; manual approve
// and refund are deliberately unguarded and re-fire their event on every call.
type Service struct {
	log   *slog.Logger
	repo  PaymentRepository
	bus   EventPublisher
	gw    PaymentGateway
	tasks TaskRunner
}

func NewService(log *slog.Logger, repo PaymentRepository, bus EventPublisher, gw PaymentGateway, tasks TaskRunner) *Service {
	return &Service{log: log, repo: repo, bus: bus, gw: gw, tasks: tasks}
}

// Create persists a PENDING payment and schedules outcome processing in the
// background. The caller gets the PENDING record back immediately.
func (s *Service) Create(ctx context.Context, studentID string, enrollmentID int64, amount float64) (domain.Payment, error) {
	p, err := s.repo.Create(ctx, studentID, enrollmentID, amount, domain.StatusPending)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	id := p.ID
	s.tasks.Submit("process-outcome", func(ctx context.Context) {
		s.ProcessOutcome(ctx, id)
	})

	s.log.Info("payment created", "payment_id", p.ID, "student_id", p.StudentID, "enrollment_id", p.EnrollmentID)
	return p, nil
}

// ProcessOutcome asks the gateway for a verdict and commits it. It runs with
// no caller awaiting the result, so a missing payment is logged and dropped
// rather than surfaced.
func (s *Service) ProcessOutcome(ctx context.Context, id int64) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("outcome processing skipped", "payment_id", id, "err", err)
		return
	}

	res := s.gw.Confirm(p.ID, p.Amount)

	if res.Status == domain.StatusSuccess {
		updated, err := s.repo.UpdateStatus(ctx, id, domain.StatusSuccess, &res.TransactionRef)
		if err != nil {
			s.log.Error("status update failed", "payment_id", id, "status", domain.StatusSuccess, "err", err)
			return
		}
		s.bus.Publish(ctx, domain.KeyPaymentConfirmed, domain.NewPaymentEnvelope(domain.TypePaymentConfirmed, updated))
		return
	}

	updated, err := s.repo.UpdateStatus(ctx, id, domain.StatusFailed, nil)
	if err != nil {
		s.log.Error("status update failed", "payment_id", id, "status", domain.StatusFailed, "err", err)
		return
	}
	s.bus.Publish(ctx, domain.KeyPaymentFailed, domain.NewPaymentEnvelope(domain.TypePaymentFailed, updated))
}

// Approve forces a payment to SUCCESS with a manual transaction reference and
// publishes PaymentConfirmed. There is no precondition on the current status.
func (s *Service) Approve(ctx context.Context, id int64) (domain.Payment, error) {
	ref := fmt.Sprintf("tx-manual-%d-%d", id, time.Now().Unix())
	p, err := s.repo.UpdateStatus(ctx, id, domain.StatusSuccess, &ref)
	if err != nil {
		return domain.Payment{}, err
	}
	s.bus.Publish(ctx, domain.KeyPaymentConfirmed, domain.NewPaymentEnvelope(domain.TypePaymentConfirmed, p))
	s.log.Info("payment approved", "payment_id", id)
	return p, nil
}

// Refund marks a payment REFUNDED from any current status and publishes
// PaymentRefunded.
func (s *Service) Refund(ctx context.Context, id int64) (domain.Payment, error) {
	p, err := s.repo.UpdateStatus(ctx, id, domain.StatusRefunded, nil)
	if err != nil {
		return domain.Payment{}, err
	}
	s.bus.Publish(ctx, domain.KeyPaymentRefunded, domain.NewPaymentEnvelope(domain.TypePaymentRefunded, p))
	s.log.Info("payment refunded", "payment_id", id)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status, studentID string) ([]domain.Payment, error) {
	return s.repo.List(ctx, status, studentID)
}
