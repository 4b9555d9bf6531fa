package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

// RegistrationProcessor turns inbound enrollment events into PENDING payment
// records. No dedup is performed: redelivery of the same event creates a
// second PENDING payment for the same enrollment_id.
type RegistrationProcessor struct {
	log  *slog.Logger
	repo PaymentRepository
}

func NewRegistrationProcessor(log *slog.Logger, repo PaymentRepository) *RegistrationProcessor {
	return &RegistrationProcessor{log: log, repo: repo}
}

// Handle creates a PENDING payment for the event. A returned error means the
// message should be negatively acknowledged without requeue.
func (p *RegistrationProcessor) Handle(ctx context.Context, env domain.Envelope) error {
	reg, err := domain.DecodeRegistration(env)
	if err != nil {
		return err
	}

	created, err := p.repo.Create(ctx, reg.StudentID, reg.EnrollmentID, reg.Amount, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("create pending payment: %w", err)
	}

	p.log.Info("pending payment created from enrollment event",
		"payment_id", created.ID, "enrollment_id", reg.EnrollmentID, "student_id", reg.StudentID)
	return nil
}
