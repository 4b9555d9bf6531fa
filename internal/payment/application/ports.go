package application

import (
	"context"

	"github.com/2024mt03579/ums-payment-service/internal/gateway"
	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, studentID string, enrollmentID int64, amount float64, status domain.Status) (domain.Payment, error)
	GetByID(ctx context.Context, id int64) (domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status, transactionRef *string) (domain.Payment, error)
	List(ctx context.Context, status, studentID string) ([]domain.Payment, error)
}

// EventPublisher is fire-and-forget: implementations log failures and never
// surface them, so a status change can never be rolled back by the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event domain.Envelope)
}

type PaymentGateway interface {
	Confirm(paymentID int64, amount float64) gateway.Result
}

// TaskRunner hands work off without blocking the caller; the caller never
// observes completion or errors.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context))
}
