package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

// fakeRepo is an in-memory PaymentRepository with the store's filter and
// ordering semantics.
type fakeRepo struct {
	mu       sync.Mutex
	nextID   int64
	payments map[int64]domain.Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: map[int64]domain.Payment{}}
}

func (r *fakeRepo) Create(_ context.Context, studentID string, enrollmentID int64, amount float64, status domain.Status) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	p := domain.Payment{
		ID:           r.nextID,
		StudentID:    studentID,
		EnrollmentID: enrollmentID,
		Amount:       amount,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.payments[p.ID] = p
	return p, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id int64, status domain.Status, transactionRef *string) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	p.Status = status
	if transactionRef != nil {
		ref := *transactionRef
		p.TransactionRef = &ref
	}
	p.UpdatedAt = time.Now().UTC()
	r.payments[id] = p
	return p, nil
}

func (r *fakeRepo) List(_ context.Context, status, studentID string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if status != "" && p.Status != domain.Status(strings.ToUpper(status)) {
			continue
		}
		if studentID != "" && p.StudentID != studentID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type published struct {
	key   string
	event domain.Envelope
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, event domain.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: routingKey, event: event})
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// syncTasks runs submitted work inline so tests observe outcomes
// deterministically.
type syncTasks struct{}

func (syncTasks) Submit(_ string, fn func(ctx context.Context)) {
	fn(context.Background())
}
