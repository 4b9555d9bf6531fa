package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

const paymentColumns = "id, student_id, enrollment_id, amount, status, transaction_ref, created_at, updated_at"

// Repository is the sole writer of payment status. Every mutation is a single
// statement committed before the caller proceeds to any side effect.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, studentID string, enrollmentID int64, amount float64, status domain.Status) (domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (student_id, enrollment_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+paymentColumns,
		studentID, enrollmentID, amount, status)
	return scanPayment(row)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

// UpdateStatus commits the new status atomically. A nil transactionRef leaves
// the stored reference untouched, so a ref set on the first SUCCESS survives
// later transitions.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status, transactionRef *string) (domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE payments
		SET status = $2, transaction_ref = COALESCE($3, transaction_ref), updated_at = now()
		WHERE id = $1
		RETURNING `+paymentColumns,
		id, status, transactionRef)
	return scanPayment(row)
}

// List returns payments newest-created first. The status filter is
// case-insensitive; the student filter is an exact match.
func (r *Repository) List(ctx context.Context, status, studentID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	var conds []string
	var args []any
	if status != "" {
		args = append(args, strings.ToUpper(status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if studentID != "" {
		args = append(args, studentID)
		conds = append(conds, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.StudentID, &p.EnrollmentID, &p.Amount, &p.Status, &p.TransactionRef, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}
