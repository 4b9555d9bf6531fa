package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the payments schema if it does not exist yet. Run once at
// process startup before the consumer or HTTP server accept work.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS payments (
			id              BIGSERIAL PRIMARY KEY,
			student_id      TEXT NOT NULL,
			enrollment_id   BIGINT NOT NULL,
			amount          DOUBLE PRECISION NOT NULL,
			status          TEXT NOT NULL DEFAULT 'PENDING',
			transaction_ref TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_payments_student_id ON payments (student_id);
		CREATE INDEX IF NOT EXISTS idx_payments_enrollment_id ON payments (enrollment_id);
		CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments (created_at DESC);
	`)
	return err
}
