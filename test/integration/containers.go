package integration

import (
	"context"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

type Env struct {
	PG      *tcpostgres.PostgresContainer
	MQ      *tcrabbitmq.RabbitMQContainer
	PGURL   string
	AmqpURL string
}

// Setup starts throwaway Postgres and RabbitMQ containers for one test run.
func Setup(ctx context.Context) (*Env, error) {
	pgC, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("payment_db"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	mqC, err := tcrabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	amqpURL, err := mqC.AmqpURL(ctx)
	if err != nil {
		_ = mqC.Terminate(ctx)
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	return &Env{PG: pgC, MQ: mqC, PGURL: pgURL, AmqpURL: amqpURL}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	_ = e.MQ.Terminate(ctx)
	_ = e.PG.Terminate(ctx)
}
