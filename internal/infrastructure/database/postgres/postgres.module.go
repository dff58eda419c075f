package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

func NewPostgresClient(config *DatabaseConfig) (*Client, error) {
	return NewClient(config)
}

func NewTxManager(client *Client) *TransactionManager {
	return NewTransactionManager(client)
}

// Module provides the pgx pool backing the patient aggregate store and the
// audit log, verified reachable and healthy before the core starts serving.
var Module = fx.Options(
	fx.Provide(NewPostgresClient),
	fx.Provide(NewTxManager),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.Ping(timeoutCtx); err != nil {
				return fmt.Errorf("postgres unreachable: %w", err)
			}

			if err := client.HealthCheck(timeoutCtx); err != nil {
				return fmt.Errorf("postgres health check failed: %w", err)
			}

			fmt.Printf("[PATIENT-STORE] connected\n")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
}
