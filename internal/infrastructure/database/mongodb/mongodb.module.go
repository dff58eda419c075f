package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

func NewMongoClient(config *Config) (*Client, error) {
	return NewClient(config)
}

var Module = fx.Options(
	fx.Provide(NewMongoClient),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.Ping(timeoutCtx); err != nil {
				return fmt.Errorf("mongodb unreachable: %w", err)
			}

			if err := client.HealthCheck(timeoutCtx); err != nil {
				return fmt.Errorf("mongodb health check failed: %w", err)
			}

			fmt.Printf("[BLOCKING-INDEX] connected\n")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close(ctx)
		},
	})
}
