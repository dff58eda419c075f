package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"mpi-core/internal/app"
)

func main() {
	fx.New(
		app.AppModule,
		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Println("MPI core starting...")
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Println("MPI core stopping...")
					return nil
				},
			})
		}),
	).Run()
}
