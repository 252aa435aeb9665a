// ABOUTME: Fx wiring for the embedding provider.
// ABOUTME: Builds the provider from supplied Options and closes it on shutdown.
package embeddings

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FXModule provides a Provider built from Options and registers its lifecycle.
var FXModule = fx.Module(
	"embeddings",
	fx.Provide(NewProvider),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle closes the provider when the app stops.
func RegisterLifecycle(lc fx.Lifecycle, p Provider, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("embedding provider ready",
				zap.String("model", p.ModelID()),
				zap.Int("dimension", p.Dimension()))
			return nil
		},
		OnStop: func(context.Context) error {
			return p.Close()
		},
	})
}
