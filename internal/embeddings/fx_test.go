// ABOUTME: Tests for the fx wiring of the embedding provider.
// ABOUTME: Checks that one provider is shared across the graph and closed on stop.
package embeddings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/embeddings/embeddingstest"
)

func TestFXModuleClosesProviderOnStop(t *testing.T) {
	static := embeddingstest.NewStatic(map[string][]float32{"privacy": {1, 0}})

	var first, second embeddings.Provider
	app := fx.New(
		fx.NopLogger,
		fx.Supply(embeddings.Options{Backend: embeddings.BackendHTTP, BaseURL: "http://localhost:1/v1", Model: "m"}),
		fx.Supply(zap.NewNop()),
		embeddings.FXModule,
		fx.Decorate(func(embeddings.Provider) embeddings.Provider { return static }),
		fx.Populate(&first, &second),
	)
	require.NoError(t, app.Err())

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	assert.Same(t, static, first)
	assert.Same(t, first, second)
	assert.False(t, static.Closed(), "provider closed before stop")

	require.NoError(t, app.Stop(ctx))
	assert.True(t, static.Closed(), "provider not closed on stop")
}

func TestFXModuleBuildsHTTPProvider(t *testing.T) {
	var p embeddings.Provider
	app := fx.New(
		fx.NopLogger,
		fx.Supply(embeddings.Options{Backend: embeddings.BackendHTTP, BaseURL: "http://localhost:1/v1", Model: "m"}),
		fx.Supply(zap.NewNop()),
		embeddings.FXModule,
		fx.Populate(&p),
	)
	require.NoError(t, app.Err())

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	assert.IsType(t, &embeddings.HTTPProvider{}, p)
	assert.Equal(t, "m", p.ModelID())
	require.NoError(t, app.Stop(ctx))
}

func TestFXModuleRejectsBadOptions(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(embeddings.Options{Backend: "nope"}),
		fx.Supply(zap.NewNop()),
		embeddings.FXModule,
	)
	assert.Error(t, app.Err())
}
