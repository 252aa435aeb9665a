// ABOUTME: Tests for the fx-built comparison service used by the mcp command.
// ABOUTME: Starts and stops the app and checks ONNX runtime release is a no-op when unused.
package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/config"
	"github.com/2389-research/sectiondiff/internal/embeddings"
)

func TestNewServiceApp_StartStop(t *testing.T) {
	cfg := config.Default()

	var svc *compare.Service
	app, err := newServiceApp(cfg, zap.NewNop(), nil, &svc)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	assert.NotNil(t, svc)
	require.NoError(t, app.Stop(ctx))
}

func TestNewServiceApp_BadBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Backend = embeddings.BackendONNX

	var svc *compare.Service
	_, err := newServiceApp(cfg, zap.NewNop(), nil, &svc)
	assert.ErrorIs(t, err, embeddings.ErrModelUnavailable)
	assert.Nil(t, svc)
}

func TestReleaseRuntime(t *testing.T) {
	for _, backend := range []string{embeddings.BackendHTTP, embeddings.BackendONNX} {
		core, logs := observer.New(zap.WarnLevel)
		cfg := config.Default()
		cfg.Embedding.Backend = backend

		releaseRuntime(cfg, zap.New(core))
		assert.Zero(t, logs.Len(), "backend %s", backend)
	}
}
