// ABOUTME: Embedding endpoint validation for the setup wizard.
// ABOUTME: Requests one test embedding and reports the vector dimension.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/2389-research/sectiondiff/internal/embeddings"
)

const probeText = "Privacy Policy"

// ValidateConnection embeds a probe string through the endpoint.
// The context allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, endpoint, model, apiKey string) (int, error) {
	p := embeddings.NewHTTPProvider(endpoint, apiKey, model, embeddings.WithTimeout(10*time.Second))
	defer p.Close()

	vecs, err := p.Encode(ctx, []string{probeText})
	if err != nil {
		return 0, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return 0, fmt.Errorf("%w: endpoint returned no vector", embeddings.ErrEmbeddingFailure)
	}
	return len(vecs[0]), nil
}
