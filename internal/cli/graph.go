package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/internal/presentation/graph"
	"github.com/aretw0/vigil/pkg/adapters/file"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/logsource"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	Path   string
	Params map[string]string
	// Log, when set, is checked first and the nodes it visited are highlighted.
	Log    string
	Source logsource.Config
}

// Graph writes the Mermaid flowchart of an automaton to w.
func Graph(ctx context.Context, opts GraphOptions, w io.Writer) error {
	def, err := file.New(opts.Path).Load(ctx)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if opts.Log != "" {
		overlay, err = trace(ctx, def, opts)
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(def, overlay))
	return err
}

// trace checks the log and records every node entered on the way.
func trace(ctx context.Context, def *domain.Definition, opts GraphOptions) (*graph.GraphOverlay, error) {
	src, err := logsource.Open(opts.Log, opts.Source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var mu sync.Mutex
	overlay := &graph.GraphOverlay{}
	seen := map[string]bool{}
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			mu.Lock()
			defer mu.Unlock()
			if !seen[e.NodeID] {
				seen[e.NodeID] = true
				overlay.VisitedNodes = append(overlay.VisitedNodes, e.NodeID)
			}
		},
	}

	a := vigil.New(def, opts.Params, vigil.WithLifecycleHooks(hooks))
	defer a.Close()
	if a.IsDefective() {
		return nil, a.Defect()
	}

	v, err := vigil.Check(ctx, a, src)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", opts.Log, err)
	}
	overlay.CurrentNode = v.FinalNode
	return overlay, nil
}
