// Package runner executes components locally, standing in for the
// pipeline orchestrator: it assigns output artifact locations under a
// pipeline root and invokes components synchronously in-process.
package runner

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"

	"kfpComponents/src/component"
	"kfpComponents/src/config"
)

// LocalRunner runs components against a pipeline root (local directory,
// s3:// or gs:// URI). Each run is one-shot and blocking; runs share no
// mutable state.
type LocalRunner struct {
	pipelineRoot string
	store        storage.ExternalStorage
}

// New opens a runner over the configured pipeline root.
func New(cfg *config.Config) (*LocalRunner, error) {
	store, err := config.GetStore(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &LocalRunner{
		pipelineRoot: cfg.Common.Path,
		store:        store,
	}, nil
}

// Execution reports the outcome of one component run.
type Execution struct {
	RunID   string
	Outputs map[string]*component.Dataset
}

// Run assigns a location to each declared output artifact, binds the
// parameters and invokes the component. On success the output files
// exist at their assigned locations when Run returns.
func (r *LocalRunner) Run(ctx context.Context, c *component.Component, params map[string]any) (*Execution, error) {
	runID := uuid.NewString()

	outputs := make(map[string]*component.Dataset, len(c.Outputs))
	for _, spec := range c.Outputs {
		rel := path.Join(c.Name, runID, spec.Name)
		outputs[spec.Name] = component.NewDataset(r.store, spec.Name, rel, r.resolveURI(rel))
	}

	inv, err := c.Bind(params, outputs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := c.Execute(ctx, inv); err != nil {
		return nil, errors.Trace(err)
	}

	return &Execution{RunID: runID, Outputs: outputs}, nil
}

func (r *LocalRunner) resolveURI(rel string) string {
	root := strings.TrimRight(r.pipelineRoot, "/")
	if strings.Contains(root, "://") {
		return root + "/" + rel
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Close releases the underlying store.
func (r *LocalRunner) Close() {
	//nolint: errcheck
	r.store.Close()
}
