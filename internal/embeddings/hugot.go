package embeddings

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// DefaultHugotRepo is the ONNX export of all-MiniLM-L6-v2 on the Hugging Face hub.
const DefaultHugotRepo = "KnightsAnalytics/all-MiniLM-L6-v2"

// HugotConfig configures a HugotEmbedder.
type HugotConfig struct {
	Repo      string
	AuthToken string
}

// HugotEmbedder runs a sentence-transformers feature-extraction pipeline
// in-process. Token vectors are mean pooled and the result is scaled to unit
// length by the pipeline.
type HugotEmbedder struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	dir      string
}

// NewHugotEmbedder downloads the model into a fresh temporary directory and
// builds the pipeline. Weights are never reused across processes.
func NewHugotEmbedder(cfg HugotConfig) (*HugotEmbedder, error) {
	if cfg.Repo == "" {
		cfg.Repo = DefaultHugotRepo
	}
	dir, err := os.MkdirTemp("", "sovereign-model-*")
	if err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}

	opts := hugot.NewDownloadOptions()
	opts.AuthToken = cfg.AuthToken
	modelPath, err := hugot.DownloadModel(cfg.Repo, dir, opts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("download %s: %w", cfg.Repo, err), os.RemoveAll(dir))
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("start session: %w", err), os.RemoveAll(dir))
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      ModelID,
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build pipeline: %w", err), session.Destroy(), os.RemoveAll(dir))
	}

	return &HugotEmbedder{
		session:  session,
		pipeline: pipeline,
		dir:      dir,
	}, nil
}

func (e *HugotEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	if e == nil || e.pipeline == nil {
		return nil, fmt.Errorf("nil hugot embedder")
	}
	out, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, err
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("hugot: no embedding returned")
	}
	return Vector(out.Embeddings[0]), nil
}

// Close destroys the session and deletes the downloaded weights.
func (e *HugotEmbedder) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.session != nil {
		errs = append(errs, e.session.Destroy())
	}
	if e.dir != "" {
		errs = append(errs, os.RemoveAll(e.dir))
	}
	return errors.Join(errs...)
}
