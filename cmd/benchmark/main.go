package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sovereign-embed/internal/app"
	"sovereign-embed/internal/embeddings"
)

const defaultOutput = "data/sovereign_benchmark_results.json"

// sampleTexts: 0 and 1 say the same thing, 2 is unrelated.
var sampleTexts = []string{
	"The ETH/USDT price is currently $2,450.12",
	"Ethereum is trading at approximately two thousand four hundred dollars.",
	"A completely unrelated sentence about coffee.",
	"The 0.05V standard is the constitutional backbone of Blackglass.",
}

const (
	statusReady       = "READY"
	statusRecalibrate = "RECALIBRATE"
)

type consistencyChecks struct {
	SimilarPair    float32 `json:"similar_pair"`
	DissimilarPair float32 `json:"dissimilar_pair"`
}

type report struct {
	Model             string            `json:"model"`
	Backend           string            `json:"backend"`
	Samples           int               `json:"samples"`
	AvgLatencyMS      float64           `json:"avg_latency_ms"`
	ConsistencyChecks consistencyChecks `json:"consistency_checks"`
	Status            string            `json:"status"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		output    string
		threshold float32
	)
	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Measure latency and semantic consistency of the embedding model",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := app.Build()
			if err != nil {
				return fmt.Errorf("failed to build dependencies: %w", err)
			}
			defer func() {
				if err := deps.Close(); err != nil {
					deps.Log.Warn("failed to release embedder", "err", err)
				}
			}()

			rep, err := runBenchmark(cmd.Context(), deps.Embedder, sampleTexts, threshold)
			if err != nil {
				deps.Log.Error("benchmark failed", "err", err)
				return err
			}
			rep.Backend = deps.Config.EmbedProvider

			if err := writeReport(output, rep); err != nil {
				return err
			}
			deps.Log.Info("benchmark complete",
				"avg_latency_ms", rep.AvgLatencyMS,
				"similar_pair", rep.ConsistencyChecks.SimilarPair,
				"dissimilar_pair", rep.ConsistencyChecks.DissimilarPair,
				"status", rep.Status,
				"output", output,
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", defaultOutput, "path of the JSON report")
	cmd.Flags().Float32Var(&threshold, "threshold", 0.6, "minimum similar-pair score for READY")
	return cmd
}

// runBenchmark embeds texts one at a time. texts[0] and texts[1] must be
// paraphrases and texts[2] unrelated to texts[0].
func runBenchmark(ctx context.Context, e embeddings.Embedder, texts []string, threshold float32) (report, error) {
	if len(texts) < 3 {
		return report{}, fmt.Errorf("need at least 3 sample texts, got %d", len(texts))
	}

	vecs := make([]embeddings.Vector, len(texts))
	var total time.Duration
	for i, text := range texts {
		start := time.Now()
		vec, err := embeddings.Embed(ctx, e, text)
		if err != nil {
			return report{}, fmt.Errorf("embed sample %d: %w", i, err)
		}
		total += time.Since(start)
		vecs[i] = vec
	}

	rep := report{
		Model:        embeddings.ModelID,
		Samples:      len(texts),
		AvgLatencyMS: float64(total.Microseconds()) / 1000 / float64(len(texts)),
		ConsistencyChecks: consistencyChecks{
			SimilarPair:    embeddings.CosineSimilarity(vecs[0], vecs[1]),
			DissimilarPair: embeddings.CosineSimilarity(vecs[0], vecs[2]),
		},
		Status: statusRecalibrate,
	}
	if rep.ConsistencyChecks.SimilarPair > threshold {
		rep.Status = statusReady
	}
	return rep, nil
}

func writeReport(path string, rep report) error {
	data, err := json.MarshalIndent(rep, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
