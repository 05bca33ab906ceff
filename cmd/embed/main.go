package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"sovereign-embed/internal/app"
	"sovereign-embed/internal/embeddings"
	"sovereign-embed/internal/httputil"
)

// missingTextMessage is returned verbatim for every request without a usable text.
const missingTextMessage = "Missing 'text' field"

type embedRequest struct {
	Text string `json:"text" validate:"required"`
}

type embedResponse struct {
	Embedding  embeddings.Vector `json:"embedding"`
	Model      string            `json:"model"`
	Dimensions int               `json:"dimensions"`
	LatencyMS  int64             `json:"latency_ms"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if err := run(deps); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests and closes the embedder.
func run(deps app.Deps) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: deps.Config.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("embed endpoint listening", "addr", addr, "model", embeddings.ModelID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.ShutdownTimeout)
		defer cancel()
		deps.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return errors.Join(g.Wait(), deps.Close())
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	r.HandleFunc("/", embedHandler(deps))
	return r
}

// parseRequest decodes the body into a typed request. Any error means the
// body did not yield a non-empty text.
func parseRequest(r *http.Request) (embedRequest, error) {
	var req embedRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return embedRequest{}, err
	}
	return req, nil
}

func embedHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := deps.Log.With("request_id", middleware.GetReqID(r.Context()))

		req, err := parseRequest(r)
		if err != nil {
			log.Warn("invalid request", "err", err)
			httputil.WriteError(w, http.StatusBadRequest, missingTextMessage)
			return
		}

		// A client disconnect does not abort a running embedding.
		vec, err := embeddings.Embed(context.WithoutCancel(r.Context()), deps.Embedder, req.Text)
		if err != nil {
			httputil.Fail(log, w, err.Error(), err, http.StatusInternalServerError)
			return
		}

		latency := time.Since(start).Milliseconds()
		log.Info("embedding generated", "duration_ms", latency, "length", len(vec))

		httputil.WriteJSON(w, http.StatusOK, embedResponse{
			Embedding:  vec,
			Model:      embeddings.ModelID,
			Dimensions: embeddings.Dimensions,
			LatencyMS:  latency,
		})
	}
}
