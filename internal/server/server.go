// Package server assembles the service: it opens the store, wires the
// pipeline and its providers from configuration, and runs the HTTP API
// and the drop-folder watcher until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/soulsync-ai/soulsync/internal/api"
	"github.com/soulsync-ai/soulsync/internal/classifier"
	"github.com/soulsync-ai/soulsync/internal/config"
	"github.com/soulsync-ai/soulsync/internal/drift"
	"github.com/soulsync-ai/soulsync/internal/ingest"
	"github.com/soulsync-ai/soulsync/internal/logging"
	"github.com/soulsync-ai/soulsync/internal/media"
	"github.com/soulsync-ai/soulsync/internal/pipeline"
	"github.com/soulsync-ai/soulsync/internal/provider"
	"github.com/soulsync-ai/soulsync/internal/store"
)

// Server owns the long-lived pieces of the service.
type Server struct {
	cfg   *config.Config
	store *store.Store
	coord *pipeline.Coordinator
	http  *http.Server
	watch *ingest.Watcher
	log   zerolog.Logger
}

// New builds a Server from configuration. Optional capabilities are wired
// only when their configuration is present: the catalog needs client
// credentials, the synthesizer an API key, the classifier a URL, the
// drop-folder watcher a directory.
func New(cfg *config.Config) (*Server, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var curated media.CuratedSource
	if cfg.Media.CatalogClientID != "" && cfg.Media.CatalogClientSecret != "" {
		catalog, err := provider.NewCatalog(provider.CatalogConfig{
			BaseURL:      cfg.Media.CatalogBaseURL,
			TokenURL:     cfg.Media.CatalogTokenURL,
			ClientID:     cfg.Media.CatalogClientID,
			ClientSecret: cfg.Media.CatalogClientSecret,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("catalog provider: %w", err)
		}
		curated = catalog
	}

	var synth media.Synthesizer
	if cfg.Media.SynthAPIKey != "" {
		sy, err := provider.NewSynth(provider.SynthConfig{
			APIKey: cfg.Media.SynthAPIKey,
			Model:  cfg.Media.SynthModel,
			Voice:  cfg.Media.SynthVoice,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("synth provider: %w", err)
		}
		synth = sy
	}

	var orch *media.Orchestrator
	if curated != nil || synth != nil {
		orch = media.NewOrchestrator(curated, synth).
			WithTimeouts(cfg.Media.LookupTimeout, cfg.Media.SynthesisTimeout)
	}

	var clf classifier.Classifier
	if cfg.Classifier.URL != "" {
		clf = classifier.NewHTTPClient(cfg.Classifier.URL, cfg.Classifier.Timeout)
	}

	coord := pipeline.New(st, drift.New(cfg.Drift.Threshold), orch, clf)

	srv := &Server{
		cfg:   cfg,
		store: st,
		coord: coord,
		log:   logging.WithComponent("server"),
	}
	srv.http = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(coord, st, &cfg.Server).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.Ingest.WatchDir != "" && clf != nil {
		srv.watch = ingest.New(coord, cfg.Ingest.WatchDir, cfg.Ingest.Debounce)
	}
	return srv, nil
}

// Run serves until ctx is cancelled, then shuts the HTTP listener down
// gracefully and closes the store.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.watch != nil {
		g.Go(func() error {
			return s.watch.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return s.http.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Store exposes the underlying store for status reporting.
func (s *Server) Store() *store.Store {
	return s.store
}
