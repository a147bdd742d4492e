// pkg/server/server.go
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bashkirian/haulstats/internal/aggregator"
	"github.com/bashkirian/haulstats/internal/config"
	"github.com/bashkirian/haulstats/internal/handler"
	"github.com/bashkirian/haulstats/internal/storage"
)

type Server struct {
	httpServer *http.Server
	store      storage.Storage
}

// NewStorage выбирает хранилище отчётов по конфигу
func NewStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case "", "memory":
		return storage.NewInMemoryStorage(), nil
	case "sqlite":
		return storage.NewSQLiteStorage(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func NewServer(cfg *config.Config) (*Server, error) {
	store, err := NewStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	loaderOpts, err := cfg.LoaderOptions()
	if err != nil {
		store.Close()
		return nil, err
	}

	agg := aggregator.New(store)
	h := handler.New(agg, loaderOpts, cfg.Charts.Bins, cfg.Charts.Colors)

	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	h.Routes(r)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Handler нужен тестам, чтобы не поднимать порт
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	log.Printf("Server starting on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
		log.Printf("%s %s - completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}
