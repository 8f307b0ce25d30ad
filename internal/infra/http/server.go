package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	// Metrics отдавать /metrics.
	Metrics bool
	// Health ошибка последнего опроса API; nil значит всё в порядке.
	Health func() error
	// Status JSON последней сводки, /status.
	Status http.Handler
}

type Server struct {
	srv *http.Server
}

func New(addr string, opt Options) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Handler(opt),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func Handler(opt Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if opt.Health != nil {
			if err := opt.Health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if opt.Status != nil {
		mux.Handle("/status", opt.Status)
	}
	if opt.Metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

// Start блокирует до Shutdown; штатная остановка не ошибка.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
