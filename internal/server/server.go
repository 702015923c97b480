// Package server exposes the leaderboard and character views over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"pvpleaderboard.com/viewer/internal/aggregate"
	"pvpleaderboard.com/viewer/internal/leaderboard"
	"pvpleaderboard.com/viewer/internal/logging"
)

const shutdownTimeout time.Duration = 5 * time.Second

// Aggregator : the view assembly the handlers depend on
type Aggregator interface {
	Leaderboard(ctx context.Context) (leaderboard.Standings, map[string]aggregate.SourceStatus)
	Character(ctx context.Context, name, realm string) (aggregate.CharacterView, error)
}

// Server : HTTP front for an Aggregator
type Server struct {
	views     Aggregator
	issueRepo string
	logger    *log.Logger
}

// New : server over views; issueRepo is the owner/name used for report links
func New(views Aggregator, issueRepo string, logger *log.Logger) *Server {
	return &Server{views: views, issueRepo: issueRepo, logger: logging.OrDefault(logger)}
}

// Router returns the API routes wrapped in request logging.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/leaderboard/{bracket}", s.getLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/characters/{realm}/{name}", s.getCharacter).Methods(http.MethodGet)
	api.HandleFunc("/report", s.getReport).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.fail(w, http.StatusNotFound, codeNotFound)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.logger.Printf("Listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	s.logger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
