package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/usecase"
)

type gameManager interface {
	ScoreCard() *usecase.ScoreCard
	Reset(ctx context.Context)
}

type Server struct {
	logger  *slog.Logger
	manager gameManager
}

func New(logger *slog.Logger, manager gameManager) *Server {
	return &Server{
		logger:  logger,
		manager: manager,
	}
}

func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("/scorecard", that.scoreCardHandler)
	mux.HandleFunc("/reset", that.resetHandler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// scoreCardHandler serves the per-round score matrix and running totals.
func (that *Server) scoreCardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(that.manager.ScoreCard()); err != nil {
		that.logger.Error("failed to encode score card", "error", err)
	}
}

// resetHandler discards all game state and reopens the table.
func (that *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	that.manager.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
