package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/scheduler"
)

// statusRecord is the JSON shape of one reported task.
type statusRecord struct {
	Order      int        `json:"order"`
	TaskID     uint64     `json:"task_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
}

// statusResponse is the body served on /status.
type statusResponse struct {
	RunID   string            `json:"run_id,omitempty"`
	Summary scheduler.Summary `json:"summary"`
	Records []statusRecord    `json:"records"`
}

// healthHandler answers liveness probes.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the progress of the current run as JSON.
func (app *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Records: []statusRecord{}}
	if sched := app.Scheduler(); sched != nil {
		resp.RunID = sched.RunID()
		resp.Summary = sched.Summary()
		for _, rec := range sched.Records() {
			sr := statusRecord{
				Order:      rec.Order,
				TaskID:     rec.TaskID,
				Name:       rec.Name,
				Status:     rec.Status(),
				FinishedAt: rec.FinishedAt,
			}
			if rec.Err != nil {
				sr.Error = rec.Err.Error()
			}
			if !rec.StartedAt.IsZero() {
				started := rec.StartedAt
				sr.StartedAt = &started
			}
			resp.Records = append(resp.Records, sr)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ctxlog.FromContext(app.ctx).Error("Failed to encode status response.", "error", err)
	}
}

func (app *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/status", app.statusHandler)
	return mux
}

// healthCheckServer initializes and runs the health check HTTP server.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring health check server.")
	if app.config.HealthcheckPort <= 0 {
		logger.Warn("Health check server not started: disabled")
		return
	}

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (app *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Closing health check server...")

	if app.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(app.ctx, 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}

	logger.Debug("Health check server shut down gracefully.")
	return nil
}
