package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"dataprep/internal/augment"
	"dataprep/internal/dispatch"
)

// Fixed plain-text replies of the submission endpoint.
const (
	msgTaskRejected = "Failed to load the task, please double check"
	msgInvalidInput = "Invalid input, please check the request"
)

// maxBatchBytes bounds a /data_prep body.
const maxBatchBytes = 1 << 20

type App struct {
	Dispatcher *dispatch.Dispatcher
	Registry   *augment.Registry
	Logger     zerolog.Logger
}

func NewApp(dispatcher *dispatch.Dispatcher, registry *augment.Registry, logger zerolog.Logger) *App {
	return &App{Dispatcher: dispatcher, Registry: registry, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) text(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
