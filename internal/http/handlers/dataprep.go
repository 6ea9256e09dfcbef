package handlers

import (
	"errors"
	"io"
	"net/http"

	"dataprep/internal/dispatch"
	"dataprep/internal/domain"
	"dataprep/internal/middleware"
)

// DataPrep accepts a JSON array of tasks and starts them in the background.
// The reply only acknowledges the start; completion is not reported here.
func (a *App) DataPrep(w http.ResponseWriter, r *http.Request) {
	log := a.Logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		log.Error().Err(err).Msg("dataprep: read body failed")
		a.text(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	tasks, err := dispatch.ParseBatch(body)
	if err != nil {
		log.Error().Err(err).Msg("dataprep: failed to parse request")
		a.text(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	batch, err := a.Dispatcher.Submit(tasks)
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		a.text(w, http.StatusBadRequest, msgTaskRejected)
		return
	case err != nil:
		log.Error().Err(err).Msg("dataprep: submit failed")
		a.text(w, http.StatusInternalServerError, msgInvalidInput)
		return
	}

	log.Info().Str("batch", batch.ID).Int("tasks", batch.Tasks).Msg("dataprep: batch started")
	w.Header().Set("X-Batch-ID", batch.ID)
	a.text(w, http.StatusAccepted, batch.Status())
}

// Stages lists the registered stage references.
func (a *App) Stages(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Registry.Refs()})
}
