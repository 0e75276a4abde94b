package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/briefer"
	"github.com/helixml/briefer/infrastructure/api/middleware"
	"github.com/helixml/briefer/infrastructure/api/v1/dto"
)

// TranscriptsRouter handles transcript API endpoints.
type TranscriptsRouter struct {
	client *briefer.Client
	logger *slog.Logger
}

// NewTranscriptsRouter creates a new TranscriptsRouter.
func NewTranscriptsRouter(client *briefer.Client) *TranscriptsRouter {
	return &TranscriptsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Register adds the transcript routes to r. The worker route only accepts
// callers presenting the queue callback secret.
func (t *TranscriptsRouter) Register(r chi.Router) {
	r.Post("/transcript", t.Create)
	r.Get("/transcripts", t.List)
	r.Delete("/transcript/{id}", t.Delete)
	r.With(middleware.CallbackSecret(t.client.CallbackSecret())).
		Post("/process-transcript", t.Process)
}

// Create handles POST /api/transcript.
//
//	@Summary		Summarise a transcript
//	@Description	Summarise inline, or hand the transcript to the push queue when async processing is enabled
//	@Tags			transcripts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.TranscriptRequest	true	"Transcript"
//	@Success		200		{object}	dto.TranscriptResponse
//	@Success		202		{object}	dto.QueuedResponse
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		500		{object}	jsonapi.Document
//	@Failure		502		{object}	jsonapi.Document
//	@Router			/transcript [post]
func (t *TranscriptsRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.TranscriptRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}

	sub, err := body.Submission()
	if err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}

	result, err := t.client.Transcripts.Submit(req.Context(), sub)
	if err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}

	if result.Queued != nil {
		middleware.WriteJSON(w, http.StatusAccepted, queuedResponse(*result.Queued))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewTranscriptResponse(result.Record))
}

// Process handles POST /api/process-transcript, the push-queue callback.
//
//	@Summary		Process a queued transcript
//	@Tags			transcripts
//	@Accept			json
//	@Produce		json
//	@Param			X-Callback-Secret	header		string					true	"Queue callback secret"
//	@Param			body				body		dto.TranscriptRequest	true	"Transcript"
//	@Success		200					{object}	dto.TranscriptResponse
//	@Failure		400					{object}	jsonapi.Document
//	@Failure		401					{object}	jsonapi.Document
//	@Failure		500					{object}	jsonapi.Document
//	@Router			/process-transcript [post]
func (t *TranscriptsRouter) Process(w http.ResponseWriter, req *http.Request) {
	var body dto.TranscriptRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}

	sub, err := body.Submission()
	if err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}

	record, err := t.client.Transcripts.Process(req.Context(), sub)
	if err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewTranscriptResponse(record))
}

// List handles GET /api/transcripts.
//
//	@Summary		List transcripts
//	@Tags			transcripts
//	@Produce		json
//	@Success		200	{object}	dto.TranscriptListResponse
//	@Failure		500	{object}	jsonapi.Document
//	@Router			/transcripts [get]
func (t *TranscriptsRouter) List(w http.ResponseWriter, req *http.Request) {
	records, err := t.client.Transcripts.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewTranscriptListResponse(records))
}

// Delete handles DELETE /api/transcript/{id}.
//
//	@Summary		Delete transcript
//	@Tags			transcripts
//	@Produce		json
//	@Param			id	path		int	true	"Transcript ID"
//	@Success		200	{object}	dto.MessageResponse
//	@Failure		404	{object}	jsonapi.Document
//	@Failure		500	{object}	jsonapi.Document
//	@Router			/transcript/{id} [delete]
func (t *TranscriptsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}

	if err := t.client.Transcripts.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, t.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Transcript deleted successfully"})
}
