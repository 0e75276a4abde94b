package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/briefer"
	"github.com/helixml/briefer/infrastructure/api/middleware"
	"github.com/helixml/briefer/infrastructure/api/v1/dto"
)

// IcebreakersRouter handles icebreaker API endpoints.
type IcebreakersRouter struct {
	client *briefer.Client
	logger *slog.Logger
}

// NewIcebreakersRouter creates a new IcebreakersRouter.
func NewIcebreakersRouter(client *briefer.Client) *IcebreakersRouter {
	return &IcebreakersRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Register adds the icebreaker routes to r. The worker route only accepts
// callers presenting the queue callback secret.
func (i *IcebreakersRouter) Register(r chi.Router) {
	r.Post("/icebreaker", i.Create)
	r.Get("/all_icebreker", i.List)
	r.Delete("/icebreaker/{id}", i.Delete)
	r.With(middleware.CallbackSecret(i.client.CallbackSecret())).
		Post("/process-icebreaker", i.Process)
}

// Create handles POST /api/icebreaker.
//
//	@Summary		Write an icebreaker
//	@Description	Generate inline, or hand the profile to the push queue when async processing is enabled
//	@Tags			icebreakers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.IcebreakerRequest	true	"LinkedIn profile"
//	@Success		200		{object}	dto.IcebreakerResponse
//	@Success		202		{object}	dto.QueuedResponse
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		500		{object}	jsonapi.Document
//	@Failure		502		{object}	jsonapi.Document
//	@Router			/icebreaker [post]
func (i *IcebreakersRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.IcebreakerRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}

	sub, err := body.Submission()
	if err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}

	result, err := i.client.Icebreakers.Submit(req.Context(), sub)
	if err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}

	if result.Queued != nil {
		middleware.WriteJSON(w, http.StatusAccepted, queuedResponse(*result.Queued))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewIcebreakerResponse(result.Record))
}

// Process handles POST /api/process-icebreaker, the push-queue callback.
//
//	@Summary		Process a queued icebreaker
//	@Tags			icebreakers
//	@Accept			json
//	@Produce		json
//	@Param			X-Callback-Secret	header		string					true	"Queue callback secret"
//	@Param			body				body		dto.IcebreakerRequest	true	"LinkedIn profile"
//	@Success		200					{object}	dto.IcebreakerResponse
//	@Failure		400					{object}	jsonapi.Document
//	@Failure		401					{object}	jsonapi.Document
//	@Failure		500					{object}	jsonapi.Document
//	@Router			/process-icebreaker [post]
func (i *IcebreakersRouter) Process(w http.ResponseWriter, req *http.Request) {
	var body dto.IcebreakerRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}

	sub, err := body.Submission()
	if err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}

	record, err := i.client.Icebreakers.Process(req.Context(), sub)
	if err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewIcebreakerResponse(record))
}

// List handles GET /api/all_icebreker.
//
//	@Summary		List icebreakers
//	@Tags			icebreakers
//	@Produce		json
//	@Success		200	{object}	dto.IcebreakerListResponse
//	@Failure		500	{object}	jsonapi.Document
//	@Router			/all_icebreker [get]
func (i *IcebreakersRouter) List(w http.ResponseWriter, req *http.Request) {
	records, err := i.client.Icebreakers.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewIcebreakerListResponse(records))
}

// Delete handles DELETE /api/icebreaker/{id}.
//
//	@Summary		Delete icebreaker
//	@Tags			icebreakers
//	@Produce		json
//	@Param			id	path		int	true	"Icebreaker ID"
//	@Success		200	{object}	dto.MessageResponse
//	@Failure		404	{object}	jsonapi.Document
//	@Failure		500	{object}	jsonapi.Document
//	@Router			/icebreaker/{id} [delete]
func (i *IcebreakersRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}

	if err := i.client.Icebreakers.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, i.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Icebreaker deleted successfully"})
}
