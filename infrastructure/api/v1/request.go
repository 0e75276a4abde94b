// Package v1 implements the HTTP handlers for transcripts and icebreakers.
package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/briefer/application/service"
	"github.com/helixml/briefer/infrastructure/api/middleware"
	"github.com/helixml/briefer/infrastructure/api/v1/dto"
	"github.com/helixml/briefer/internal/database"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON body into dst, returning a 400 APIError on
// malformed input.
func decodeBody(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return middleware.NewAPIError(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return middleware.NewAPIError(http.StatusBadRequest, "invalid request body: "+err.Error(), err)
	}
	return nil
}

// pathID parses the {id} URL parameter. Anything that is not an integer
// cannot name a stored record.
func pathID(req *http.Request) (int64, error) {
	idStr := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusNotFound, "no record with id "+strconv.Quote(idStr), database.ErrNotFound)
	}
	return id, nil
}

func queuedResponse(q service.Queued) dto.QueuedResponse {
	return dto.QueuedResponse{
		Queued:           true,
		ProviderStatus:   q.ProviderStatus,
		ProviderResponse: q.ProviderResponse,
	}
}
