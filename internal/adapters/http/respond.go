package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
)

const (
	msgSuccess   = "Success"
	msgCompleted = "Operation completed"

	maxBodyBytes = 1 << 20
)

var errMalformedRequest = errors.New("httpapi: malformed request")

func writeResponse[T any](w http.ResponseWriter, r *http.Request, resp apiresponse.APIResponse[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errMalformedRequest) {
		writeResponse(w, r, apiresponse.Error(http.StatusBadRequest, err.Error(), validation.FieldError{
			Field:   "Argument",
			Message: err.Error(),
		}))
		return
	}

	resp := apiresponse.FromError(err)
	logger := zerolog.Ctx(r.Context())
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("request rejected")
	}
	writeResponse(w, r, resp)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", errMalformedRequest)
		}
		return fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	return nil
}

type pageQuery struct {
	size  int
	token string
}

func parsePage(r *http.Request) (pageQuery, error) {
	q := r.URL.Query()
	page := pageQuery{token: q.Get("pageToken")}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return pageQuery{}, fmt.Errorf("%w: pageSize must be an integer", errMalformedRequest)
		}
		page.size = n
	}
	return page, nil
}
