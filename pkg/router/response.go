package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type response struct {
	Code    int64      `json:"code"`
	Error   string     `json:"error,omitempty"`
	RetryAt *time.Time `json:"retry_at,omitempty"`
	Data    any        `json:"data,omitempty"`
}

var statusCodes = map[errorx.Code]int{
	errorx.BadRequest:       http.StatusBadRequest,
	errorx.PermissionDenied: http.StatusForbidden,
	errorx.NotFound:         http.StatusNotFound,
	errorx.Unauthenticated:  http.StatusUnauthorized,
	errorx.AlreadyExists:    http.StatusConflict,
	errorx.Unavailable:      http.StatusConflict,
	errorx.NotImplemented:   http.StatusNotImplemented,
	errorx.TooManyRequests:  http.StatusTooManyRequests,
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) (int, response) {
	var errx errorx.Error
	if errors.As(err, &errx) {
		resp := response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}

		if !errx.RetryAt.IsZero() {
			retryAt := errx.RetryAt
			resp.RetryAt = &retryAt
		}

		status, ok := statusCodes[errx.Code]
		if !ok {
			status = http.StatusInternalServerError
		}

		return status, resp
	}

	return http.StatusInternalServerError, response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func handleResponse(ctx context.Context, w http.ResponseWriter) {
	if err := xcontext.Error(ctx); err != nil {
		status, resp := newErrorResponse(err)
		if err := WriteJSON(w, status, resp); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, newResponse(xcontext.Response(ctx))); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}
