package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/questbycycle/backend/config"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/logger"
	"github.com/questbycycle/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

type echoResponse struct {
	Name   string `json:"name"`
	Limit  int    `json:"limit"`
	UserID string `json:"user_id"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	return &echoResponse{Name: req.Name, Limit: req.Limit, UserID: xcontext.RequestUserID(ctx)}, nil
}

func newTestRouter() *Router {
	return New(nil, config.Default(), logger.NewLogger(logger.SILENCE))
}

func serve(t *testing.T, r *Router, req *http.Request) (int, map[string]any) {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func Test_GET(t *testing.T) {
	r := newTestRouter()
	GET(r, "/echo", echo)

	status, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=ride&limit=3", nil))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(0), body["code"])
	require.Equal(t, map[string]any{"name": "ride", "limit": float64(3), "user_id": ""}, body["data"])
}

func Test_POST(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"ride","limit":5}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := serve(t, r, req)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ride", body["data"].(map[string]any)["name"])

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{invalid`))
	status, body = serve(t, r, req)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, float64(errorx.BadRequest), body["code"])
}

func Test_Middleware(t *testing.T) {
	r := newTestRouter()

	var closed []string
	r.AddCloser(func(ctx context.Context) { closed = append(closed, xcontext.HTTPRequest(ctx).URL.Path) })
	r.Before(func(ctx context.Context) (context.Context, error) {
		return xcontext.WithRequestUserID(ctx, "user1"), nil
	})

	branch := r.Branch()
	branch.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	})

	GET(r, "/public", echo)
	GET(branch, "/private", echo)

	status, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/public", nil))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "user1", body["data"].(map[string]any)["user_id"])

	status, body = serve(t, r, httptest.NewRequest(http.MethodGet, "/private", nil))
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Permission denied", body["error"])

	require.Equal(t, []string{"/public", "/private"}, closed)
}

func Test_ErrorResponse(t *testing.T) {
	retryAt := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantRetry  bool
	}{
		{
			name:       "rate limited",
			err:        errorx.RateLimited(retryAt, "Quest is not available until %s", retryAt),
			wantStatus: http.StatusTooManyRequests,
			wantRetry:  true,
		},
		{
			name:       "not found",
			err:        errorx.New(errorx.NotFound, "Not found quest"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter()
			GET(r, "/fail", func(context.Context, *echoRequest) (*echoResponse, error) {
				return nil, tt.err
			})

			status, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/fail", nil))
			require.Equal(t, tt.wantStatus, status)
			require.Nil(t, body["data"])

			if tt.wantRetry {
				require.Equal(t, retryAt.Format(time.RFC3339), body["retry_at"])
			} else {
				require.NotContains(t, body, "retry_at")
			}
		})
	}
}
