package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type parseFunc[Request any] func(req *http.Request) (*Request, error)

func wrapHandler[Request, Response any](
	router *Router,
	handler HandlerFunc[Request, Response],
	parse parseFunc[Request],
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := router.newContext(w, req)

		defer func() {
			handleResponse(ctx, w)
			for _, c := range router.afters {
				c(ctx)
			}
			for _, c := range *router.closers {
				c(ctx)
			}
		}()

		for _, m := range router.befores {
			newCtx, err := m(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				return
			}

			if newCtx != nil {
				ctx = newCtx
			}
		}

		request, err := parse(req)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			return
		}

		resp, err := handler(ctx, request)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
	})
}

// parseQuery decodes the url query and the path variables into a Request.
func parseQuery[Request any](req *http.Request) (*Request, error) {
	values := map[string]any{}
	for key, v := range req.URL.Query() {
		if len(v) == 1 {
			values[key] = v[0]
		} else {
			values[key] = v
		}
	}

	for key, v := range mux.Vars(req) {
		values[key] = v
	}

	request := new(Request)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           request,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(values); err != nil {
		return nil, err
	}

	return request, nil
}

// parseBody decodes a json body into a Request. Multipart requests are left
// to the handler, which reads them from the http request in the context.
func parseBody[Request any](req *http.Request) (*Request, error) {
	request := new(Request)
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		return request, nil
	}

	if err := json.NewDecoder(req.Body).Decode(request); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return request, nil
}
