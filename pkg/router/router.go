package router

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/questbycycle/backend/config"
	"github.com/questbycycle/backend/pkg/logger"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// HandlerFunc handles a decoded request and returns the response object which
// will be wrapped into the common response envelope.
type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A non-nil returned context replaces
// the current one, a non-nil error stops the chain.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response (or error) was determined.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *mux.Router

	db     *gorm.DB
	cfg    config.Configs
	logger logger.Logger
	client *http.Client

	befores []MiddlewareFunc
	afters  []CloserFunc
	closers *[]CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:     mux.NewRouter(),
		db:      db,
		cfg:     cfg,
		logger:  logger,
		client:  http.DefaultClient,
		closers: &[]CloserFunc{},
	}
}

// Branch creates a router sharing the routes and closers of r. Middlewares
// added to the branch don't affect r.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		db:      r.db,
		cfg:     r.cfg,
		logger:  r.logger,
		client:  r.client,
		befores: append([]MiddlewareFunc(nil), r.befores...),
		afters:  append([]CloserFunc(nil), r.afters...),
		closers: r.closers,
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(c CloserFunc) {
	r.afters = append(r.afters, c)
}

// AddCloser registers a closer which is called at the end of every request
// handled by r or any of its branches.
func (r *Router) AddCloser(c CloserFunc) {
	*r.closers = append(*r.closers, c)
}

func (r *Router) WithHTTPClient(client *http.Client) {
	r.client = client
}

// Handle mounts a raw http.Handler, e.g. the metrics endpoint.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) newContext(w http.ResponseWriter, req *http.Request) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	ctx = xcontext.WithDB(ctx, r.db)
	ctx = xcontext.WithHTTPClient(ctx, r.client)
	ctx = xcontext.WithHTTPRequest(ctx, req)
	return ctx
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, handler, parseQuery[Request])).Methods(http.MethodGet)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, handler, parseBody[Request])).Methods(http.MethodPost)
}
