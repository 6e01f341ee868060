package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/yt-rag-engine/pkg/config"
	"github.com/johnquangdev/yt-rag-engine/pkg/jwt"
)

// Router wires every HTTP handler to its route.
type Router struct {
	cfg               *config.Config
	jwtManager        *jwt.Manager
	submissionHandler *SubmissionHandler
	queryHandler      *QueryHandler
	asrWebhookHandler *ASRWebhookHandler
	statusHandler     *StatusHandler
}

// NewRouter creates a new router with all handlers.
func NewRouter(cfg *config.Config, jwtManager *jwt.Manager, submissionHandler *SubmissionHandler, queryHandler *QueryHandler, asrWebhookHandler *ASRWebhookHandler, statusHandler *StatusHandler) *Router {
	return &Router{
		cfg:               cfg,
		jwtManager:        jwtManager,
		submissionHandler: submissionHandler,
		queryHandler:      queryHandler,
		asrWebhookHandler: asrWebhookHandler,
		statusHandler:     statusHandler,
	}
}

// Setup configures all application routes.
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/status", rt.statusCheck)

	v1 := e.Group("/v1")
	v1.Use(IdentityMiddleware(rt.jwtManager))
	rt.setupSubmissionRoutes(v1)
	rt.setupQueryRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

func (rt *Router) setupSubmissionRoutes(g *echo.Group) {
	group := g.Group("/submissions")
	if rt.submissionHandler == nil {
		group.Any("", rt.notImplemented)
		return
	}
	group.POST("", rt.submissionHandler.Create)
	group.GET("", rt.submissionHandler.List)
	group.GET("/:id", rt.submissionHandler.Get)
	group.POST("/:id/cancel", rt.submissionHandler.Cancel)
}

func (rt *Router) setupQueryRoutes(g *echo.Group) {
	group := g.Group("/query")
	if rt.queryHandler == nil {
		group.Any("", rt.notImplemented)
		return
	}
	group.POST("", rt.queryHandler.Ask)
	group.POST("/feedback", rt.queryHandler.Feedback)
}

func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	group := g.Group("/webhooks")
	if rt.asrWebhookHandler == nil {
		group.Any("/asr", rt.notImplemented)
		return
	}
	group.POST("/asr", rt.asrWebhookHandler.Handle)
}

// notImplemented returns 501 Not Implemented, used when a handler wasn't
// wired at startup (e.g. missing configuration for an optional adapter).
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck reports {ok, collection_size}. When no status handler was
// wired (e.g. the vector store isn't configured), it reports ok with a
// collection size of 0 rather than failing the liveness probe outright.
func (rt *Router) healthCheck(c echo.Context) error {
	if rt.statusHandler == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"ok": true, "collection_size": 0})
	}
	return rt.statusHandler.Health(c)
}

// statusCheck reports pipeline depth, storage usage, and worker-pool state.
func (rt *Router) statusCheck(c echo.Context) error {
	if rt.statusHandler == nil {
		return rt.notImplemented(c)
	}
	return rt.statusHandler.Status(c)
}
