// Package web renders the menu view model as an HTML page, JSON and a
// WebSocket feed.
package web

import (
	"context"
	"embed"
	"html/template"

	"menuboard/internal/loader"
	"menuboard/internal/menu"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Loader is the part of the load machine the web surface drives.
type Loader interface {
	Retry(ctx context.Context) bool
	ViewModel() menu.ViewModel
	Subscribe() (<-chan loader.State, func())
}

// Server handles page, API and push requests
type Server struct {
	router *gin.Engine
	loader Loader
	log    zerolog.Logger
	status func() map[string]interface{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and connection logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithStatus adds the returned fields to the health response.
func WithStatus(fn func() map[string]interface{}) Option {
	return func(s *Server) { s.status = fn }
}

// NewServer creates a server bound to l.
func NewServer(l Loader, opts ...Option) *Server {
	s := &Server{
		loader: l,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery(), requestLogger(s.log))
	s.router.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"),
	))

	s.setupRoutes()
	return s
}

// setupRoutes configures the routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHome)
	s.router.GET("/ws", s.handleWebSocket)
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/retry", s.handleRetry)

	api := s.router.Group("/api")
	{
		api.GET("/view", s.handleView)
	}
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
