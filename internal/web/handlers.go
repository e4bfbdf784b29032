package web

import (
	"net/http"
	"strings"
	"time"

	"menuboard/internal/menu"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultTitle = "Our Menu"

// header holds the restaurant info fields the page shows. The info object
// is otherwise passed through untouched.
type header struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Services    []string `json:"services"`
}

type page struct {
	Title  string
	Header header
	View   menu.ViewModel
}

var templateFuncs = map[string]any{
	"join": strings.Join,
}

func newPage(vm menu.ViewModel) page {
	p := page{Title: defaultTitle, View: vm}
	if !vm.Info.IsZero() {
		// Fields of unexpected type just leave the header blank.
		_ = vm.Info.Decode(&p.Header)
	}
	if p.Header.Name != "" {
		p.Title = p.Header.Name
	}
	return p
}

// handleHome renders the current view model
func (s *Server) handleHome(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html.tmpl", newPage(s.loader.ViewModel()))
}

// handleView returns the current view model as JSON
func (s *Server) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, s.loader.ViewModel())
}

// handleRetry starts a new cycle if the machine is in the error phase.
// Form posts from the page are redirected back to it.
func (s *Server) handleRetry(c *gin.Context) {
	started := s.loader.Retry(c.Request.Context())

	if c.ContentType() == gin.MIMEPOSTForm {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if !started {
		c.JSON(http.StatusConflict, gin.H{
			"started": false,
			"status":  s.loader.ViewModel().Status,
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"started": true})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if s.status != nil {
		resp["metrics"] = s.status()
	}
	c.JSON(http.StatusOK, resp)
}

// requestLogger logs one line per request once the handler chain is done.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("remote_addr", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("http request")
	}
}
