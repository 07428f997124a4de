// Package server exposes the query planner and classifier over HTTP: a
// search endpoint, a classification endpoint, and a service banner, with a
// CORS allow-list for browser frontends. The artifacts are loaded once at
// startup; a missing artifact keeps the service up but answers 503 on the
// routes that need it.
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/classifier"
	"github.com/example/pubsearch/internal/index"
	"github.com/example/pubsearch/internal/metrics"
	"github.com/example/pubsearch/internal/search"
	"github.com/example/pubsearch/internal/validation"

	"github.com/gin-gonic/gin"
)

// Options configures a Server. Index and Classifier may each be nil, in
// which case the corresponding endpoint answers 503 until the process is
// restarted with the artifact in place.
type Options struct {
	Index          *index.Index
	Classifier     *classifier.Model
	AllowedOrigins []string
	Registry       *metrics.Registry
}

// Server holds the loaded model artifacts shared by all request handlers.
// Both are read-only after construction, so handlers run concurrently
// without locks.
type Server struct {
	planner    *search.Planner
	classifier *classifier.Model
	registry   *metrics.Registry
	origins    map[string]bool
}

// New builds a Server from opts.
func New(opts Options) *Server {
	s := &Server{
		classifier: opts.Classifier,
		registry:   opts.Registry,
		origins:    make(map[string]bool, len(opts.AllowedOrigins)),
	}
	if opts.Index != nil {
		s.planner = search.NewPlanner(opts.Index)
	}
	if s.registry == nil {
		s.registry = metrics.NewRegistry()
	}
	for _, origin := range opts.AllowedOrigins {
		s.origins[strings.TrimSuffix(origin, "/")] = true
	}
	return s
}

// Router assembles the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.corsMiddleware())

	router.GET("/", s.handleRoot)
	router.GET("/search", s.handleSearch)
	router.POST("/classify", s.handleClassify)
	return router
}

// errorResponse is the uniform error body for every non-200 answer.
type errorResponse struct {
	Detail string `json:"detail"`
}

// searchResponse echoes the query alongside its ranked results.
type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// classifyRequest is the POST /classify body.
type classifyRequest struct {
	Text string `json:"text"`
}

// classifyResponse names the winning category and the model's confidence
// in it.
type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Search and Classification API"})
}

// handleSearch serves GET /search?q=<text>. The query must survive
// validation (minimum 3 characters after whitespace normalization); phrase
// detection and field weighting happen inside the planner.
func (s *Server) handleSearch(c *gin.Context) {
	if s.planner == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Detail: "Search engine is not available."})
		return
	}

	cleaned, err := validation.ValidateSearchQuery(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	stop := s.registry.Timer("search_latency").Start()
	results, err := s.planner.Search(c.Request.Context(), cleaned, search.DefaultTopK)
	stop()
	if err != nil {
		writeSearchError(c, err)
		return
	}

	s.registry.Counter("searches_served").Inc()
	if results == nil {
		results = []search.Result{}
	}
	c.JSON(http.StatusOK, searchResponse{Query: cleaned, Results: results})
}

// handleClassify serves POST /classify with body {"text": "..."}.
func (s *Server) handleClassify(c *gin.Context) {
	if s.classifier == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Detail: "Classifier is not available."})
		return
	}

	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "request body must be JSON with a \"text\" field"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "text must not be empty"})
		return
	}

	stop := s.registry.Timer("classify_latency").Start()
	predictions, err := s.classifier.Predict([]string{req.Text})
	if err != nil {
		stop()
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "An error occurred during classification: " + err.Error()})
		return
	}
	probabilities, err := s.classifier.PredictProba([]string{req.Text})
	stop()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "An error occurred during classification: " + err.Error()})
		return
	}

	idx := predictions[0]
	s.registry.Counter("classifications_served").Inc()
	c.JSON(http.StatusOK, classifyResponse{
		Category:   s.classifier.Labels[idx],
		Confidence: probabilities[0][idx],
	})
}

// writeSearchError maps core error kinds to their HTTP status per the
// service's surfacing policy: invalid queries are client errors, a missing
// artifact is 503, everything else is internal.
func writeSearchError(c *gin.Context, err error) {
	var invalid *apperrors.InvalidQueryError
	var notReady *apperrors.NotReadyError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.As(err, &notReady):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Detail: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "An error occurred during search: " + err.Error()})
	}
}

// corsMiddleware reflects the request origin back when it is on the
// allow-list, permits credentials, and short-circuits preflight requests.
// Origins not on the list get no CORS headers at all, which browsers treat
// as a denial.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.origins[strings.TrimSuffix(origin, "/")] {
			header := c.Writer.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
			if c.Request.Method == http.MethodOptions {
				header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Content-Type")
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
		}
		c.Next()
	}
}
