package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/services"
	"github.com/lioia/pagerank/pkg/utils"
	"github.com/pkg/errors"
)

// Request limits applied by NewApiServer
const (
	DefaultMaxPages   = 10000
	DefaultMaxSamples = 10000000
)

type ApiServer struct {
	Defaults   pagerank.Config // Estimator parameters used when a request omits them
	MaxPages   int             // Largest graph accepted by any endpoint
	MaxSamples int             // Largest random walk a rank request may ask for
	echo       *echo.Echo
}

type DistributionRequest struct {
	Graph   graph.Graph `json:"graph"`
	Page    string      `json:"page"`
	Damping float64     `json:"damping,omitempty"`
}

var renderContentTypes = map[string]string{
	"dot": "text/vnd.graphviz",
	"svg": "image/svg+xml",
	"png": "image/png",
	"jpg": "image/jpeg",
}

func NewApiServer(defaults pagerank.Config) *ApiServer {
	s := &ApiServer{
		Defaults:   defaults,
		MaxPages:   DefaultMaxPages,
		MaxSamples: max(DefaultMaxSamples, defaults.Samples),
		echo:       echo.New(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			utils.ServerLog("%s %s -> %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))

	s.echo.GET("/health", s.Health)
	s.echo.POST("/rank", s.Rank)
	s.echo.POST("/distribution", s.Distribution)
	s.echo.POST("/render", s.Render)
	return s
}

// Handler exposes the router (used by tests)
func (s *ApiServer) Handler() http.Handler {
	return s.echo
}

func (s *ApiServer) Start(address string) error {
	utils.ServerLog("Starting api server at %s", address)
	err := s.echo.Start(address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ApiServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *ApiServer) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Rank runs both estimators on the uploaded graph
func (s *ApiServer) Rank(c echo.Context) error {
	var job services.Job
	if err := c.Bind(&job); err != nil {
		return err
	}
	if job.Resource != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "resource is not accepted, upload the graph")
	}
	if err := s.checkSize(job.Graph); err != nil {
		return err
	}
	if job.Samples > s.MaxSamples {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("samples must not exceed %d", s.MaxSamples))
	}
	if job.Id == "" {
		job.Id = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	defaults := s.Defaults
	defaults.Logger = utils.ComputeLogger("api")
	result, err := services.Run(c.Request().Context(), job, defaults)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Distribution returns the transition model of a page
func (s *ApiServer) Distribution(c echo.Context) error {
	var req DistributionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.checkSize(req.Graph); err != nil {
		return err
	}
	damping := req.Damping
	if damping == 0 {
		damping = s.Defaults.DampingFactor
	}
	distribution, err := pagerank.Transition(req.Graph, req.Page, damping)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, distribution)
}

// Render draws the uploaded graph (optionally ranked) with graphviz.
// The format query parameter selects dot (default), svg, png or jpg.
func (s *ApiServer) Render(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "dot"
	}
	contentType, ok := renderContentTypes[format]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported format "+format)
	}
	var req struct {
		Graph graph.Graph    `json:"graph"`
		Ranks pagerank.Ranks `json:"ranks,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.checkSize(req.Graph); err != nil {
		return err
	}
	if err := req.Graph.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var buf bytes.Buffer
	if err := graph.Render(req.Graph, req.Ranks, format, &buf); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (s *ApiServer) checkSize(g graph.Graph) error {
	if s.MaxPages > 0 && len(g) > s.MaxPages {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("graph has %d pages, at most %d are accepted", len(g), s.MaxPages))
	}
	return nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, pagerank.ErrEmptyGraph),
		errors.Is(err, pagerank.ErrInvalidPage),
		errors.Is(err, pagerank.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, pagerank.ErrNotConverged):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return err
}
