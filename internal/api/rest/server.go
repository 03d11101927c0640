package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecosort/internal/container"
	"ecosort/internal/logger"
	"ecosort/internal/metrics"
)

// Options параметры HTTP-сервера
type Options struct {
	Addr        string
	CORSOrigins []string
	Model       string
}

// Server JSON API для браузерного клиента.
type Server struct {
	app        *container.Container
	opts       Options
	log        *logger.Logger
	router     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
}

// NewServer создаёт сервер и регистрирует маршруты.
func NewServer(app *container.Container, opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(log))
	router.Use(metrics.HTTPMetrics())
	router.Use(corsMiddleware(opts.CORSOrigins))

	s := &Server{
		app:       app,
		opts:      opts,
		log:       log.With("component", "http"),
		router:    router,
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
	}
	s.setupRoutes()
	return s
}

// Handler возвращает http.Handler с маршрутами (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start запускает сервер и блокируется до его остановки.
// После Stop возвращает nil сразу, даже если ещё не был запущен.
func (s *Server) Start() error {
	s.log.Info("starting http server", "address", s.opts.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/quota", s.handleQuota)

		api.POST("/classify", s.handleClassify)
		api.POST("/detect", s.handleDetect)

		frames := api.Group("/frames")
		{
			frames.POST("", s.handleFrame)
			frames.GET("/latest", s.handleLatestFrame)
		}

		detection := api.Group("/detection")
		{
			detection.GET("/state", s.handleDetectionState)
			detection.PUT("/interval", s.handleSetInterval)
		}

		api.GET("/sessions/:id/history", s.handleHistory)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

func ginLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", sessionHeader},
		ExposeHeaders: []string{sessionHeader},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
