package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultAddr is where the API listens when no address is configured.
const DefaultAddr = "127.0.0.1:8787"

// DefaultOrigins are the browser origins allowed by CORS out of the box:
// the local dev servers a UI is usually served from.
var DefaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:8080",
}

// Options configures the HTTP server.
type Options struct {
	AddrFile string   // where the bound address is written for discovery; empty skips it
	Origins  []string // CORS allow-list; nil uses DefaultOrigins
	Lang     string   // default display language for names ("en" or "hi")
}

// Server serves the JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	log      *zap.Logger
	opts     Options
	engine   *gin.Engine
	listener net.Listener
	httpSrv  *http.Server
	started  time.Time
	stopOnce sync.Once
}

// NewServer creates an HTTP server over queries. log may be nil.
func NewServer(queries socket.AppQueries, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Origins == nil {
		opts.Origins = DefaultOrigins
	}
	s := &Server{
		queries: queries,
		log:     log.Named("http"),
		opts:    opts,
		started: time.Now(),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins: s.opts.Origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept-Language"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/", s.handleIndex)

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/search", s.handleSearch)
		api.GET("/schemes", s.handleSchemes)
		api.GET("/schemes/:id", s.handleScheme)
		api.GET("/categories", s.handleCategories)
		api.GET("/states", s.handleStates)
		api.POST("/eligible", s.handleEligible)
		api.POST("/ask", s.handleAsk)
	}
	return r
}

// Listen binds addr (DefaultAddr when empty) and writes the bound address to
// the discovery file. Serve must be called to accept requests.
func (s *Server) Listen(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.started = time.Now()
	s.httpSrv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.opts.AddrFile != "" {
		if err := os.WriteFile(s.opts.AddrFile, []byte(s.Addr()), 0644); err != nil {
			s.log.Warn("write address file", zap.String("path", s.opts.AddrFile), zap.Error(err))
		}
	}
	s.log.Info("http server listening", zap.String("addr", s.Addr()))
	return nil
}

// Serve accepts requests until Stop. Returns nil after a clean shutdown.
func (s *Server) Serve() error {
	if s.httpSrv == nil {
		return errors.New("http server not listening")
	}
	if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpSrv.Shutdown(ctx); err != nil {
				s.log.Warn("http shutdown", zap.Error(err))
			}
		}
		if s.opts.AddrFile != "" {
			os.Remove(s.opts.AddrFile)
		}
	})
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the API.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// requestLogger logs one entry per request, leveled by status.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Debug("http request", fields...)
		}
	}
}
