package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kv-base-hack/crypto-dashboard/render"
	"github.com/kv-base-hack/crypto-dashboard/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	shutdownTimeout = 5 * time.Second
	// passWait bounds how long a form submit waits for the pass it triggered.
	passWait = 15 * time.Second
)

// Refresher starts a new refresh pass out of schedule.
type Refresher interface {
	Trigger()
}

// Invalidator drops the memoised top coins.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Server to serve the dashboard.
type Server struct {
	s           *gin.Engine
	bindAddr    string
	log         *zap.SugaredLogger
	storage     *storage.Storage
	refresher   Refresher
	invalidator Invalidator
	refresh     time.Duration
	passWait    time.Duration
	upgrader    websocket.Upgrader
}

// NewServer returns a new server. refresh is the page auto reload interval.
func NewServer(log *zap.SugaredLogger, bindAddr string, storage *storage.Storage,
	refresher Refresher, invalidator Invalidator, refresh time.Duration) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	engine.Use(cors.New(config))

	engine.SetHTMLTemplate(template.Must(
		template.New("").Funcs(template.FuncMap{
			"inc":     func(i int) int { return i + 1 },
			"price":   render.FormatPrice,
			"grouped": render.FormatGrouped,
		}).ParseFS(templatesFS, "templates/*.html"),
	))

	s := &Server{
		s:           engine,
		log:         log.With("component", "server"),
		bindAddr:    bindAddr,
		storage:     storage,
		refresher:   refresher,
		invalidator: invalidator,
		refresh:     refresh,
		passWait:    passWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	s.register()

	return s
}

// Handler exposes the engine, used by tests.
func (s *Server) Handler() http.Handler {
	return s.s
}

// Run runs server until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.bindAddr,
		Handler:           s.s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("run in ", "s.bindAddr", s.bindAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("run server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Infow("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	}
}

func (s *Server) register() {
	s.s.GET("/", s.getDashboard)
	s.s.POST("/selection", s.postSelectionForm)
	s.s.GET("/chart", s.getChart)
	s.s.GET("/health", s.getHealth)
	s.s.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.s.Group("/v1")
	v1.GET("/page", s.getPage)
	v1.GET("/options", s.getOptions)
	v1.GET("/selection", s.getSelection)
	v1.POST("/selection", s.postSelection)
	v1.POST("/cache/invalidate", s.invalidateCache)
	v1.GET("/ws", s.streamPages)
}
