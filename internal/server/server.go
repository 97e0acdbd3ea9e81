package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/retrodesk/desktopd/internal/api/http"
	"github.com/retrodesk/desktopd/internal/api/middleware"
	"github.com/retrodesk/desktopd/internal/api/ws"
	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/apps"
	"github.com/retrodesk/desktopd/internal/domain/policy"
	"github.com/retrodesk/desktopd/internal/domain/session"
	"github.com/retrodesk/desktopd/internal/host"
	"github.com/retrodesk/desktopd/internal/infrastructure/config"
	"github.com/retrodesk/desktopd/internal/infrastructure/logging"
	"github.com/retrodesk/desktopd/internal/infrastructure/monitoring"
	"github.com/retrodesk/desktopd/internal/runtime"
)

// Server wires the desktop runtime behind the HTTP and WebSocket surface.
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	router   *gin.Engine
	runtime  *runtime.Runtime
	registry *apps.Registry
	sessions *session.Manager
}

// NewServer builds a fully wired server from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	registry, err := apps.NewBuiltinRegistry()
	if err != nil {
		return nil, fmt.Errorf("seed builtin apps: %w", err)
	}
	if cfg.Desktop.ManifestDir != "" {
		loaded, err := apps.LoadManifestDir(registry, cfg.Desktop.ManifestDir, log.Logger)
		if err != nil {
			log.Warn("manifest scan failed", zap.String("dir", cfg.Desktop.ManifestDir), zap.Error(err))
		} else if loaded > 0 {
			log.Info("loaded app manifests", zap.Int("count", loaded))
		}
	}

	var store host.StateStore
	if cfg.Desktop.DataDir != "" {
		fileStore, err := host.NewFileStore(cfg.Desktop.DataDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	} else {
		store = host.NewMemoryStore()
		log.Info("no data dir configured, state is in-memory only")
	}

	metrics, registryProm := monitoring.NewMetrics()
	reducer := desktop.NewReducer(registry, policy.NewGate(registry))
	rt := runtime.New(reducer, runtime.Services{Store: store}, log, metrics)
	sessions := session.NewManager(store)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(rt, registry, sessions, log)
	wsHandler := ws.NewHandler(rt, log, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registryProm, promhttp.HandlerOpts{})))

	router.GET("/desktop/state", handlers.State)
	router.POST("/desktop/actions", handlers.DispatchAction)
	router.GET("/desktop/windows/:id/inbox", handlers.WindowInbox)

	router.GET("/apps", handlers.ListApps)
	router.GET("/apps/search", handlers.SearchApps)

	router.GET("/wallpapers", handlers.WallpaperLibrary)

	router.POST("/sessions/save", handlers.SaveSession)
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.POST("/sessions/:id/restore", handlers.RestoreSession)
	router.DELETE("/sessions/:id", handlers.DeleteSession)

	router.GET("/policy", handlers.GetPolicy)
	router.PUT("/policy", handlers.PutPolicy)
	router.GET("/config/:namespace/:key", handlers.GetConfigValue)

	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		cfg:      cfg,
		log:      log,
		router:   router,
		runtime:  rt,
		registry: registry,
		sessions: sessions,
	}, nil
}

// Runtime exposes the desktop runtime, mainly for tests.
func (s *Server) Runtime() *runtime.Runtime { return s.runtime }

// Router exposes the HTTP router, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run boots the runtime and serves HTTP until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.runtime.Boot(runCtx, s.cfg.Desktop.RestoreOnBoot); err != nil {
		return fmt.Errorf("boot runtime: %w", err)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.runtime.Run(runCtx)
	}()

	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("desktopd listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		<-loopDone
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("http shutdown incomplete", zap.Error(err))
	}

	cancel()
	<-loopDone
	s.log.Info("desktopd stopped")
	return nil
}
