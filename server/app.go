package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swanctl/config"
	"swanctl/internal/db"
	"swanctl/internal/dispatch"
	"swanctl/internal/health"
	"swanctl/internal/logs"
	"swanctl/internal/middleware"
	"swanctl/internal/models"
	"swanctl/internal/repo"
	"swanctl/internal/session"
	"swanctl/internal/swanapi"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		a.db = d
		if err := a.db.AutoMigrate(
			&models.Device{},
			&models.Session{},
			&models.PendingChange{},
			&models.Message{},
		); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
	}

	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db) // /healthz and /readyz
	} else {
		health.RegisterRoutes(a.Router) // /healthz only
	}

	// Stores: gorm-backed when a database is configured, in-memory
	// fallback otherwise.
	var (
		sessions session.Store
		devices  dispatch.DeviceStore
		pending  dispatch.PendingStore
		messages dispatch.MessageStore
	)
	if a.db != nil {
		sessions = repo.NewSessionStore(a.db)
		devices = repo.NewDeviceStore(a.db)
		pending = repo.NewPendingStore(a.db)
		messages = repo.NewMessageStore(a.db)
	} else {
		sessions = session.NewMemStore()
		devices = dispatch.NewMemDeviceStore()
		pending = dispatch.NewMemPendingStore()
		messages = dispatch.NewMemMessageStore()
	}

	manager := session.NewManager(sessions)
	dispatcher := dispatch.New(manager, devices, pending, messages, a.cfg.Swan.UploadServer)

	ctrl := swanapi.NewController(dispatcher, manager, devices, pending, messages)
	ctrl.RegisterRoutes(a.Router)

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
