// Package server boots the application: configuration, database, cache,
// blob store, routes, and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/controllers"
	"github.com/dukaanlabs/dukaan/app/repositories"
	"github.com/dukaanlabs/dukaan/app/routes"
	"github.com/dukaanlabs/dukaan/app/services"
	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/database"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/metrics"
	"github.com/dukaanlabs/dukaan/pkg/middleware"
	"github.com/dukaanlabs/dukaan/pkg/reqid"
	"github.com/dukaanlabs/dukaan/pkg/router"
	"github.com/dukaanlabs/dukaan/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired application.
type App struct {
	DB     *gorm.DB
	Cache  *cache.Cache
	Disk   storage.Disk
	Router *router.Router
}

// Build loads configuration and wires every dependency. The cache prefers
// Redis and degrades to the in-process store when Redis is unreachable, so
// a dev box without Redis still boots.
func Build() (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	c := buildCache()

	disk, err := storage.FromConfig()
	if err != nil {
		return nil, fmt.Errorf("build storage: %w", err)
	}

	return &App{
		DB:     db,
		Cache:  c,
		Disk:   disk,
		Router: buildRouter(db, c, disk),
	}, nil
}

func buildCache() *cache.Cache {
	store, err := cache.NewRedisStore(config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unreachable, using in-process cache", "addr", config.RedisAddr(), "error", err)
		return cache.New(cache.NewMemoryStore())
	}
	return cache.New(store)
}

func buildRouter(db *gorm.DB, c *cache.Cache, disk storage.Disk) *router.Router {
	r := router.New()

	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)

	productService := services.NewProductService(repositories.NewProductRepository(db), c, disk)
	authService := services.NewAuthService(repositories.NewUserRepository(db), c)

	routes.RegisterAPI(r,
		controllers.NewProductController(productService),
		controllers.NewAuthController(authService),
		middleware.Auth(c),
	)

	r.HandleFunc("/metrics", metrics.Handler())

	if config.StorageDisk() == "local" {
		mountLocalStorage(r)
	}

	return r
}

// mountLocalStorage serves blobs from the local disk root so their public
// URLs resolve without a separate file server.
func mountLocalStorage(r *router.Router) {
	fs := http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot())))
	r.HandleFunc("/storage/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.URL.Path, "..") {
			http.NotFound(w, req)
			return
		}
		fs.ServeHTTP(w, req)
	})
}

// Run serves HTTP until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           a.Router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Start builds the application and runs it. Entry point for the serve
// command.
func Start() error {
	app, err := Build()
	if err != nil {
		return err
	}
	return app.Run()
}
