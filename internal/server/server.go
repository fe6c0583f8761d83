package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	mid "github.com/cozyai/kitchenette/backend/internal/server/middleware"
	"github.com/cozyai/kitchenette/backend/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Config controls the HTTP surface.
type Config struct {
	Port string
	// StaticDir holds the frontend build. Without it "/" describes the API.
	StaticDir string
	BodyLimit string
	// RateLimit is requests per second per client IP, 0 disables it.
	RateLimit float64
}

// New builds the echo instance with middleware and routes.
func New(app *mid.App, cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "2M"
	}

	e.Use(mid.RequestID())
	e.Use(mid.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(mid.RateLimit(cfg.RateLimit))
	e.Use(mid.AppContextMiddleware(app))

	RegisterRoutes(e, staticDir(cfg.StaticDir))

	return e
}

// staticDir returns dir when it exists, otherwise "".
func staticDir(dir string) string {
	if dir == "" {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Warn("No frontend build found, serving the API only", "dir", dir)
		return ""
	}
	logger.Info("Serving static files", "dir", dir)
	return dir
}

// Init serves the API until SIGINT or SIGTERM and then shuts down gracefully.
func Init(app *mid.App, cfg Config) {
	e := New(app, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		port := cfg.Port
		if port == "" {
			port = "3000"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
