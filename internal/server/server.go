package server

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hagetaka/internal/store"
)

// Server ties the hosted room store, the WebSocket hub and the HTTP surface
// together.
type Server struct {
	cfg    Config
	logger *slog.Logger
	st     store.Store
	hub    *Hub
	echo   *echo.Echo
}

// New assembles a server. A configured DB_PATH selects the durable SQLite
// store; otherwise rooms live in memory for the process lifetime.
func New(cfg Config) (*Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var st store.Store
	if cfg.DBPath != "" {
		sq, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		st = sq
		logger.Info("using sqlite room store", "path", cfg.DBPath)
	} else {
		st = store.NewMemory()
		logger.Info("using in-memory room store")
	}

	hub := NewHub(st, logger)
	handlers := NewHandlers(st, hub, cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/api/rooms", handlers.HandleCreateRoom)
	e.GET("/api/rooms/:code", handlers.HandleGetRoom)
	e.GET("/api/rooms/:code/qr", handlers.HandleRoomQR)
	e.GET("/ws", handlers.HandleWS)

	return &Server{cfg: cfg, logger: logger, st: st, hub: hub, echo: e}, nil
}

// Start runs the hub and serves HTTP until the listener fails.
func (s *Server) Start() error {
	go s.hub.Run()
	s.logger.Info("server starting", "port", s.cfg.Port)
	return s.echo.Start(":" + s.cfg.Port)
}

// Close stops the hub and releases store resources.
func (s *Server) Close() error {
	s.hub.Stop()
	if closer, ok := s.st.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
