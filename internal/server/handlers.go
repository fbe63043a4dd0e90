package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"hagetaka/internal/client"
	"hagetaka/internal/qrcode"
	"hagetaka/internal/store"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	st       store.Store
	hub      *Hub
	cfg      Config
	upgrader websocket.Upgrader
}

func NewHandlers(st store.Store, hub *Hub, cfg Config) *Handlers {
	return &Handlers{
		st:  st,
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if cfg.allowsAllOrigins() {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

type createRoomRequest struct {
	HostName string `json:"hostName"`
}

type createRoomResponse struct {
	Code string `json:"code"`
}

// HandleCreateRoom creates a lobby-phase room document with the caller as
// host and returns its code.
func (h *Handlers) HandleCreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := client.CreateRoom(c.Request().Context(), h.st, req.HostName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, createRoomResponse{Code: sess.RoomCode()})
}

// HandleGetRoom returns the current room document and its revision.
func (h *Handlers) HandleGetRoom(c echo.Context) error {
	snap, err := h.st.Get(c.Request().Context(), c.Param("code"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"code": snap.Code,
		"rev":  snap.Rev,
		"doc":  snap.Data,
	})
}

// HandleRoomQR returns a QR code PNG with the room's join link, for players
// sharing a table with the host.
func (h *Handlers) HandleRoomQR(c echo.Context) error {
	code := c.Param("code")
	if _, err := h.st.Get(c.Request().Context(), code); errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	} else if err != nil {
		return err
	}

	base := h.cfg.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("http://%s", c.Request().Host)
	}
	png, err := qrcode.JoinLink(base, code)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "QR generation failed")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// HandleWS upgrades the connection and attaches it to the hub.
func (h *Handlers) HandleWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return nil
	}

	cl := NewClient(h.hub, conn)
	h.hub.register <- cl

	go cl.WritePump()
	go cl.ReadPump()
	return nil
}
