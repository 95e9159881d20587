package handler

import (
	"net/http"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/middleware"
	"github.com/expenses-tracker/reports-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler serves the live report channel
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      middleware.TokenValidator
	reports        websocket.ReportAssembler
	location       *time.Location
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator middleware.TokenValidator, reports websocket.ReportAssembler, loc *time.Location, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		reports:        reports,
		location:       loc,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser clients send no Origin
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /ws/reports?token=...
// Browsers cannot set headers on the upgrade request, so the token comes
// from the query string.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return NewUnauthorizedError(c, "missing token")
	}

	session, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return NewUnauthorizedError(c, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written an error response
		log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, session.UserID, h.hub, nil)
	reportSession := websocket.NewReportSession(client, h.reports, session, h.location, renderReport)
	client.SetMessageHandler(reportSession.HandleMessage)
	h.hub.Register(client)

	log.Info().
		Str("user_id", session.UserID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	// all-time report until the client sends a filter. It is issued before
	// the read pump starts so a client frame always supersedes it.
	reportSession.Refresh(websocket.FilterRequest{})

	go client.WritePump()
	go client.ReadPump(reportSession.Close)

	return nil
}

func renderReport(report *domain.Report) interface{} {
	return ToReportResponse(report)
}
