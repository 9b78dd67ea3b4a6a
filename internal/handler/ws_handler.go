package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	ws "github.com/stemsi/institute-console/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams collection invalidations to open pages.
type WSHandler struct {
	broker   ws.Broker
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(broker ws.Broker, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		broker:   broker,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Invalidations godoc
// WS /ws/invalidations
// Sends {"event":"invalidated","resource":...} after every successful mutation.
// Clients may send {"action":"ping"} to keep the connection alive.
func (h *WSHandler) Invalidations(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	events, unsubscribe := h.broker.Subscribe(ctx)
	defer unsubscribe()

	// The reader only forwards actions; all writes happen on this goroutine.
	actions := make(chan ws.Action, 4)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Debug().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case actions <- msg.Action:
			default:
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case action := <-actions:
			var werr error
			if action == ws.ActionPing {
				werr = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			} else {
				werr = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if werr != nil {
				return
			}
		case resource, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.InvalidatedEvent{Event: ws.EventInvalidated, Resource: resource}); err != nil {
				h.log.Debug().Err(err).Msg("Write invalidation failed")
				return
			}
		}
	}
}
