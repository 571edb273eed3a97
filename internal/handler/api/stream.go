package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"InlineRank/internal/usecase"
	xhttp "InlineRank/pkg/http"
	xlogger "InlineRank/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamHandler pushes a freshly ranked batch to websocket clients every interval.
type StreamHandler struct {
	logger   *xlogger.Logger
	ranker   Ranker
	interval time.Duration
	upgrader websocket.Upgrader
}

var _ xhttp.Handler = (*StreamHandler)(nil)

// streamError is sent in place of a ranking when a refresh fails.
type streamError struct {
	Error string `json:"error"`
}

func NewStreamHandler(logger *xlogger.Logger, ranker Ranker, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StreamHandler{
		logger:   logger,
		ranker:   ranker,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/rankings", h.Stream)
}

func (h *StreamHandler) Stream(c echo.Context) error {
	q, verr := bindRankQuery(c)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go h.readPump(conn, cancel)

	h.logger.Info("ranking stream opened", xlogger.String("remote", c.RealIP()))
	defer h.logger.Info("ranking stream closed", xlogger.String("remote", c.RealIP()))

	refresh := time.NewTicker(h.interval)
	defer refresh.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if !h.push(ctx, conn, q) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-refresh.C:
			if !h.push(ctx, conn, q) {
				return nil
			}
		}
	}
}

// push ranks and writes one message. It reports whether the connection is still usable.
func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, q usecase.RankQuery) bool {
	var msg interface{}
	r, err := h.ranker.Rank(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		h.logger.Warn("stream refresh failed", xlogger.Error(err))
		msg = streamError{Error: err.Error()}
	} else {
		msg = r
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("stream write failed", xlogger.Error(err))
		return false
	}
	return true
}

// readPump drains client frames so control messages are processed, and
// cancels the stream once the client goes away.
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
