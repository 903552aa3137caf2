package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"starlit/starlit/config"
	"starlit/starlit/controllers"
	"starlit/starlit/middlewares"
	"starlit/starlit/realtime"
	"starlit/starlit/types"
	"starlit/starlit/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const joinTimeout = 10 * time.Second

func ChatRoutes(ctrl *controllers.ChatController, registry *realtime.Registry, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		// deadline for the request/response endpoints only; the ws
		// subscription below must outlive any per-request timeout
		gr.Use(middleware.Timeout(60 * time.Second))
		gr.Use(middlewares.AuthMiddleware(cfg))
		// POST /chat/add_chat : submit one query
		gr.Post("/add_chat", func(w http.ResponseWriter, r *http.Request) {
			var req types.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json")
				return
			}
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			resp, err := ctrl.AddChat(r.Context(), userID, req)
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			json.NewEncoder(w).Encode(resp)
		})
		// GET /chat/history : full transcript, oldest first
		gr.Get("/history", func(w http.ResponseWriter, r *http.Request) {
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			history, err := ctrl.GetHistory(r.Context(), userID)
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			json.NewEncoder(w).Encode(history)
		})
	})

	// GET /chat/ws?token=... : notification subscription. The client sends a
	// join frame, then only listens; membership ends when the socket does.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.ParseUserID(r.URL.Query().Get("token"), cfg.JWTSecret)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}

		// The socket is hijacked; from here on the request context (and any
		// timeout middleware wrapping it) must not govern the subscription.
		// Membership ends when the peer disconnects or the registry is
		// torn down, both of which surface as a Read error.
		ctx := context.Background()

		joinCtx, cancel := context.WithTimeout(ctx, joinTimeout)
		typ, data, err := conn.Read(joinCtx)
		cancel()
		if err != nil {
			conn.Close(websocket.StatusPolicyViolation, "join timeout")
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var join types.JoinMessage
		if err := json.Unmarshal(data, &join); err != nil || join.Type != types.JoinType {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"expected join"}`))
			conn.Close(websocket.StatusPolicyViolation, "expected join")
			return
		}

		member := &wsConn{conn: conn}
		registry.Join(member, userID)
		logging.AppLogger.Info("socket joined room", zap.Int("user_id", userID))

		// Hold the socket open on the detached context; any further client
		// frames are discarded. The read error doubles as disconnect
		// detection.
		defer func() {
			registry.Leave(member)
			logging.AppLogger.Info("socket left room", zap.Int("user_id", userID))
		}()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})
	return r
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Send(ctx context.Context, payload []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *wsConn) Close() {
	c.conn.Close(websocket.StatusGoingAway, "server shutting down")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInferenceUnavailable), errors.Is(err, types.ErrInferenceRejected):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
