package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cipherchat/domain"

	"github.com/gorilla/websocket"
)

// wsSink adapts one gorilla connection to the Sink interface. Gorilla
// allows at most one concurrent writer per connection, so every send is
// serialized through the mutex. The dispatcher may write to a sink from
// any session's goroutine during relays and fan-out.
type wsSink struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (w *wsSink) Send(msg domain.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// Server accepts websocket connections and runs one read loop goroutine
// per client, feeding decoded actions into the dispatcher.
type Server struct {
	dispatcher   *Dispatcher
	log          *slog.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

func NewServer(dispatcher *Dispatcher, writeTimeout time.Duration, log *slog.Logger) *Server {
	return &Server{
		dispatcher:   dispatcher,
		log:          log,
		writeTimeout: writeTimeout,
		upgrader:     websocket.Upgrader{},
	}
}

// Handler exposes the websocket endpoint. Split from ListenAndServe so
// tests can mount it on httptest.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConnection)
	return mux
}

// ListenAndServe blocks until the context is canceled or the listener
// fails. Cancellation triggers a graceful shutdown so in-flight writes
// get a chance to flush.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info("Relay started", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleConnection upgrades the channel and runs the session's read loop.
// The loop owns the session: when the read side ends, for any reason, the
// identity is evicted and the connection closed.
func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := NewSession(&wsSink{conn: conn, writeTimeout: s.writeTimeout})
	s.log.Debug("Connection open", "session", session.ID, "remote", r.RemoteAddr)

	defer func() {
		s.dispatcher.Disconnect(session)
		_ = conn.Close()
		s.log.Debug("Connection closed", "session", session.ID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		action, err := domain.DecodeAction(data)
		if err != nil {
			// Unknown or malformed envelopes are rejected explicitly,
			// the connection itself stays up.
			s.log.Warn("Rejected envelope", "session", session.ID, "error", err)
			s.dispatcher.reply(session, domain.NewError(err.Error()))
			continue
		}
		s.dispatcher.Dispatch(session, action)
	}
}
