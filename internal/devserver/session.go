package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/navguard/internal/app"
	"github.com/vango-dev/navguard/pkg/guard"
	"github.com/vango-dev/navguard/pkg/scroll"
)

// CommandType is the type of a client command.
type CommandType string

const (
	CommandNavigate CommandType = "navigate"
	CommandReplace  CommandType = "replace"
	CommandBack     CommandType = "back"
	CommandForward  CommandType = "forward"
	CommandScroll   CommandType = "scroll"
)

// Command is sent by clients via WebSocket.
type Command struct {
	Type CommandType `json:"type"`
	To   string      `json:"to,omitempty"`
	X    float64     `json:"x,omitempty"`
	Y    float64     `json:"y,omitempty"`
}

// EventType is the type of a server event.
type EventType string

const (
	EventReady    EventType = "ready"
	EventLoading  EventType = "loading"
	EventLayout   EventType = "layout"
	EventCommit   EventType = "commit"
	EventRedirect EventType = "redirect"
	EventAbort    EventType = "abort"
	EventError    EventType = "error"
)

// Event is sent to clients via WebSocket.
type Event struct {
	Type    EventType `json:"type"`
	Session string    `json:"session,omitempty"`
	Active  bool      `json:"active,omitempty"`
	Layout  string    `json:"layout,omitempty"`
	To      string    `json:"to,omitempty"`
	Outcome *Outcome  `json:"outcome,omitempty"`
	Error   any       `json:"error,omitempty"`
}

// SessionServer runs one navigation session per WebSocket connection.
type SessionServer struct {
	app      *app.App
	logger   *slog.Logger
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewSessionServer creates a session server for a.
func NewSessionServer(a *app.App, logger *slog.Logger) *SessionServer {
	return &SessionServer{
		app:     a,
		logger:  logger,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
	}
}

// client is one connection and its session. Writes are serialized because
// the connection supports a single concurrent writer.
type client struct {
	conn    *websocket.Conn
	session *app.Session
	writeMu sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func (c *client) send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// HandleWebSocket upgrades the connection and serves commands until the
// client disconnects.
func (s *SessionServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{conn: conn, session: s.app.NewSession(), ctx: ctx, cancel: cancel}
	logger := s.logger.With("session", c.session.ID)

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	removeListener := c.session.Bar.OnChange(func(active bool) {
		_ = c.send(Event{Type: EventLoading, Active: active})
	})

	logger.Debug("session connected")
	_ = c.send(Event{Type: EventReady, Session: c.session.ID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = c.send(Event{Type: EventError, Error: map[string]string{"message": "invalid command: " + err.Error()}})
			continue
		}

		if cmd.Type == CommandScroll {
			c.session.Navigator.RecordScroll(scroll.Position{X: cmd.X, Y: cmd.Y})
			continue
		}

		// Navigations run concurrently so a newer command can supersede one
		// that is still waiting on middleware or data.
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			s.navigate(c, cmd)
		}()
	}

	cancel()
	c.wg.Wait()
	removeListener()

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	conn.Close()
	logger.Debug("session disconnected")
}

func (s *SessionServer) navigate(c *client, cmd Command) {
	nv := c.session.Navigator

	var (
		out *guard.Outcome
		err error
	)
	switch cmd.Type {
	case CommandNavigate:
		out, err = nv.Push(c.ctx, cmd.To)
	case CommandReplace:
		out, err = nv.Replace(c.ctx, cmd.To)
	case CommandBack:
		out, err = nv.Back(c.ctx)
	case CommandForward:
		out, err = nv.Forward(c.ctx)
	default:
		_ = c.send(Event{Type: EventError, Error: map[string]string{"message": "unknown command " + string(cmd.Type)}})
		return
	}

	if err != nil {
		c.session.Tick()
		_ = c.send(Event{Type: EventError, To: cmd.To, Error: errorPayload(err)})
		return
	}

	for _, target := range out.Redirects {
		_ = c.send(Event{Type: EventRedirect, To: target})
	}

	o := newOutcome(out)
	if out.Committed() {
		_ = c.send(Event{Type: EventLayout, Layout: c.session.Layout.Name()})
		_ = c.send(Event{Type: EventCommit, Outcome: o})
	} else {
		_ = c.send(Event{Type: EventAbort, Outcome: o})
	}

	// The new view has been "rendered"; run the deferred indicator calls.
	c.session.Tick()
}

// ClientCount returns the number of connected clients.
func (s *SessionServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *SessionServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		c.cancel()
		c.conn.Close()
		delete(s.clients, c)
	}
}
