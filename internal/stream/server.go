// Package stream is a scene backend that broadcasts frames to browsers over
// WebSocket and feeds their pointer and key input back into the frame loop.
package stream

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	writeWait    = 2 * time.Second
	pingInterval = 10 * time.Second
	sendBuffer   = 4
)

var ErrClosed = errors.New("stream: backend closed")

//go:embed viewer.html
var viewerPage []byte

// SafeWriter serialises writes to a connection.
type SafeWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

func (w *SafeWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(messageType, data)
}

func (w *SafeWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *SafeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Close()
}

type client struct {
	w    *SafeWriter
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.w.Close()
	})
}

type Option func(*Server)

// WithParams is called for every world parameter change a client requests.
func WithParams(fn func(name string, value float64)) Option {
	return func(s *Server) { s.onParam = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithResize is called when a client reports its viewport size.
func WithResize(fn func(width, height int)) Option {
	return func(s *Server) { s.onResize = fn }
}

// Server implements scene.Backend and http.Handler.
type Server struct {
	upgrader websocket.Upgrader
	sink     func(input.Event)
	onResize func(int, int)
	onParam  func(string, float64)
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	width   int
	height  int
	open    bool
	closed  bool
	frames  int
	dropped int
}

// New returns a server delivering client input to sink.
func New(sink func(input.Event), opts ...Option) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sink:    sink,
		logger:  log.New(io.Discard),
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Open(surface scene.Surface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.width, s.height = surface.Size()
	s.open = true
	return nil
}

func (s *Server) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// Draw encodes the frame once and queues it for every client. A client
// whose queue is full misses this frame.
func (s *Server) Draw(f scene.Frame) error {
	data, err := json.Marshal(EncodeFrame(f))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrClosed
	}
	s.last = data
	s.frames++
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.dropped++
		}
	}
	return nil
}

// Close disconnects every client. Later connections are refused.
func (s *Server) Close() error {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.open = false
	s.closed = true
	s.mu.Unlock()

	for c := range clients {
		c.w.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "scene disposed"))
		c.close()
	}
	return nil
}

func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Handler serves the viewer page at / and the socket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(viewerPage)
	})
	mux.Handle("/ws", s)
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, "scene disposed", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{w: NewSafeWriter(conn), send: make(chan []byte, sendBuffer), done: make(chan struct{})}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.last != nil {
		c.send <- s.last
	}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	go s.writeLoop(c)
	s.readLoop(c, conn)

	s.mu.Lock()
	delete(s.clients, c)
	n = len(s.clients)
	s.mu.Unlock()
	c.close()
	s.logger.Info("client disconnected", "remote", r.RemoteAddr, "clients", n)
}

func (s *Server) writeLoop(c *client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.w.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write failed", "err", err)
				c.close()
				return
			}
		case <-ping.C:
			if err := c.w.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (s *Server) readLoop(c *client, conn *websocket.Conn) {
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntax *json.SyntaxError
			if errors.As(err, &syntax) {
				s.logger.Warn("bad client message", "err", err)
				continue
			}
			return
		}
		switch msg.Type {
		case MessageResize:
			if s.onResize != nil && msg.Width > 0 && msg.Height > 0 {
				s.onResize(msg.Width, msg.Height)
			}
			continue
		case MessageParam:
			if s.onParam != nil && msg.Name != "" {
				s.onParam(msg.Name, msg.Value)
			}
			continue
		}
		ev, ok, err := msg.Event()
		if err != nil {
			s.logger.Warn("bad client message", "type", msg.Type, "err", err)
			continue
		}
		if ok && s.sink != nil {
			s.sink(ev)
		}
	}
}
