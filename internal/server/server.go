package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/craftsolver/internal/config"
	"github.com/lox/craftsolver/solver"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

// Config holds the server's listen address.
type Config struct {
	Addr string
}

// Server accepts WebSocket connections on /ws, each of which may submit
// exactly one solve request; Progress and the final Solution (or an
// Error) are streamed back on the same connection.
type Server struct {
	cfg      Config
	logger   *log.Logger
	upgrader websocket.Upgrader
	http     *http.Server

	mu       sync.Mutex
	inFlight int
}

// New builds a Server that will listen on cfg.Addr once Start is called.
func New(logger *log.Logger, cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.http = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.cfg.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	inFlight := s.inFlight
	s.mu.Unlock()
	fmt.Fprintf(w, "ok in_flight=%d\n", inFlight)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	c := newConnection(conn, s.logger)
	c.serve()
}

// connection owns one client's WebSocket lifecycle: it reads exactly one
// SolveRequestData, runs the solver, and streams Progress/Solution/Error
// frames back until the solve finishes or the socket closes.
type connection struct {
	conn   *websocket.Conn
	logger *log.Logger
	send   chan *Message
	ctx    context.Context
	cancel context.CancelFunc
}

func newConnection(conn *websocket.Conn, logger *log.Logger) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		conn:   conn,
		logger: logger.WithPrefix("conn"),
		send:   make(chan *Message, 16),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *connection) serve() {
	defer c.conn.Close()
	defer c.cancel()

	go c.writePump()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var msg Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.logger.Debug("read failed before request", "error", err)
		return
	}
	if msg.Type != MessageTypeSolveRequest {
		c.sendError("invalid_request", "first message must be a solve_request")
		return
	}

	var req SolveRequestData
	if err := decodeInto(msg.Data, &req); err != nil {
		c.sendError("invalid_request", err.Error())
		return
	}

	settings, err := resolveRequest(req)
	if err != nil {
		c.sendError("invalid_settings", err.Error())
		return
	}

	c.runSolve(settings)

	// Drain any further client frames (e.g. pings) until the socket closes.
	for {
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
	}
}

func (c *connection) runSolve(settings solver.Settings) {
	onProgress := func(p solver.Progress) {
		msg, err := NewMessage(MessageTypeProgress, ProgressData{
			NodesExpanded: p.NodesExpanded,
			BestQuality:   p.BestQuality,
		})
		if err == nil {
			c.trySend(msg)
		}
	}
	onSolution := func(solver.Solution) {}

	m := solver.NewMacroSolver(settings, onProgress, onSolution)
	solution, err := m.Solve(c.ctx)
	if err != nil {
		var exc *solver.SolverException
		if errors.As(err, &exc) {
			c.sendError(exc.Kind.String(), exc.Error())
			return
		}
		c.sendError("internal_error", err.Error())
		return
	}

	data := SolutionData{Progress: solution.Final.Progress, Quality: solution.Final.Quality}
	for _, combo := range solution.Macro {
		for _, a := range combo.Actions() {
			data.Actions = append(data.Actions, a.String())
		}
		data.Steps += int(combo.Steps())
		data.Duration += int(combo.Duration())
	}

	msg, err := NewMessage(MessageTypeSolution, data)
	if err != nil {
		c.sendError("internal_error", err.Error())
		return
	}
	c.trySend(msg)
}

func (c *connection) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to build error message", "error", err)
		return
	}
	c.trySend(msg)
}

func (c *connection) trySend(msg *Message) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("send buffer full, dropping frame", "type", msg.Type)
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func decodeInto(raw []byte, v interface{}) error {
	return json.Unmarshal(raw, v)
}

func resolveRequest(req SolveRequestData) (solver.Settings, error) {
	doc := config.Document{
		Recipe: config.Recipe{
			MaxProgress:   req.Recipe.MaxProgress,
			MaxQuality:    req.Recipe.MaxQuality,
			MaxDurability: req.Recipe.MaxDurability,
			BaseProgress:  req.Recipe.BaseProgress,
			BaseQuality:   req.Recipe.BaseQuality,
		},
		Crafter: config.Crafter{
			MaxCP:          req.Crafter.MaxCP,
			JobLevel:       req.Crafter.JobLevel,
			AllowedActions: req.Crafter.AllowedActions,
		},
		Solver: &config.Solver{
			BackloadProgress:            req.Solver.BackloadProgress,
			AllowUnsoundBranchPruning:   req.Solver.AllowUnsoundBranchPruning,
			AllowNonMaxQualitySolutions: req.Solver.AllowNonMaxQualitySolutions,
			Adversarial:                 req.Solver.Adversarial,
		},
	}
	return doc.Resolve()
}
