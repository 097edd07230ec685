// Package hub implements the TCP event hub: a small line-based API that
// serves controller metadata and streams decoded events to clients.
package hub

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"

	"github.com/padkit/padkit/internal/hub/apierror"
	"github.com/padkit/padkit/internal/hub/auth"
)

// Config tunes the hub server.
type Config struct {
	// Addr is the TCP listen address, e.g. "127.0.0.1:27532".
	Addr string
	// Password enables the authentication handshake and session encryption
	// when non-empty.
	Password string
}

// Server accepts one request per connection; stream routes keep the
// connection open and push JSON lines.
type Server struct {
	cfg    Config
	ln     net.Listener
	logger *slog.Logger
	router *Router
	bcast  *Broadcaster
}

// New creates a hub server. Register handlers on Router before Start.
func New(cfg Config, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		router: NewRouter(),
		bcast:  NewBroadcaster(),
	}
}

// Router returns the router used by the hub so callers can register handlers.
func (s *Server) Router() *Router { return s.router }

// Broadcaster returns the event sink that feeds connected stream clients.
// Wire it into the device session as an extra Events sink.
func (s *Server) Broadcaster() *Broadcaster { return s.bcast }

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Start listens on the configured address and serves incoming commands.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("hub listening", "addr", s.Addr())
	go s.serve()
	return nil
}

// Close stops the hub server.
func (s *Server) Close() {
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

func (s *Server) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("hub stopped")
				return
			}
			s.logger.Info("hub accept error", "error", err)
			return
		}
		go s.handleConn(c)
	}
}

func (s *Server) writeError(w io.Writer, err error) {
	apiErr := apierror.WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (s *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// authenticate runs the handshake when a password is configured and returns
// the encrypted conn plus a reader positioned after the handshake bytes.
func (s *Server) authenticate(conn net.Conn, r *bufio.Reader, logger *slog.Logger) (net.Conn, *bufio.Reader, error) {
	isAuth, err := auth.IsAuthHandshake(r)
	if err != nil {
		return nil, nil, fmt.Errorf("peek handshake: %w", err)
	}
	if !isAuth {
		return nil, nil, apierror.ErrUnauthorized("authentication required")
	}

	key, err := auth.DeriveKey(s.cfg.Password)
	if err != nil {
		return nil, nil, err
	}
	clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, key, false)
	if err != nil {
		return nil, nil, err
	}

	sessionKey := auth.DeriveSessionKey(key, serverNonce, clientNonce)
	sc, err := auth.WrapConn(conn, r, sessionKey)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("hub client authenticated")
	return sc, bufio.NewReader(sc), nil
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := s.logger.With("remote", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)

	if s.cfg.Password != "" {
		sc, sr, err := s.authenticate(conn, r, connLogger)
		if err != nil {
			connLogger.Error("hub auth failed", "error", err)
			s.writeError(conn, err)
			return
		}
		conn = sc
		r = sr
	}
	w := conn

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("hub incomplete request (no null terminator)")
		} else {
			connLogger.Error("read hub request", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("hub empty command")
		s.writeError(w, apierror.ErrBadRequest("empty request"))
		return
	}

	// Split on first whitespace character
	wsRegex := regexp.MustCompile(`\s`)
	loc := wsRegex.FindStringIndex(reqData)

	var path, payload string
	if loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
		payload = ""
	}

	if path == "" {
		connLogger.Error("hub empty path")
		s.writeError(w, apierror.ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("hub cmd", "path", path)

	if h, params := s.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("hub handler error", "path", path, "error", err)
			s.writeError(w, err)
			return
		}
		connLogger.Debug("hub handler success", "path", path)
		s.writeOK(w, res.JSON)
		return
	}
	if sh, params := s.router.MatchStream(path); sh != nil {
		connLogger.Info("hub stream begin", "path", path)
		if err := sh(connCtx, conn, params, connLogger); err != nil {
			connLogger.Error("hub stream handler error", "path", path, "error", err)
		}
		connLogger.Info("hub stream end", "path", path)
		return
	}

	connLogger.Error("hub unknown path", "path", path)
	s.writeError(w, apierror.ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
