// Package server implements the development preview server with live reload.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/coder/websocket"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.PreviewServer = (*Server)(nil)
	_ ports.Reloader      = (*Server)(nil)
)

const (
	// SocketPath is the live-reload websocket endpoint.
	SocketPath = "/__plait/ws"
	// ClientPath serves the live-reload client script.
	ClientPath = "/__plait/reload.js"

	indexFile       = "index.html"
	sendBuffer      = 16
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

//go:embed reload.js
var reloadClient []byte

var clientTag = []byte(`<script src="` + ClientPath + `"></script>`)

type message struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths,omitempty"`
}

type client struct {
	send chan []byte
}

// Server serves an output root and pushes reload messages to browsers.
type Server struct {
	logger ports.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer creates a new Server.
func NewServer(logger ports.Logger) *Server {
	return &Server{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Serve listens on addr and serves fsys until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, fsys billy.Filesystem, addr string) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServerFailed.Error()), "addr", addr)
	}

	srv := &http.Server{
		Handler:           s.Handler(fsys),
		ReadHeaderTimeout: writeWait,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info(fmt.Sprintf("serving %s at http://%s", fsys.Root(), ln.Addr()))

	select {
	case <-ctx.Done():
		s.closeClients()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, domain.ErrServerFailed.Error())
		}
		return nil
	case err := <-errCh:
		s.closeClients()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrServerFailed.Error()), "addr", addr)
	}
}

// Handler returns the HTTP handler serving fsys with the live-reload endpoints.
func (s *Server) Handler(fsys billy.Filesystem) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(SocketPath, s.handleSocket)
	mux.HandleFunc(ClientPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(reloadClient)
	})
	mux.Handle("/", &fileHandler{fsys: fsys})
	return mux
}

// Reload asks every client to reload the page.
func (s *Server) Reload() {
	s.broadcast(message{Type: "reload"})
}

// InjectStyles asks every client to refresh the given stylesheets.
func (s *Server) InjectStyles(paths []string) {
	s.broadcast(message{Type: "css", Paths: paths})
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) broadcast(msg message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Slow client; it reloads on the next message anyway.
		}
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	c := &client{send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer s.removeClient(c)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server stopping")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// fileHandler serves files from a billy filesystem. HTML pages get the
// live-reload client injected.
type fileHandler struct {
	fsys billy.Filesystem
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := domain.CleanRel(path.Clean("/" + r.URL.Path))
	if name == domain.ProjectRoot {
		name = indexFile
	} else if info, err := h.fsys.Stat(name); err == nil && info.IsDir() {
		name = path.Join(name, indexFile)
	}

	info, err := h.fsys.Stat(name)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	data, err := util.ReadFile(h.fsys, name)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ext := strings.ToLower(path.Ext(name))
	if ext == ".html" || ext == ".htm" {
		data = InjectClient(data)
	}

	w.Header().Set("Content-Type", contentType(ext, data))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", fmt.Sprintf(`"%016x"`, xxhash.Sum64(data)))
	http.ServeContent(w, r, name, info.ModTime(), bytes.NewReader(data))
}

// contentType prefers the extension for text assets, which content sniffing
// cannot tell apart, and sniffs everything else.
func contentType(ext string, data []byte) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}

// InjectClient inserts the live-reload script before the closing body tag,
// or appends it when the page has none.
func InjectClient(page []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte(nil), page...), clientTag...)
	}

	out := make([]byte, 0, len(page)+len(clientTag))
	out = append(out, page[:idx]...)
	out = append(out, clientTag...)
	return append(out, page[idx:]...)
}
