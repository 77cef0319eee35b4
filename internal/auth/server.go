// Package auth runs the loopback login flow: a short-lived HTTP server that
// serves the login page, receives the authenticated profile and stores it as
// the session user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/metrics"
)

var (
	// ErrMalformedPayload is returned when the callback carries an unusable
	// user payload.
	ErrMalformedPayload = errors.New("malformed authentication payload")
	// ErrFlowInProgress is returned when a login flow is already running.
	ErrFlowInProgress = errors.New("authentication already in progress")
)

const shutdownTimeout = 5 * time.Second

const successPage = `<html>
  <body>
    <script>
      window.close();
    </script>
    Authentication successful! You can close this window.
  </body>
</html>
`

// Config controls the callback listener.
type Config struct {
	Host      string
	Port      int
	StaticDir string
	OIDC      OIDCConfig
}

// SessionWriter stores the authenticated user.
type SessionWriter interface {
	Set(ctx context.Context, u *user.User) error
}

// BrowserOpener opens a URL in the user's browser.
type BrowserOpener interface {
	Open(url string) error
}

// Reloader asks every open panel to rebuild itself.
type Reloader interface {
	Reload()
}

// Notifier surfaces a notification to the user.
type Notifier interface {
	Notify(n message.Notification)
}

// Server runs at most one login flow at a time.
type Server struct {
	cfg      Config
	sessions SessionWriter
	opener   BrowserOpener
	reloader Reloader
	notifier Notifier
	logger   *slog.Logger
	oidc     *oidcClient

	mu      sync.Mutex
	running bool
}

// NewServer creates an auth server. reloader and notifier may be nil.
func NewServer(cfg Config, sessions SessionWriter, opener BrowserOpener, reloader Reloader, notifier Notifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		opener:   opener,
		reloader: reloader,
		notifier: notifier,
		logger:   logger,
	}
	if cfg.OIDC.Enabled() {
		s.oidc = newOIDCClient(cfg.OIDC)
	}
	return s
}

// outcome is the single result of a flow.
type outcome struct {
	user *user.User
	err  error
}

// flow is the state of one running login. The first request to claim it
// decides the outcome.
type flow struct {
	baseURL string
	done    chan outcome
	claimed atomic.Bool

	mu       sync.Mutex
	state    string
	verifier string
}

func (f *flow) claim() bool {
	return f.claimed.CompareAndSwap(false, true)
}

// finish must only be called by the request that claimed the flow.
func (f *flow) finish(o outcome) {
	f.done <- o
}

// Authenticate starts the callback listener, opens the login page and waits
// for the browser to hand back a profile. The listener is closed on every
// return path.
func (s *Server) Authenticate(ctx context.Context) (*user.User, error) {
	if !s.begin() {
		metrics.RecordAuthFlow("busy")
		return nil, ErrFlowInProgress
	}
	defer s.end()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		metrics.RecordAuthFlow("error")
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	f := &flow{
		baseURL: "http://" + s.hostPort(ln.Addr()),
		done:    make(chan outcome, 1),
	}
	srv := &http.Server{
		Handler:           s.routes(f),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("auth server failed", "error", err)
		}
	}()

	loginURL := f.baseURL + "/login"
	s.logger.Info("auth server listening", "url", loginURL)
	if s.opener != nil {
		if err := s.opener.Open(loginURL); err != nil {
			s.logger.Warn("could not open browser", "url", loginURL, "error", err)
		}
	}

	select {
	case <-ctx.Done():
		s.shutdown(srv)
		metrics.RecordAuthFlow("canceled")
		return nil, ctx.Err()
	case o := <-f.done:
		s.shutdown(srv)
		if o.err != nil {
			s.logger.Warn("authentication failed", "error", o.err)
			return nil, o.err
		}
		if s.reloader != nil {
			s.reloader.Reload()
		}
		if s.notifier != nil {
			s.notifier.Notify(message.Info("Logged in as " + o.user.DisplayName))
		}
		metrics.RecordAuthFlow("success")
		s.logger.Info("authenticated", "uid", o.user.UID)
		return o.user, nil
	}
}

func (s *Server) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Server) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// hostPort keeps the configured host name so the browser sees the same
// origin the OAuth redirect is registered for.
func (s *Server) hostPort(a net.Addr) string {
	host := s.cfg.Host
	if host == "" {
		host = "localhost"
	}
	if tcp, ok := a.(*net.TCPAddr); ok {
		return net.JoinHostPort(host, strconv.Itoa(tcp.Port))
	}
	return a.String()
}

func (s *Server) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
	}
}

func (s *Server) routes(f *flow) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/login", s.handleLogin)
	r.Get("/authenticated", s.handleAuthenticated(f))
	if s.oidc != nil {
		r.Get("/oauth/start", s.handleOAuthStart(f))
		r.Get("/oauth/callback", s.handleOAuthCallback(f))
	}
	if s.cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginTemplate.Execute(w, loginPage{OIDC: s.oidc != nil}); err != nil {
		s.logger.Error("render login page", "error", err)
	}
}

func (s *Server) handleAuthenticated(f *flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !f.claim() {
			http.Error(w, "Authentication already completed", http.StatusGone)
			return
		}

		u, err := user.Decode(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			metrics.RecordAuthFlow("malformed")
			f.finish(outcome{err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)})
			return
		}

		if err := s.sessions.Set(r.Context(), u); err != nil {
			http.Error(w, "Authentication failed", http.StatusInternalServerError)
			metrics.RecordAuthFlow("store_error")
			f.finish(outcome{err: fmt.Errorf("storing session: %w", err)})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(successPage))
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		f.finish(outcome{user: u})
	}
}
