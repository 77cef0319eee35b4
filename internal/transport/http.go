package transport

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/metrics"
)

//go:embed assets
var assetFS embed.FS

// RequestHandler handles one panel request. Replies must be delivered
// before Handle returns.
type RequestHandler interface {
	Handle(ctx context.Context, req message.Request, reply message.Reply)
}

// Server wires HTTP handlers for the panel host.
type Server struct {
	handler RequestHandler
	hub     *Hub
	logger  *slog.Logger
}

// NewServer creates the panel HTTP router.
func NewServer(handler RequestHandler, hub *Hub, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{handler: handler, hub: hub, logger: logger}

	assets, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", srv.handleIndex(assets))
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))
	r.Get("/ws", srv.handleWebSocket)
	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleIndex(assets fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			http.Error(w, "panel unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}
