package webchat

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static/index.html static/widget.js
var staticFS embed.FS

// NewRouter wires the widget, chat endpoints, health and metrics. A nil
// gatherer serves the default Prometheus registry.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/", h.HandleIndex)
	r.Route("/chat", func(r chi.Router) {
		r.Use(CORS(h.origins))
		r.Get("/", h.HandleIndex)
		r.Get("/widget.js", h.HandleWidgetJS)
		r.Get("/ws", h.HandleWebSocket)
		r.Get("/state", h.HandleState)
		r.Post("/message", h.HandleMessage)
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	serveStatic(w, "static/index.html", "text/html; charset=utf-8")
}

// HandleWidgetJS serves the embeddable widget script.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	serveStatic(w, "static/widget.js", "application/javascript")
}

func serveStatic(w http.ResponseWriter, name, contentType string) {
	data, err := staticFS.ReadFile(name)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
