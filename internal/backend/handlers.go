package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"menuboard/internal/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const welcomeMessage = "Welcome to Shriyansh Restaurant API"

// Handler serves the menu API over HTTP
type Handler struct {
	store Store
	log   zerolog.Logger
}

// NewHandler creates a handler reading from store.
func NewHandler(store Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Routes builds the router with request ids, logging, recovery and CORS.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Root)
		r.Get("/restaurant-info", h.RestaurantInfo)
		r.Get("/menu", h.Menu)
		r.Get("/menu/category/{category}", h.MenuByCategory)
	})

	return r
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RestaurantInfo handles GET /api/restaurant-info
func (h *Handler) RestaurantInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.RestaurantInfo(r.Context())
	if errors.Is(err, ErrNoRestaurantInfo) {
		h.writeError(w, http.StatusNotFound, "restaurant info not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load restaurant info")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// Menu handles GET /api/menu
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Menu(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load menu")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// MenuByCategory handles GET /api/menu/category/{category}
func (h *Handler) MenuByCategory(w http.ResponseWriter, r *http.Request) {
	category := models.Category(chi.URLParam(r, "category"))

	items, err := h.store.MenuByCategory(r.Context(), category)
	if errors.Is(err, ErrUnknownCategory) {
		h.writeError(w, http.StatusBadRequest, "unknown category: "+string(category))
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("category", string(category)).Msg("failed to load menu category")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
