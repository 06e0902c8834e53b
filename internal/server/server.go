// Package server exposes the cascade and the stored classifications over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aanlab/aang/internal/cascade"
	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/storage"
)

// Classifier runs the cascade for a single author.
type Classifier interface {
	Classify(ctx context.Context, author string, opts cascade.Options) (gender.Result, error)
}

// Handler serves the API.
type Handler struct {
	classifier Classifier
	store      storage.Store
	now        func() time.Time
}

// NewHandler returns a handler backed by c and s.
func NewHandler(c Classifier, s storage.Store) *Handler {
	return &Handler{classifier: c, store: s, now: time.Now}
}

// NewRouter wires the API routes.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/classify", h.Classify)
		r.Get("/authors/{name}", h.GetAuthor)
		r.Get("/counts", h.Counts)
	})
	return r
}

// Classify runs the cascade on ?name= and stores a known answer.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("name")
	if author == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	var opts cascade.Options
	if v := r.URL.Query().Get("face"); v != "" {
		face, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "face must be a boolean")
			return
		}
		opts.Face = face
	}

	res, err := h.classifier.Classify(r.Context(), author, opts)
	if err != nil {
		zap.L().Warn("classify failed", zap.String("author", author), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if res.Known() {
		if err := h.store.Put(r.Context(), storage.FromResult(res, h.now())); err != nil {
			zap.L().Error("storing result", zap.String("author", author), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store result")
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// GetAuthor returns the stored record for an author.
func (h *Handler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	author := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(author); err == nil {
		author = unescaped
	}
	rec, err := h.store.Get(r.Context(), author)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Counts returns the number of stored authors per gender.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Counts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ListenAndServe serves handler on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		zap.L().Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
