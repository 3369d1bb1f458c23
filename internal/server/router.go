// Package server is the HTTP adapter over the catalog service.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/bookreviewd/internal/catalog"
)

// Server wires the catalog service into HTTP handlers.
type Server struct {
	catalog     *catalog.Service
	log         *zap.Logger
	corsOrigins []string
}

func New(svc *catalog.Service, log *zap.Logger, corsOrigins []string) *Server {
	return &Server{catalog: svc, log: log, corsOrigins: corsOrigins}
}

// Handler configures all routes and middleware.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.requestLogger)

	if len(s.corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)
	router.Get("/debug-cache", s.debugCache)

	router.Route("/books", func(r chi.Router) {
		r.Get("/", s.listBooks)
		r.Post("/", s.createBook)
		r.Get("/{bookID}", s.getBook)
		r.Get("/{bookID}/reviews", s.listReviews)
		r.Post("/{bookID}/reviews", s.createReview)
	})

	return router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}
