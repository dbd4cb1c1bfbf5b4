package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/internal/service/chat"
	"github.com/sandevgo/rizza/internal/service/reply"
	"github.com/sandevgo/rizza/internal/service/speech"
	"github.com/sandevgo/rizza/internal/service/vision"
	"github.com/sandevgo/rizza/pkg/log"
)

// NewRouter wires the REST routes to the core services.
func NewRouter(
	chatSvc *chat.Service,
	visionSvc *vision.Service,
	replySvc *reply.Service,
	speechSvc *speech.Service,
	contacts core.ContactsRepository,
	allowedOrigins string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors(allowedOrigins))

	chatHandler := &ChatHandler{svc: chatSvc}
	analyzeHandler := &AnalyzeHandler{vision: visionSvc, reply: replySvc}
	replyHandler := &ReplyHandler{svc: replySvc}
	transcribeHandler := &TranscribeHandler{svc: speechSvc}
	contactsHandler := &ContactsHandler{repo: contacts}

	r.Route("/api/v1", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		analyzeHandler.RegisterRoutes(api)
		replyHandler.RegisterRoutes(api)
		transcribeHandler.RegisterRoutes(api)
		contactsHandler.RegisterRoutes(api)
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Rizza API is running"})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.FromCtx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func cors(allowedOrigins string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
