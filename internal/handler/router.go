package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mindsight/chat-analysis/internal/handler/chat"
	analysisservice "github.com/mindsight/chat-analysis/internal/service/analysis"
	"github.com/mindsight/chat-analysis/pkg/utils"
)

// NewRouter wires HTTP routes to the analysis client.
func NewRouter(analyzer *analysisservice.Client, logger logrus.FieldLogger, opts chat.Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"endpoint": analyzer.Endpoint(),
		})
	})

	if opts.Logger == nil {
		opts.Logger = logger
	}
	chat.New(analyzer, opts).RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})

	return r
}
