package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Spok95/school-healthcheck/internal/campaign"
	"github.com/Spok95/school-healthcheck/internal/metrics"
)

// ClassLister отдаёт список классов для операторских форм.
type ClassLister interface {
	ListClassNames(ctx context.Context) ([]string, error)
}

type Server struct {
	srv  *http.Server
	done chan struct{}
}

// Wait блокирует до завершения graceful shutdown.
func (s *Server) Wait() { <-s.done }

func Start(ctx context.Context, addr string, svc *campaign.Service, classes ClassLister, database *sql.DB, log *zap.SugaredLogger) *Server {
	h := &handlers{svc: svc, classes: classes, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := database.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/classes", h.listClasses)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.createCampaign)
			r.Get("/", h.listCampaigns)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getCampaign)
				r.Post("/approve", h.approve)
				r.Post("/reject", h.reject)
				r.Post("/cancel", h.cancel)
				r.Post("/start", h.start)
				r.Post("/complete", h.complete)
				r.Post("/schedule", h.schedule)
				r.Post("/dispatch", h.dispatch)
				r.Get("/eligible", h.eligible)
				r.Post("/results", h.recordResult)
				r.Get("/results", h.listResults)
			})
		})

		r.Post("/forms/{id}/response", h.respondToForm)
	})

	srv := &http.Server{Addr: addr, Handler: r}
	done := make(chan struct{})

	go func() {
		_ = srv.ListenAndServe() // закрываем аккуратно при Shutdown
	}()

	go func() {
		defer close(done)
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &Server{srv: srv, done: done}
}
