package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/hackorbit/team-service/internal/config"
	"github.com/hackorbit/team-service/internal/db"
	"github.com/hackorbit/team-service/internal/metrics"
	"github.com/hackorbit/team-service/internal/models"
	"github.com/hackorbit/team-service/internal/notify"
	"github.com/hackorbit/team-service/internal/scheduler"
	"github.com/hackorbit/team-service/internal/search"
	"github.com/hackorbit/team-service/internal/services"
	"github.com/hackorbit/team-service/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	pg := db.Connect(cfg.PostgresDSN)
	db.Migrate(pg)
	db.Seed(pg)

	metrics.Register()

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	}

	st := store.New(pg)
	formation := scheduler.New(st, notifier, cfg.TickInterval)

	es := search.Connect(cfg.ElasticURL)
	sync := &search.Worker{DB: pg, ES: es, Interval: cfg.SyncInterval}
	notifyRetry := &notify.RetryWorker{Store: st, Notifier: notifier, Interval: cfg.RetryInterval}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go formation.Run(ctx)
	go sync.Run(ctx)
	go sync.RetryDLQ(ctx)
	go notifyRetry.Run(ctx)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/hackathons", func(w http.ResponseWriter, _ *http.Request) {
		var hackathons []models.Hackathon
		pg.Order("registration_deadline asc").Limit(100).Find(&hackathons)
		json.NewEncoder(w).Encode(hackathons)
	})

	r.Post("/api/hackathons", func(w http.ResponseWriter, req *http.Request) {
		var h models.Hackathon
		if err := json.NewDecoder(req.Body).Decode(&h); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if h.Status == "" {
			h.Status = models.StatusRegistrationOpen
		}
		if err := services.CreateHackathon(pg, &h); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "created", "id": h.ID})
	})

	r.Post("/api/hackathons/{id}/register", func(w http.ResponseWriter, req *http.Request) {
		hackathonID, err := uuid.Parse(chi.URLParam(req, "id"))
		if err != nil {
			http.Error(w, "bad hackathon id", http.StatusBadRequest)
			return
		}
		var body struct {
			UserID uuid.UUID `json:"user_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := services.RegisterParticipant(pg, hackathonID, body.UserID); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "registered"})
	})

	r.Get("/api/teams", func(w http.ResponseWriter, req *http.Request) {
		q := pg.Preload("Members").Order("created_at desc").Limit(100)
		if id := req.URL.Query().Get("hackathon_id"); id != "" {
			q = q.Where("hackathon_id = ?", id)
		}
		var teams []models.Team
		q.Find(&teams)
		json.NewEncoder(w).Encode(teams)
	})

	r.Get("/api/outbox", func(w http.ResponseWriter, _ *http.Request) {
		var outboxes []models.Outbox
		pg.Order("id desc").Limit(100).Find(&outboxes)
		json.NewEncoder(w).Encode(outboxes)
	})

	r.Get("/api/notify-dlq", func(w http.ResponseWriter, _ *http.Request) {
		var dlq []models.NotificationDLQ
		pg.Order("id desc").Limit(100).Find(&dlq)
		json.NewEncoder(w).Encode(dlq)
	})

	r.Post("/api/retry/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		var d models.NotificationDLQ
		if err := pg.First(&d, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var p notify.Payload
		if err := json.Unmarshal(d.Payload, &p); err != nil {
			http.Error(w, "bad payload: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := notifier.Notify(req.Context(), d.RecipientID, p); err != nil {
			http.Error(w, "retry failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := st.ResolveNotification(req.Context(), d.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		metrics.NotifyDelivered.Inc()
		json.NewEncoder(w).Encode(map[string]string{"status": "retried"})
	})

	log.Printf("🧭 Admin API running on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, corsMiddleware.Handler(r)); err != nil {
		log.Fatalf("admin API listener failed: %v", err)
	}
}
