package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"roastlog/internal/alarms"
	"roastlog/internal/auth"
	"roastlog/internal/eventbus"
	"roastlog/internal/observability/metrics"
	"roastlog/internal/profiles"
	roastapp "roastlog/internal/roasts/application"
	roastpostgres "roastlog/internal/roasts/infrastructure/postgres"
	roasthttp "roastlog/internal/roasts/interfaces/http"
	sessionapp "roastlog/internal/session/application"
	sessionhttp "roastlog/internal/session/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()

	presets, err := profiles.Load()
	if err != nil {
		logger.Fatalf("profiles config error: %v", err)
	}

	bus := eventbus.NewInMemoryBus()

	sessionService, err := sessionapp.NewService(sessionapp.TickerCadence{}, bus, logger)
	if err != nil {
		logger.Fatalf("session service error: %v", err)
	}

	alarmRules := make([]alarms.Rule, 0, len(presets.Alarms))
	for _, rule := range presets.Alarms {
		alarmRules = append(alarmRules, alarms.Rule{
			Name:      rule.Name,
			Operator:  alarms.Operator(rule.Operator),
			Threshold: rule.Threshold,
			Severity:  rule.Severity,
		})
	}
	var alarmNotifier alarms.Notifier
	if cfg.AlarmWebhookURL != "" {
		alarmNotifier, err = alarms.NewWebhookNotifier(cfg.AlarmWebhookURL)
		if err != nil {
			logger.Fatalf("alarm webhook error: %v", err)
		}
	}
	alarmService, err := alarms.NewService(alarmRules, bus, alarmNotifier, logger)
	if err != nil {
		logger.Fatalf("alarm service error: %v", err)
	}
	alarmService.Wire(bus)

	roastRepo := roastpostgres.NewRoastRepository(db)
	archiveService, err := roastapp.NewArchiveService(roastRepo, roastapp.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("archive service error: %v", err)
	}

	sessionHandler, err := sessionhttp.NewHandler(sessionService, presets, archiveService)
	if err != nil {
		logger.Fatalf("session handler error: %v", err)
	}
	broker := sessionhttp.NewBroker()
	broker.Wire(bus)

	roastsHandler, err := roasthttp.NewHandler(archiveService)
	if err != nil {
		logger.Fatalf("roasts handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/session", sessionHandler)
	mux.Handle("/api/v1/session/", sessionHandler)
	mux.Handle("/api/v1/session/stream", sessionhttp.NewStreamHandler(broker))
	mux.Handle("/api/v1/roasts", roastsHandler)
	mux.Handle("/api/v1/roasts/", roastsHandler)
	mux.Handle("/api/v1/exports/roasts.csv", roasthttp.NewExportRoastsCSVHandler(archiveService))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	AlarmWebhookURL string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		AlarmWebhookURL: getenvDefault("ALARM_WEBHOOK_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the SSE stream working through the logging wrapper.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
