package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quizdeck/backend/internal/config"
	"github.com/quizdeck/backend/internal/database"
	"github.com/quizdeck/backend/internal/generator"
	"github.com/quizdeck/backend/internal/logging"
	"github.com/quizdeck/backend/internal/metrics"
	"github.com/quizdeck/backend/internal/middleware"
	"github.com/quizdeck/backend/internal/questions"
	"github.com/quizdeck/backend/internal/quiz"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	root := flag.String("root", ".", "project root containing config/config.yaml")
	flag.Parse()

	cfg, err := config.Load(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Question bank is optional
	var store *questions.Store
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		store = questions.NewStore(db)
	} else {
		log.Info("Database disabled; question bank endpoints return 503")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize services
	parser := quiz.NewParser(quiz.ParseOptions{ExcludeReferences: cfg.Quiz.ExcludeReferences})
	gen := generator.NewGenerator(cfg.Generator, parser, log)
	svc := questions.NewService(store, gen, m, cfg.Quiz, log)
	handler := questions.NewHandler(svc, cfg.Generator.RequestsPerMinute, log)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Instrument(log, m))
	api := r.PathPrefix("/api/v1").Subrouter()
	handler.RegisterRoutes(api)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	log.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := http.ListenAndServe(":"+cfg.Server.Port, c.Handler(r)); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}
