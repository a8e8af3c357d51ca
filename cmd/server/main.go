package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NLeSC/Spec2Vec/pkg/logger"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec"
)

var (
	port           int
	dbPath         string
	measure        string
	tolerance      float64
	workers        int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SPEC2VEC_DB_PATH", "spec2vec.sqlite3"), "Path to SQLite library")
	flag.StringVar(&measure, "measure", spec2vec.MeasureCosine, "Similarity measure: cosine or modified_cosine")
	flag.Float64Var(&tolerance, "tolerance", 0.005, "Peak matching m/z tolerance")
	flag.IntVar(&workers, "workers", 0, "Scoring goroutines (0 = number of CPUs)")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := spec2vec.NewService(
		spec2vec.WithDBPath(dbPath),
		spec2vec.WithMeasure(measure),
		spec2vec.WithTolerance(tolerance),
		spec2vec.WithWorkers(workers),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		Tolerance:      tolerance,
		Measure:        measure,
		Workers:        workers,
		AllowedOrigins: origins,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.setupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	log.Infof("Spec2Vec API listening on :%d (db=%s, measure=%s)", port, dbPath, measure)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
