package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/evn/siteops_backend/config"
	"github.com/evn/siteops_backend/db"
	"github.com/evn/siteops_backend/internal/engine"
	"github.com/evn/siteops_backend/internal/routes"
)

func main() {
	cfg := config.NewConfig()
	database := db.InitDB(cfg.DatabaseDSN)
	defer database.Close()

	redisClient := config.NewRedisClient()
	defer redisClient.Close()

	router, eng := routes.Setup(cfg, database, redisClient)

	go sweepLoop(eng, cfg.SweepInterval)

	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("🚀 Server starting on %s", serverAddress)
	log.Fatal(http.ListenAndServe(serverAddress, router))
}

// sweepLoop гоняет сверку: сразу на старте, дальше по таймеру.
func sweepLoop(eng *engine.Engine, interval time.Duration) {
	log.Println("✅ Reconciliation sweep job started")

	runOnce(eng)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		runOnce(eng)
	}
}

func runOnce(eng *engine.Engine) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res := eng.RunSweep(ctx, time.Now().UTC())
	if len(res.Errors) > 0 {
		log.Printf("❌ Sweep %s finished with %d errors", res.RunID, len(res.Errors))
	}
}
