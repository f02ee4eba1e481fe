package main

import (
	"context"
	"log"

	"portfolio-chat-be/internal/bootstrap"
	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/server"
	"portfolio-chat-be/internal/tracer"
	"portfolio-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Analytics Recorder...")
		if err := container.RecorderService.Consume(context.Background()); err != nil {
			log.Printf("Background Recorder Error: %v", err)
		}
	}()

	// 5. Build the knowledge index before accepting traffic would delay
	// startup on slow embedding backends, so it runs in the background and
	// the chat endpoint returns 503 until the first build lands.
	go func() {
		log.Println("Background: Building knowledge index...")
		if _, err := container.IndexService.Rebuild(context.Background()); err != nil {
			log.Printf("Background Index Error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
