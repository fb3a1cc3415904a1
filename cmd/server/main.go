// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jmcgill/statclash/internal/auth"
	"github.com/jmcgill/statclash/internal/catalog"
	"github.com/jmcgill/statclash/internal/database"
	"github.com/jmcgill/statclash/internal/handlers"
	"github.com/jmcgill/statclash/internal/middleware"
)

func main() {
	auth.Init()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cat := loadCatalog(logger)
	logger.Infof("catalog loaded with %d cards", cat.Size())

	gw := handlers.NewSessionGateway(logger, cat.Partition, os.Getenv("DEFAULT_ROOM_KEY"))
	srv := handlers.NewRoomServer(logger, gw)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.PingHandler)
	mux.Handle("/rooms", middleware.LogMiddleware(logger)(handlers.ListRoomsHandler(gw)))
	mux.Handle("/duel/ws", middleware.LogMiddleware(logger)(srv.WSHandler()))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// loadCatalog picks the card source: Postgres when CATALOG_SOURCE=postgres, a
// JSON file when CATALOG_PATH is set, the embedded default otherwise.
func loadCatalog(logger *logrus.Logger) *catalog.Catalog {
	switch {
	case os.Getenv("CATALOG_SOURCE") == "postgres":
		ctx := context.Background()
		pool, err := database.Connect(ctx)
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		cat, err := catalog.LoadPostgres(ctx, pool)
		if err != nil {
			logger.Fatalf("failed to load catalog from postgres: %v", err)
		}
		return cat
	case os.Getenv("CATALOG_PATH") != "":
		cat, err := catalog.Load(os.Getenv("CATALOG_PATH"))
		if err != nil {
			logger.Fatalf("failed to load catalog from %s: %v", os.Getenv("CATALOG_PATH"), err)
		}
		return cat
	default:
		cat, err := catalog.Default()
		if err != nil {
			logger.Fatalf("failed to load embedded catalog: %v", err)
		}
		return cat
	}
}
