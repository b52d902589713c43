package main

import (
	"log"
	"net/http"
	"os"

	"bingo-nights/internal/config"
	"bingo-nights/internal/db"
	"bingo-nights/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var store server.Store
	if os.Getenv("DATABASE_URL") != "" {
		conn, err := db.Open()
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		if err := db.Tune(conn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeSeconds, cfg.DBConnMaxIdleTimeSeconds); err != nil {
			log.Fatalf("database pool setup failed: %v", err)
		}
		store = server.NewGormStore(conn)
	} else {
		log.Println("DATABASE_URL not set, using in-memory store")
		store = server.NewMemStore()
	}

	srv := server.New(store, cfg)
	log.Printf("bingo-nights server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
