package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Marks long-expired no-bid listings as RECLAIMED in bulk. Normally the
// background reaper handles these one at a time; this exists for catching up
// after downtime.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	result, err := db.Exec(`
		UPDATE listings
		SET status = 'RECLAIMED', updated_at = NOW()
		WHERE status = 'ACTIVE'
		AND bid_count = 0
		AND end_time < NOW() - INTERVAL '1 day'
	`)
	if err != nil {
		log.Fatal("Failed to reclaim listings:", err)
	}

	rows, _ := result.RowsAffected()
	fmt.Printf("Reclaimed %d stale listings\n", rows)
}
