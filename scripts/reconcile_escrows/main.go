package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Cross-checks counted escrow balances against the sums implied by their
// listings, transactions and unclaimed credits, and reports any drift.
// Read-only; intended to run against production before and after deploys.
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

	fmt.Println("Connected to database")

	// Escrows whose balance cannot cover the pending obligations against them
	rows, err := db.Query(`
		SELECT e.listing_id, e.balance,
			COALESCE((SELECT SUM(w.amount) FROM withdrawal_credits w
				WHERE w.listing_id = e.listing_id AND w.claimed = false), 0) AS owed_credits,
			COALESCE((SELECT t.sale_price FROM sale_transactions t
				WHERE t.listing_id = e.listing_id AND t.status IN ('IN_ESCROW', 'DISPUTED')), 0) AS held_sale
		FROM escrows e
	`)
	if err != nil {
		log.Fatal("Failed to query escrows:", err)
	}
	defer rows.Close()

	checked := 0
	drifted := 0

	for rows.Next() {
		var listingID, balance, owedCredits, heldSale int64
		if err := rows.Scan(&listingID, &balance, &owedCredits, &heldSale); err != nil {
			log.Fatal("Failed to scan row:", err)
		}
		checked++

		obligations := owedCredits + heldSale
		if balance < obligations {
			drifted++
			fmt.Printf("DRIFT listing %d: balance %d < obligations %d (credits %d, held sale %d)\n",
				listingID, balance, obligations, owedCredits, heldSale)
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatal("Row iteration failed:", err)
	}

	// Sold listings that never got a sale transaction
	var orphaned int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM listings l
		WHERE l.status = 'SOLD'
		AND NOT EXISTS (SELECT 1 FROM sale_transactions t WHERE t.listing_id = l.listing_id)
	`).Scan(&orphaned)
	if err != nil {
		log.Fatal("Failed to count orphaned listings:", err)
	}

	fmt.Printf("\nChecked %d escrows: %d underfunded, %d sold listings without a transaction\n",
		checked, drifted, orphaned)

	if drifted == 0 && orphaned == 0 {
		fmt.Println("All escrow balances reconcile")
	}
}
