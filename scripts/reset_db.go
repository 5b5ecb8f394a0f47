package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Development helper: wipes all workflow data so a test cycle can start from
// a clean ledger. Admin users are kept.
func main() {
	fmt.Println("========================================")
	fmt.Println("   Reset Database for Testing")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("WARNING: This will DELETE ALL TENANT AND PAYMENT DATA!")
	fmt.Println()
	fmt.Println("This will:")
	fmt.Println("  - Delete all payment submissions")
	fmt.Println("  - Delete all payment records")
	fmt.Println("  - Delete all tenant credits")
	fmt.Println("  - Delete all leases")
	fmt.Println("  - Delete all SMS and reminder logs")
	fmt.Println("  - Delete all non-admin users")
	fmt.Println("  - Reset all ID sequences")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	godotenv.Load()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "rental_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	statements := []string{
		"DELETE FROM reminder_logs",
		"DELETE FROM sms_logs",
		"DELETE FROM tenant_credits",
		"DELETE FROM payment_submissions",
		"DELETE FROM payment_records",
		"DELETE FROM leases",
		"DELETE FROM users WHERE role != 'admin'",
		"ALTER SEQUENCE payment_submissions_id_seq RESTART WITH 1",
		"ALTER SEQUENCE payment_records_id_seq RESTART WITH 1",
		"ALTER SEQUENCE tenant_credits_id_seq RESTART WITH 1",
		"ALTER SEQUENCE leases_id_seq RESTART WITH 1",
		"ALTER SEQUENCE sms_logs_id_seq RESTART WITH 1",
		"ALTER SEQUENCE reminder_logs_id_seq RESTART WITH 1",
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Printf("  warning: %s failed: %v", stmt, err)
			continue
		}
		fmt.Printf("  ok: %s\n", stmt)
	}

	fmt.Println()
	fmt.Println("Database reset complete.")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
