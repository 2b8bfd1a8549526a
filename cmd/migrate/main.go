package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"naebak-messaging/config"
	"naebak-messaging/pkg/database"
)

const usage = `
Naebak Messaging - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM auto-migrations
  status      Show database connection and table status

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch flag.Arg(0) {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("Running migrations...")
	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed")
}

func showStatus() {
	if err := database.Ping(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{
		"profiles",
		"conversations",
		"messages",
		"message_reports",
		"notifications",
		"daily_statistics",
		"outbox_events",
	}
	for _, table := range tables {
		if !database.TableExists(table) {
			log.Printf("Table %-20s does not exist", table)
			continue
		}
		count, err := database.TableCount(table)
		if err != nil {
			log.Printf("Table %-20s exists (count failed: %v)", table, err)
			continue
		}
		log.Printf("Table %-20s exists (%d rows)", table, count)
	}
}
