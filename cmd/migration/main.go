package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fadedpez/cccounter/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
)

const defaultDBPath = "data/cccounter.db"

func main() {
	createCmd := flag.NewFlagSet("create", flag.ExitOnError)
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	createDir := createCmd.String("dir", "pkg/db/migrations/sql", "Directory to store migrations")

	// An empty -dir applies the migrations compiled into the binary
	migrateDB := migrateCmd.String("db", defaultDBPath, "Path to SQLite database")
	migrateDir := migrateCmd.String("dir", "", "Directory containing migrations")

	statusDB := statusCmd.String("db", defaultDBPath, "Path to SQLite database")
	statusDir := statusCmd.String("dir", "", "Directory containing migrations")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		createCmd.Parse(os.Args[2:])
		if createCmd.NArg() < 1 {
			fmt.Println("Error: Missing migration description")
			createCmd.Usage()
			os.Exit(1)
		}
		createNewMigration(*createDir, createCmd.Arg(0))

	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		applyMigrations(*migrateDB, *migrateDir)

	case "status":
		statusCmd.Parse(os.Args[2:])
		showStatus(*statusDB, *statusDir)

	case "help":
		printUsage()

	default:
		fmt.Printf("Error: Unknown command '%s'\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migration create DESCRIPTION  - Create a new migration")
	fmt.Println("  go run ./cmd/migration migrate             - Apply pending migrations")
	fmt.Println("  go run ./cmd/migration status              - List applied and pending migrations")
	fmt.Println("  go run ./cmd/migration help                - Show this help")
	fmt.Println("\nExamples:")
	fmt.Println("  go run ./cmd/migration create \"add round notes\"")
	fmt.Println("  go run ./cmd/migration migrate -db data/cccounter.db")
}

func openDB(dbPath string) *sql.DB {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	return db
}

func newMigrator(db *sql.DB, dir string) *migrations.Migrator {
	if dir == "" {
		return migrations.NewEmbeddedMigrator(db)
	}
	return migrations.NewMigrator(db, dir)
}

func createNewMigration(migrationsDir, description string) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	filePath, err := migrations.NewMigrator(db, migrationsDir).CreateMigration(description)
	if err != nil {
		log.Fatalf("Error creating migration: %v", err)
	}
	addSQLiteExamples(filePath)

	fmt.Printf("Created migration file: %s\n", filePath)
	fmt.Println("Edit this file, then rebuild so the bot picks it up.")
}

func addSQLiteExamples(filePath string) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("Error reading migration file: %v", err)
	}

	examples := `
-- SQLite Examples:

-- Add a column to the round log
-- ALTER TABLE rounds ADD COLUMN note TEXT;

-- Index a lookup column
-- CREATE INDEX IF NOT EXISTS idx_rounds_column ON rounds(column_name);

-- Your migration SQL goes below this line:

`
	if err := os.WriteFile(filePath, append(content, examples...), 0644); err != nil {
		log.Fatalf("Error writing to migration file: %v", err)
	}
}

func applyMigrations(dbPath, migrationsDir string) {
	db := openDB(dbPath)
	defer db.Close()

	if err := newMigrator(db, migrationsDir).MigrateUp(); err != nil {
		log.Fatalf("Error applying migrations: %v", err)
	}
	fmt.Println("Migrations applied successfully!")
}

func showStatus(dbPath, migrationsDir string) {
	db := openDB(dbPath)
	defer db.Close()

	migrator := newMigrator(db, migrationsDir)
	if err := migrator.Initialize(); err != nil {
		log.Fatalf("Error initializing migrations table: %v", err)
	}
	applied, err := migrator.GetAppliedMigrations()
	if err != nil {
		log.Fatalf("Error reading applied migrations: %v", err)
	}
	all, err := migrator.LoadMigrations()
	if err != nil {
		log.Fatalf("Error loading migrations: %v", err)
	}

	for _, m := range all {
		state := "pending"
		if applied[m.Version] {
			state = "applied"
		}
		fmt.Printf("%-8s %s %s\n", state, m.Version, m.Description)
	}
}
