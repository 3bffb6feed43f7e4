// Command seed prepares a development database: it applies the schema and,
// unless told otherwise, inserts sample registrations for the image pipeline.
package main

import (
	"flag"
	"io"
	"os"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/pkg/database"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
)

type options struct {
	migrateOnly bool
	logLevel    string
}

func parseOptions(args []string, defaultLevel string, output io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.BoolVar(&opts.migrateOnly, "migrate-only", false, "apply the schema without inserting sample registrations")
	fs.StringVar(&opts.logLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	return opts, nil
}

func main() {
	cfg := environments.Load()

	opts, err := parseOptions(os.Args[1:], cfg.Server.LogLevel, os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logger.Init(opts.logLevel)

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	if opts.migrateOnly {
		logger.Infof("Schema applied, skipping sample registrations")
		return
	}

	if err := database.SeedTestData(db); err != nil {
		logger.Fatalf("Failed to seed test data: %v", err)
	}

	logger.Infof("Seed completed for database %s", cfg.Database.DBName)
}
