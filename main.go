package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dbupgrade-config-go/config"
	"dbupgrade-config-go/dtos/postgres"
	"dbupgrade-config-go/logger"
)

func main() {
	// Define flags
	db := flag.String("db", "", "Name of the database pair")
	dc := flag.String("dc", "", "Name of the environment the pair lives in")
	logLevel := flag.String("log_level", "info", "Minimum log level")
	logFile := flag.String("log_file", "", "Also write logs to this file")

	// Parse the flags
	flag.Parse()

	logger.Initialize(logger.Config{
		LogToFile:   *logFile != "",
		LogFilePath: *logFile,
		LogLevel:    *logLevel,
	})
	// Ensure logs are flushed on exit
	defer logger.Sync()

	if *db == "" || *dc == "" {
		logger.Sugar.Error("Both -db and -dc are required")
		os.Exit(2)
	}

	// Create a cancellable context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.For(*db, *dc, "config")
	cfg, err := config.Load(ctx, log, *db, *dc)
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if cfg == nil {
		log.Infow("Nothing cached for this pair", "file", config.ConfigFile(*db, *dc))
		return
	}

	log.Infow("Loaded config",
		"file", cfg.File(),
		"schema", cfg.SchemaName,
		"src", describe(cfg.Src),
		"dst", describe(cfg.Dst),
		"tables_filtered", cfg.Tables != nil,
		"sequences_filtered", cfg.Sequences != nil,
	)
}

// describe renders an instance without credentials
func describe(db *postgres.DbConfig) string {
	if db == nil {
		return "<unset>"
	}
	return db.Host + " (" + db.IP + ":" + db.Port + "/" + db.Db + ")"
}
