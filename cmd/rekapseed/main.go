// cmd/rekapseed loads classes, dormitories, courses, students and admin
// profiles from a YAML fixture into the configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/rekaphub/internal/app/bootstrap"
	"github.com/dalemusser/rekaphub/internal/app/seed"
	"go.uber.org/zap"
)

func main() {
	backendFlag := flag.String("backend", envOr("REKAPHUB_BACKEND", bootstrap.BackendMongo), "Storage backend: mongo or postgres")
	mongoURI := flag.String("mongo-uri", envOr("REKAPHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	mongoDB := flag.String("mongo-db", envOr("REKAPHUB_MONGO_DATABASE", "rekaphub"), "MongoDB database name")
	pgDSN := flag.String("postgres-dsn", os.Getenv("REKAPHUB_POSTGRES_DSN"), "PostgreSQL DSN")
	file := flag.String("file", "seed.yaml", "Fixture file")
	dryRun := flag.Bool("dry-run", false, "Validate the fixture without writing")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(*backendFlag, *mongoURI, *mongoDB, *pgDSN, *file, *dryRun, logger); err != nil {
		logger.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(kind, mongoURI, mongoDB, pgDSN, file string, dryRun bool, logger *zap.Logger) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	fx, err := seed.Parse(f)
	if err != nil {
		return err
	}
	if err := fx.Validate(); err != nil {
		return err
	}
	if dryRun {
		logger.Info("fixture is valid", zap.String("file", file),
			zap.Int("students", len(fx.Students)), zap.Int("profiles", len(fx.Profiles)))
		return nil
	}
	if kind == bootstrap.BackendMemory {
		return fmt.Errorf("backend %q does not persist; choose mongo or postgres", kind)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := bootstrap.AppConfig{
		Backend:       kind,
		MongoURI:      mongoURI,
		MongoDatabase: mongoDB,
		PostgresDSN:   pgDSN,
		AutoMigrate:   true,
	}
	deps, err := bootstrap.ConnectDB(ctx, nil, appCfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Backend.Close(context.Background()) }()
	if err := bootstrap.EnsureSchema(ctx, nil, appCfg, deps, logger); err != nil {
		return err
	}

	sum, err := seed.NewLoader(deps.Backend, logger).Apply(ctx, fx)
	if err != nil {
		return err
	}
	fmt.Printf("created %d classes, %d dormitories, %d courses, %d students, %d profiles (%d skipped)\n",
		sum.Classes, sum.Dormitories, sum.Courses, sum.Students, sum.Profiles, sum.Skipped)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
