package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fredricj/SingleCellProteogenomics/adapters/api"
	"github.com/fredricj/SingleCellProteogenomics/adapters/postgres"
	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if !cfg.Database.Enabled {
		fmt.Fprintln(os.Stderr, "DATABASE_URL must be set to serve results")
		os.Exit(2)
	}
	logger := internal.NewDefaultLogger()

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "database:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := api.NewApp(api.Config{Addr: ":" + cfg.Server.Port}, postgres.NewResultsRepository(db), logger)
	if err := app.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}
