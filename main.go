package main

import (
	"context"
	"fmt"
	"os"

	"goetl/adapters/tabular"
	"goetl/app"
	"goetl/internal"
	"goetl/internal/config"
	"goetl/internal/errors"
)

// Runs the listings ETL with paths and options taken from the environment
// (or .env), defaulting to AB_NYC_2019.csv -> processed_data.csv.
func main() {
	config.LoadDotenv()

	appConfig, err := config.Load()
	if err != nil {
		app.ReportFailure(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}

	logger := internal.NewLogger(appConfig.Logging.Level)
	service := app.NewETLService(
		tabular.NewDataReader(logger),
		tabular.NewDataWriter(logger),
		appConfig.Preprocess,
		logger,
	)

	manifest, err := service.Run(context.Background(), app.Paths{
		Input:  appConfig.Paths.InputPath,
		Output: appConfig.Paths.OutputPath,
	})
	if appConfig.Paths.ManifestPath != "" && manifest != nil {
		if werr := app.WriteManifest(manifest, appConfig.Paths.ManifestPath); werr != nil {
			logger.Warn("failed to write manifest: %v", werr)
		}
	}
	if err != nil {
		app.ReportFailure(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}

	fmt.Println("ETL process completed successfully!")
}
