package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/projectdocumentflow/internal/config"
	"github.com/Lllllllleong/projectdocumentflow/internal/logging"
	"github.com/Lllllllleong/projectdocumentflow/internal/services"
	"github.com/Lllllllleong/projectdocumentflow/internal/telemetry"
)

const serviceName = "report-generator"

var (
	generator *services.Generator
	once      sync.Once
	initErr   error
)

func init() {
	slog.SetDefault(logging.New(serviceName, os.Getenv("LOG_LEVEL")))
	functions.HTTP("HandleProjectsReport", handleProjectsReport)
}

// main is required by the Go Functions Framework.
func main() {}

func setup() error {
	once.Do(func() {
		ctx := context.Background()
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		if _, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry); err != nil {
			slog.Warn("Tracing disabled", "error", err)
		}
		generator, initErr = services.NewGenerator(ctx, cfg, slog.Default())
	})
	return initErr
}

// handleProjectsReport returns every project as one DOCX download.
func handleProjectsReport(w http.ResponseWriter, r *http.Request) {
	if err := setup(); err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	services.ReportHandler(generator.Pipeline).ServeHTTP(w, r)
}
