package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/projectdocumentflow/internal/config"
	"github.com/Lllllllleong/projectdocumentflow/internal/logging"
	"github.com/Lllllllleong/projectdocumentflow/internal/services"
	"github.com/Lllllllleong/projectdocumentflow/internal/telemetry"
)

const serviceName = "document-generator"

var (
	generator *services.Generator
	once      sync.Once
	initErr   error
)

func init() {
	slog.SetDefault(logging.New(serviceName, os.Getenv("LOG_LEVEL")))

	// Pub/Sub push subscriptions call the HTTP entry point; Eventarc triggers
	// call the CloudEvent one.
	functions.HTTP("HandleProjectEvent", handleProjectEvent)
	functions.CloudEvent("HandleProjectCloudEvent", handleProjectCloudEvent)
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
		// The tracer provider lives as long as the instance.
		if _, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry); err != nil {
			slog.Warn("Tracing disabled", "error", err)
		}
		generator, initErr = services.NewGenerator(ctx, cfg, slog.Default())
	})
	return initErr
}

func handleProjectEvent(w http.ResponseWriter, r *http.Request) {
	if err := setup(); err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	services.DocumentHandler(generator.Pipeline).ServeHTTP(w, r)
}

func handleProjectCloudEvent(ctx context.Context, e cloudevents.Event) error {
	if err := setup(); err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		return err
	}
	return services.HandleCloudEvent(ctx, generator.Pipeline, e)
}
