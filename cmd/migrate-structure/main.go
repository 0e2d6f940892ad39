// migrate-structure is a one-shot tool that copies workplace data from the
// legacy flat layout (one top-level collection per workplace) into the
// nested workplaces/{id}/... layout. Flat documents are left in place, so
// the tool is safe to re-run.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/example/workplace-scheduler/internal/gcp"
	"github.com/example/workplace-scheduler/internal/services"
	"github.com/example/workplace-scheduler/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	projectID := flag.String("project", gcp.GetEnv("SCHEDULER_PROJECT_ID", ""), "Document store project id")
	credentials := flag.String("credentials", gcp.GetEnv("SCHEDULER_CREDENTIALS_FILE", "firebase-credentials.json"), "Service account key file")
	workplaces := flag.String("workplaces", "esports_lounge,esports_arena,it_service_center", "Comma-separated workplace ids to migrate")
	flag.Parse()

	if *projectID == "" {
		slog.Error("A project id is required. Set -project or SCHEDULER_PROJECT_ID.")
		os.Exit(1)
	}
	var ids []string
	for _, id := range strings.Split(*workplaces, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		slog.Error("No workplaces to migrate.")
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := gcp.NewFirestoreClientWithCredentials(ctx, *projectID, *credentials)
	if err != nil {
		slog.Error("Failed to connect to document store.", "error", err)
		os.Exit(1)
	}
	st := store.NewFirestore(client)
	defer st.Close()

	slog.Info("Starting structure migration.", "workplaces", ids)
	if err := services.MigrateAll(ctx, st, ids); err != nil {
		slog.Error("Migration failed.", "error", err)
		os.Exit(1)
	}
	slog.Info("Migration completed successfully.")
}
