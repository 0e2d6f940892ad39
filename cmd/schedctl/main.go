// schedctl is the command line companion to the workplace scheduler: it
// bootstraps workplaces, manages worker records and hours of operation, and
// inspects or exports saved schedules. It talks to the cloud document store
// when credentials are configured and to the local data file otherwise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/workplace-scheduler/internal/config"
	"github.com/example/workplace-scheduler/internal/export"
	"github.com/example/workplace-scheduler/internal/gcp"
	"github.com/example/workplace-scheduler/internal/mapping"
	"github.com/example/workplace-scheduler/internal/models"
	"github.com/example/workplace-scheduler/internal/services"
	"github.com/example/workplace-scheduler/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "workers":
		err = runWorkers(os.Args[2:])
	case "hours":
		err = runHours(os.Args[2:])
	case "schedule":
		err = runSchedule(os.Args[2:])
	case "help", "-h", "--help":
		help()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		help()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func help() {
	fmt.Print(`Usage: schedctl <command> [flags]

Commands:
  init      Bootstrap the configured workplaces
  verify    Check store connectivity and workplace bootstrap state
  workers   List, add or delete worker records
  hours     Show or set hours of operation
  schedule  List saved schedules or export the latest as CSV

Run 'schedctl <command> -h' for command flags.
`)
}

// appEnv bundles what every command needs: the loaded config and an open
// store. close flushes and releases the store.
type appEnv struct {
	cfg   *config.Config
	store store.Store
	close func()
}

func setup(configPath string) (*appEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg)

	ctx := context.Background()
	if cfg.StoreAvailable() {
		client, err := gcp.NewFirestoreClientWithCredentials(ctx, cfg.ProjectID, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		st := store.NewFirestore(client)
		slog.Info("Using cloud document store.", "project", cfg.ProjectID)
		return &appEnv{cfg: cfg, store: st, close: func() { _ = st.Close() }}, nil
	}

	// No usable credentials; fall back to the local data file so the
	// application still works offline.
	mem := store.NewMemory()
	if err := mem.LoadFile(cfg.DataFile); err != nil {
		slog.Warn("Starting with an empty local store.", "dataFile", cfg.DataFile, "error", err)
	}
	slog.Warn("Cloud store unavailable; using local data file.", "dataFile", cfg.DataFile)
	closeFn := func() {
		if err := mem.SaveFile(cfg.DataFile); err != nil {
			slog.Error("Failed to save local data file.", "error", err)
		}
	}
	return &appEnv{cfg: cfg, store: mem, close: closeFn}, nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := context.Background()
	for _, workplace := range env.cfg.Workplaces {
		if res := services.EnsureWorkplace(ctx, env.store, workplace); !res.OK {
			return fmt.Errorf("failed to bootstrap workplace %s: %w", workplace, res.Err)
		} else if res.Created {
			fmt.Printf("Created workplace: %s\n", workplace)
		} else {
			fmt.Printf("Workplace exists: %s\n", workplace)
		}
		if res := services.EnsureWorkersCollection(ctx, env.store, workplace); !res.OK {
			return fmt.Errorf("failed to bootstrap workers collection for %s: %w", workplace, res.Err)
		}
	}
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := context.Background()
	manager := services.NewManager(env.store)
	failures := 0
	for _, workplace := range env.cfg.Workplaces {
		if err := manager.SetWorkplace(ctx, workplace); err != nil {
			fmt.Printf("FAIL  %s: %v\n", workplace, err)
			failures++
			continue
		}
		workers, err := manager.Workers(ctx, workplace)
		if err != nil {
			fmt.Printf("FAIL  %s: %v\n", workplace, err)
			failures++
			continue
		}
		fmt.Printf("OK    %s (%d workers)\n", workplace, len(workers))
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d workplaces failed verification", failures, len(env.cfg.Workplaces))
	}
	return nil
}

func runWorkers(args []string) error {
	fs := flag.NewFlagSet("workers", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	workplace := fs.String("workplace", "", "Workplace id or display name (required)")
	add := fs.Bool("add", false, "Add a worker")
	firstName := fs.String("first", "", "First name (with -add)")
	lastName := fs.String("last", "", "Last name (with -add)")
	email := fs.String("email", "", "Email (with -add or -delete-email)")
	workStudy := fs.Bool("work-study", false, "Work study eligibility (with -add)")
	availabilityText := fs.String("availability", "", "Availability text, e.g. 'Mon 9:00-17:00' (with -add)")
	deleteID := fs.String("delete", "", "Delete the worker with this document id")
	deleteEmail := fs.String("delete-email", "", "Delete the first worker with this email")
	purge := fs.Bool("purge", false, "Delete every worker record")
	fs.Parse(args)

	if *workplace == "" {
		fs.Usage()
		return fmt.Errorf("-workplace is required")
	}
	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := context.Background()
	manager := services.NewManager(env.store)

	switch {
	case *add:
		if *email == "" {
			return fmt.Errorf("-email is required for -add")
		}
		docID, err := manager.AddWorker(ctx, *workplace, map[string]any{
			mapping.KeyFirstName:        *firstName,
			mapping.KeyLastName:         *lastName,
			mapping.KeyEmail:            *email,
			mapping.KeyWorkStudy:        *workStudy,
			mapping.KeyAvailabilityText: *availabilityText,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added worker: %s\n", docID)
		return nil

	case *deleteID != "":
		if err := manager.DeleteWorker(ctx, *workplace, *deleteID); err != nil {
			return err
		}
		fmt.Printf("Deleted worker: %s\n", *deleteID)
		return nil

	case *deleteEmail != "":
		if err := manager.DeleteWorkerByEmail(ctx, *workplace, *deleteEmail); err != nil {
			return err
		}
		fmt.Printf("Deleted worker: %s\n", *deleteEmail)
		return nil

	case *purge:
		deleted, err := manager.RemoveAllWorkers(ctx, *workplace)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d documents\n", deleted)
		return nil

	default:
		workers, err := manager.Workers(ctx, *workplace)
		if err != nil {
			return err
		}
		return printJSON(workers)
	}
}

func runHours(args []string) error {
	fs := flag.NewFlagSet("hours", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	workplace := fs.String("workplace", "", "Workplace id or display name (required)")
	setFile := fs.String("set", "", "JSON file with hours to write, day -> [{start,end}]")
	fs.Parse(args)

	if *workplace == "" {
		fs.Usage()
		return fmt.Errorf("-workplace is required")
	}
	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := context.Background()
	manager := services.NewManager(env.store)

	if *setFile != "" {
		raw, err := os.ReadFile(*setFile)
		if err != nil {
			return fmt.Errorf("failed to read hours file: %w", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("failed to parse hours file %s: %w", *setFile, err)
		}
		hours := models.WeekHoursFromDoc(decoded)
		if err := manager.SetHours(ctx, *workplace, hours); err != nil {
			return err
		}
		fmt.Printf("Updated hours for %s\n", *workplace)
		return nil
	}

	hours, err := manager.Hours(ctx, *workplace)
	if err != nil {
		return err
	}
	return printJSON(hours)
}

func runSchedule(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	workplace := fs.String("workplace", "", "Workplace id or display name (required)")
	limit := fs.Int("limit", 10, "Maximum schedules to list, newest first")
	exportCSV := fs.Bool("export", false, "Export the newest schedule as CSV")
	fs.Parse(args)

	if *workplace == "" {
		fs.Usage()
		return fmt.Errorf("-workplace is required")
	}
	env, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := context.Background()
	manager := services.NewManager(env.store)

	if *exportCSV {
		schedules, err := manager.Schedules(ctx, *workplace, 1)
		if err != nil {
			return err
		}
		if len(schedules) == 0 {
			return fmt.Errorf("no schedules saved for %s", *workplace)
		}
		path, err := export.ScheduleCSV(env.cfg.SchedulesDir, mapping.NormalizeWorkplaceID(*workplace), schedules[0])
		if err != nil {
			return err
		}
		fmt.Printf("Exported %s\n", path)
		return nil
	}

	schedules, err := manager.Schedules(ctx, *workplace, *limit)
	if err != nil {
		return err
	}
	return printJSON(schedules)
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
