// ABOUTME: Entry point for the brokerdesk CLI, API server and MCP server
// ABOUTME: Loads config, opens the database and routes to the requested command
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/harperreed/brokerdesk/cli"
	"github.com/harperreed/brokerdesk/config"
	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/db"
	"github.com/harperreed/brokerdesk/desk"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

const version = "0.2.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/brokerdesk/config.yaml)")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/brokerdesk/brokerdesk.db)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("brokerdesk version %s\n", version)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	clock, err := dates.NewClock(cfg.Timezone)
	if err != nil {
		return err
	}

	database, err := db.OpenDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	logger.Debug("Opened database", "path", cfg.Database.Path)
	if *initOnly {
		fmt.Printf("✓ Database initialized at %s\n", cfg.Database.Path)
		return nil
	}

	d := desk.New(db.NewStore(database), desk.Options{
		Clock:    clock,
		Hours:    cfg.Hours,
		Defaults: cfg.DefaultSettings(),
		Logger:   logger,
	})
	defer func() { _ = d.Close() }()

	if err := d.Load(); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	syncer := crmsync.NewSyncer(d, crmsync.Options{
		Hours:          cfg.Hours,
		PipedriveProxy: cfg.Pipedrive.ProxyURL,
		RedtailBaseURL: cfg.Redtail.BaseURL,
		Timeout:        cfg.Sync.Timeout,
		Logger:         logger,
		Credentials:    cfg.Credentials(),
	})

	command, commandArgs := args[0], args[1:]

	switch command {
	case "serve":
		return cli.ServeCommand(context.Background(), cfg, d, syncer, logger)

	case "mcp":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return cli.MCPCommand(ctx, d, syncer, version, logger)

	case "sync":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return cli.SyncCommand(ctx, syncer, commandArgs)

	case "import-csv":
		return cli.ImportCSVCommand(syncer, commandArgs)

	// Schedule commands
	case "schedule":
		return cli.ScheduleCommand(d, commandArgs)
	case "book":
		return cli.BookCommand(d, commandArgs)
	case "edit-appt":
		return cli.EditAppointmentCommand(d, commandArgs)
	case "delete-appt":
		return cli.DeleteAppointmentCommand(d, commandArgs)

	// Client commands
	case "clients":
		return cli.ClientsCommand(d, commandArgs)
	case "overdue":
		return cli.OverdueCommand(d, commandArgs)
	case "add-client":
		return cli.AddClientCommand(d, commandArgs)
	case "delete-client":
		return cli.DeleteClientCommand(d, commandArgs)
	case "assign":
		return cli.AssignCommand(d, commandArgs)
	case "note":
		return cli.NoteCommand(d, commandArgs)
	case "notes":
		return cli.NotesCommand(d, commandArgs)

	// Data and settings commands
	case "export":
		return cli.ExportCommand(d, commandArgs)
	case "import":
		return cli.ImportCommand(d, commandArgs)
	case "settings":
		return cli.SettingsCommand(d, commandArgs)
	case "credentials":
		return cli.CredentialsCommand(d, commandArgs)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// newLogger writes leveled logs to stderr so stdout stays free for command
// output and the MCP stdio transport.
func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	}), nil
}

func printUsage() {
	fmt.Printf(`brokerdesk v%s - Broker scheduling and client follow-up desk

USAGE:
  brokerdesk [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/brokerdesk/config.yaml)
  --db-path <path>       Database path (default: ~/.local/share/brokerdesk/brokerdesk.db)
  --log-level <level>    debug, info, warn or error
  --init                 Initialize database and exit

SERVERS:
  brokerdesk serve          Serve the JSON API, calendar feed and scheduled syncs
  brokerdesk mcp            Start MCP server (for Claude Desktop integration)

SCHEDULE COMMANDS:
  brokerdesk schedule       Show the week grid
    --week <date>             Monday of the week (default: this week)
    --day <date>              Only show one day
    --all                     Include days without appointments

  brokerdesk book           Book an appointment
    --client <name>           Client name (required; unknown names create a client)
    --date <date>             Date YYYY-MM-DD (required)
    --start <time>            Start time, 13:30 or 13.5 (required)
    --broker <name>           Lane (default: the client's preferred broker)
    --duration <hours>        Duration in half-hour steps (default: 1)
    --notes <text>            Appointment notes

  brokerdesk edit-appt [flags] <id>   Change an appointment (same flags as book)
    Note: flags must come before the appointment ID

  brokerdesk delete-appt <id>         Delete an appointment

CLIENT COMMANDS:
  brokerdesk clients        List clients with last/next appointments
    --query <text>            Search by name, email or phone
    --broker <name>           Only clients preferring this broker
    --limit <n>               Max results (default: 50)

  brokerdesk overdue        List clients due for a follow-up
    --broker <name>           Only clients preferring this broker

  brokerdesk add-client     Add a client
    --name <name>             Client name (required)
    --phone, --email, --source
    --broker <a,b>            Brokers to assign

  brokerdesk delete-client --yes <id> [id...]   Delete clients with their appointments and notes
  brokerdesk assign --broker <name> <id> [id...] Add a broker to clients
  brokerdesk assign --clear <id> [id...]         Clear manual assignments

  brokerdesk note           Add a meeting note
    --client <name>           Client name (required)
    --note <text>             Note text (required)
    --broker, --follow-up, --next-steps

  brokerdesk notes --client <name>   Show a client's notes

SYNC COMMANDS:
  brokerdesk sync [pipedrive] [redtail]   Import from CRMs (default: both)
  brokerdesk import-csv <file|->          Merge clients from a CSV file
  brokerdesk credentials                  Set Redtail and Pipedrive credentials

DATA COMMANDS:
  brokerdesk export [--output <file>]     Write a JSON snapshot
  brokerdesk import <file|->              Restore the keys present in a snapshot
  brokerdesk settings                     Show settings and sync status
    --brokers <a,b,c>         Replace the broker list
    --threshold <days>        Set the overdue threshold

EXAMPLES:
  # Book a 90 minute review with the client's broker
  brokerdesk book --client "Dana Park" --date 2026-10-20 --start 13:30 --duration 1.5

  # Pull contacts and activities from Pipedrive
  brokerdesk sync pipedrive

  # Serve the API on the configured port
  brokerdesk serve

`, version)
}
