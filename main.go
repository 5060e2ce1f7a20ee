package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/roomtrace-data/floorplan.report/internal/db"
	"github.com/roomtrace-data/floorplan.report/internal/headingmux"
	"github.com/roomtrace-data/floorplan.report/internal/scan"
	"github.com/roomtrace-data/floorplan.report/internal/scan/importer"
	"github.com/roomtrace-data/floorplan.report/internal/scan/monitor"
	"github.com/roomtrace-data/floorplan.report/internal/scan/network"
	"github.com/roomtrace-data/floorplan.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "HTTP listen address")
	scanListen = flag.String("scan-listen", ":9040", "UDP listen address for the scan feed")
	dbPath     = flag.String("db", "floorplan.db", "Path to the SQLite database (empty disables persistence)")
	compass    = flag.String("compass", "", "Compass source: serial device path, 'mock', or empty to disable")
	replayFile = flag.String("replay", "", "Capture JSON file to load at startup")
	pcapFile   = flag.String("pcap", "", "PCAP file of scan feed traffic to replay (requires -tags=pcap build)")
	devMode    = flag.Bool("dev", false, "Run in dev mode (implies -compass=mock when unset)")
)

// persistInterval is how often session metadata and new trail samples are
// flushed to the database.
const persistInterval = 30 * time.Second

func main() {
	flag.Parse()

	// `floorplan-report migrate <up|down|status|force N>` manages the schema
	// without starting the service.
	if args := flag.Args(); len(args) > 0 && args[0] == "migrate" {
		runMigrateCommand(args[1:], *dbPath)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if *devMode && *compass == "" {
		*compass = "mock"
	}

	var database *db.DB
	if *dbPath != "" {
		var err error
		database, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()
	}

	log.Printf("floorplan-report %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	session := scan.NewSession()
	if database != nil {
		if err := database.InsertSession(session.ID(), session.StartedAt()); err != nil {
			log.Printf("Failed to record session start: %v", err)
		}
	}
	log.Printf("Scan session %s started", session.ID())

	compassMux, err := headingmux.New(*compass)
	if err != nil {
		log.Fatalf("Failed to open compass source %q: %v", *compass, err)
	}
	defer compassMux.Close()

	if *replayFile != "" {
		snap, err := importer.Load(*replayFile)
		if err != nil {
			log.Fatalf("Failed to load capture file: %v", err)
		}
		session.ApplySnapshot(snap)
		log.Printf("Loaded capture %s: %d surfaces, %d objects",
			*replayFile, len(snap.Surfaces), len(snap.Objects))
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feedStats := network.NewFeedStats()
	listener := network.NewSnapshotListener(network.SnapshotListenerConfig{
		Address: *scanListen,
		Sink:    session,
		Stats:   feedStats,
	})

	// UDP scan feed
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Scan feed listener error: %v", err)
		}
		log.Print("scan feed routine terminated")
	}()

	// Compass monitor and heading feed
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := compassMux.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("Compass monitor error: %v", err)
		}
		log.Print("compass monitor routine terminated")
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		headingmux.Feed(ctx, compassMux, session, log.Printf)
		log.Print("compass feed routine terminated")
	}()

	// Optional PCAP replay of recorded feed traffic
	if *pcapFile != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := network.ReplayPCAPFile(ctx, *pcapFile, portOf(*scanListen), session, feedStats); err != nil && err != context.Canceled {
				log.Printf("PCAP replay error: %v", err)
			}
		}()
	}

	// Periodic persistence of session metadata and trail samples
	if database != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			persistLoop(ctx, database, session)
		}()
	}

	// HTTP monitor
	webServer := monitor.NewWebServer(monitor.WebServerConfig{
		Address:  *listen,
		Session:  session,
		DB:       database,
		FeedPort: portOf(*scanListen),
		Compass:  *compass,
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := webServer.Start(ctx); err != nil {
			log.Printf("Web server error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// persistLoop flushes session counters and newly accepted trail samples on a
// fixed interval, and once more at shutdown.
func persistLoop(ctx context.Context, database *db.DB, session *scan.Session) {
	ticker := time.NewTicker(persistInterval)
	defer ticker.Stop()

	var lastPersisted time.Time
	flush := func() {
		stats := session.Stats()
		if err := database.TouchSession(session.ID(), stats.Updates); err != nil {
			log.Printf("Failed to update session row: %v", err)
		}

		var rows []db.TrailSampleRow
		for _, s := range session.TrailSamples() {
			if !s.At.After(lastPersisted) {
				continue
			}
			rows = append(rows, db.TrailSampleRow{X: s.Pos.X, Y: s.Pos.Y, RecordedAt: s.At})
			lastPersisted = s.At
		}
		if err := database.InsertTrailSamples(session.ID(), rows); err != nil {
			log.Printf("Failed to persist trail samples: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-ticker.C:
			flush()
		}
	}
}

// runMigrateCommand handles the 'migrate' subcommand.
func runMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		log.Fatal("Usage: floorplan-report migrate <up|down|status|force VERSION>")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	switch args[0] {
	case "up":
		if err := database.MigrateUp(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Print("Migrations applied")

	case "down":
		if err := database.MigrateDown(); err != nil {
			log.Fatalf("Migration rollback failed: %v", err)
		}
		log.Print("Rolled back one migration")

	case "status":
		version, dirty, err := database.MigrateVersion()
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		log.Printf("Schema version %d (dirty=%v)", version, dirty)

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: floorplan-report migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version %q: %v", args[1], err)
		}
		if err := database.MigrateForce(version); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("Schema version forced to %d", version)

	default:
		log.Fatalf("Unknown migrate action %q", args[0])
	}
}

// portOf extracts the numeric port from a listen address, or 0 when it
// cannot be determined.
func portOf(address string) int {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
