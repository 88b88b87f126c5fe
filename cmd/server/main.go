package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	_ "modernc.org/sqlite"

	"frontdesk/internal/adapters/email"
	web "frontdesk/internal/adapters/http"
	"frontdesk/internal/adapters/http/perf"
	"frontdesk/internal/adapters/qr"
	"frontdesk/internal/adapters/sheets"
	"frontdesk/internal/adapters/storage"
	attendanceStore "frontdesk/internal/adapters/storage/attendance"
	memberStore "frontdesk/internal/adapters/storage/member"
	paymentStore "frontdesk/internal/adapters/storage/payment"
	"frontdesk/internal/application/orchestrators"
	"frontdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	flags := pflag.NewFlagSet("frontdesk", pflag.ExitOnError)
	configPath := flags.String("config", os.Getenv("GYM_CONFIG"), "path to a YAML config file")
	showVersion := flags.Bool("version", false, "print the version and exit")
	_ = flags.Parse(os.Args[1:])
	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := setupLogging(cfg); err != nil {
		log.Fatalf("logging: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}

	// Performance instrumentation: every sheet operation is timed into the collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	wb, closeWB, err := openWorkbook(cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer closeWB()
	timed := sheets.Timed(wb, collector, cfg.Log.SlowSheetMs)

	stores := &web.Stores{
		MemberStore:     memberStore.NewSheetStore(timed),
		PaymentStore:    paymentStore.NewSheetStore(timed),
		AttendanceStore: attendanceStore.NewSheetStore(timed),
	}
	ctx := context.Background()
	if err := stores.MemberStore.EnsureSheet(ctx); err != nil {
		log.Fatalf("failed to prepare Members sheet: %v", err)
	}
	if err := stores.PaymentStore.EnsureSheet(ctx); err != nil {
		log.Fatalf("failed to prepare Payments sheet: %v", err)
	}

	issuer, err := qr.NewIssuer(cfg.QRDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("failed to prepare QR directory: %v", err)
	}
	if _, err := issuer.IssueMaster(); err != nil {
		log.Fatalf("failed to issue desk QR: %v", err)
	}

	// Configure payment notifications
	var notify *orchestrators.NotifyPaymentDeps
	if len(cfg.Email.NotifyTo) > 0 {
		notify = &orchestrators.NotifyPaymentDeps{
			Sender: email.NewSender(cfg.Email.ResendKey, cfg.Email.From),
			To:     cfg.Email.NotifyTo,
		}
		if cfg.Email.ResendKey == "" {
			slog.Warn("email_config", "event", "noop_sender", "reason", "email.resend_key is not set")
		}
	}

	creds, err := orchestrators.NewAdminCredentials(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatalf("admin credentials: %v", err)
	}

	// Seed demo members for development only
	if !cfg.IsProduction() {
		seedDeps := orchestrators.SeedDemoDeps{
			Register: orchestrators.RegisterMemberDeps{
				MemberStore:  stores.MemberStore,
				PaymentStore: stores.PaymentStore,
				QRIssuer:     issuer,
			},
			Now: func() time.Time { return time.Now().In(loc) },
		}
		n, err := orchestrators.ExecuteSeedDemo(ctx, seedDeps)
		if err != nil {
			log.Fatalf("failed to seed demo members: %v", err)
		}
		if n > 0 {
			log.Printf("Demo members seeded: %d (dev mode)", n)
		}
	}

	mux := web.NewMux(stores, web.Options{
		StaticDir:          cfg.StaticDir,
		TemplatesDir:       cfg.TemplatesDir,
		QRIssuer:           issuer,
		Credentials:        creds,
		APIToken:           cfg.APIToken,
		CSRFKey:            cfg.CSRFKey,
		Production:         cfg.IsProduction(),
		CORSOrigins:        cfg.CORSOrigins,
		Notice:             cfg.Notice,
		Notify:             notify,
		Location:           loc,
		RecentPayments:     cfg.RecentPayments,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitPerHour:   cfg.RateLimitPerHour,
		RateLimitPerDay:    cfg.RateLimitPerDay,
		SlowRequestMs:      cfg.Log.SlowRequestMs,
		Backend:            cfg.Store.Backend,
		Version:            version,
	}, collector)

	log.Printf("Front desk %s starting on %s (env=%s, backend=%s, schema=%d)",
		version, cfg.Addr, cfg.Env, cfg.Store.Backend, storage.LatestSchemaVersion())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupLogging installs the configured slog handler as the default logger.
func setupLogging(cfg config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// openWorkbook opens the configured backend. The returned func releases it.
func openWorkbook(cfg config.Config) (sheets.Workbook, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, nil, err
		}
		db, err := sql.Open("sqlite", storage.DSN(cfg.Store.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		// Connection pool settings for WAL mode
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("database unreachable: %w", err)
		}
		if err := storage.InitDB(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Printf("SQLite workbook ready at %s", cfg.Store.SQLitePath)
		return sheets.NewSQLiteWorkbook(db), func() { db.Close() }, nil
	default:
		wb, err := sheets.OpenXLSX(cfg.Store.WorkbookPath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Workbook ready at %s", wb.Path())
		return wb, func() {
			if err := wb.Close(); err != nil {
				slog.Error("workbook_close_failed", "error", err.Error())
			}
		}, nil
	}
}
