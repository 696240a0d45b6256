package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/akozyrev/leadwell/internal/audit"
	"github.com/akozyrev/leadwell/internal/auth"
	"github.com/akozyrev/leadwell/internal/config"
	"github.com/akozyrev/leadwell/internal/conversion"
	"github.com/akozyrev/leadwell/internal/deal"
	dealStore "github.com/akozyrev/leadwell/internal/deal/store"
	leadwellHttp "github.com/akozyrev/leadwell/internal/http"
	authHandler "github.com/akozyrev/leadwell/internal/http/auth"
	dealHandler "github.com/akozyrev/leadwell/internal/http/deal"
	leadHandler "github.com/akozyrev/leadwell/internal/http/lead"
	userHandler "github.com/akozyrev/leadwell/internal/http/user"
	"github.com/akozyrev/leadwell/internal/importer"
	"github.com/akozyrev/leadwell/internal/lead"
	leadStore "github.com/akozyrev/leadwell/internal/lead/store"
	"github.com/akozyrev/leadwell/internal/permission"
	"github.com/akozyrev/leadwell/internal/seed"
	userStore "github.com/akozyrev/leadwell/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	auditLog, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		slog.Error("failed to open audit log", "error", err)
		os.Exit(1)
	}
	defer auditLog.Close()

	var (
		leads = leadStore.New()
		deals = dealStore.New()
		users = userStore.New()
	)

	// Stores are in-memory, so every start begins from the demo dataset.
	seeded, err := seed.Load(context.Background(), users, leads)
	if err != nil {
		slog.Error("failed to seed demo data", "error", err)
		os.Exit(1)
	}
	slog.Info("seeded demo data", "admin", seeded.Admin.Email.String(), "leads", len(seeded.Leads))

	var (
		leadService       = lead.NewService(leads)
		dealService       = deal.NewService(deals)
		conversionService = conversion.NewService(leads, deals)
		authService       = auth.NewService(users, cfg.Auth.Secret, cfg.App.Name, cfg.Auth.TokenTTL)
		perms             = permission.NewManager()
	)

	var (
		authH = authHandler.NewHandler(authService)
		leadH = leadHandler.NewHandler(leadService, conversionService, importer.NewParser(), perms, auditLog)
		dealH = dealHandler.NewHandler(dealService, perms, auditLog)
		userH = userHandler.NewHandler(users, perms)
	)

	router := leadwellHttp.New(authService, cfg.CORS.AllowedOrigins, authH, leadH, dealH, userH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * time.Minute,
	}

	slog.Info("starting server", "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
