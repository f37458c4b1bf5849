package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/api/option"

	"github.com/mmynk/syncdays/internal/auth"
	"github.com/mmynk/syncdays/internal/server"
	"github.com/mmynk/syncdays/internal/service"
	"github.com/mmynk/syncdays/internal/storage"
	"github.com/mmynk/syncdays/internal/storage/firestoredb"
	"github.com/mmynk/syncdays/internal/storage/sqlite"
	"github.com/mmynk/syncdays/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is only used in local development; missing is fine.
	_ = godotenv.Load()
	logging.Setup()

	ctx := context.Background()

	var firebaseApp *firebase.App
	if json := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"); json != "" {
		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(json)))
		if err != nil {
			slog.Error("Failed to initialize Firebase app", "error", err)
			os.Exit(1)
		}
		firebaseApp = app
	}

	store, err := newStore(ctx, firebaseApp)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	groupSvc := service.NewGroupService(store)
	daySvc := service.NewDayService(store)

	verifier, authSvc, err := newIdentity(ctx, firebaseApp, store)
	if err != nil {
		slog.Error("Failed to initialize identity", "error", err)
		os.Exit(1)
	}

	sweeper := startRetentionSweep(daySvc)
	if sweeper != nil {
		defer sweeper.Stop()
	}

	srv := server.New(groupSvc, daySvc, authSvc, verifier)
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := fmt.Sprintf(":%s", getEnv("PORT", "8080"))
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// newStore selects the storage backend from STORE_BACKEND: "sqlite"
// (default) or "firestore".
func newStore(ctx context.Context, firebaseApp *firebase.App) (storage.Store, error) {
	backend := getEnv("STORE_BACKEND", "sqlite")
	switch backend {
	case "sqlite":
		dbPath := getEnv("DB_PATH", "./data/syncdays.db")
		store, err := sqlite.New(dbPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", backend, "database", dbPath)
		return store, nil
	case "firestore":
		if firebaseApp == nil {
			return nil, fmt.Errorf("firestore backend requires GOOGLE_APPLICATION_CREDENTIALS_JSON")
		}
		client, err := firebaseApp.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", backend)
		return firestoredb.New(client), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
}

// newIdentity selects the identity provider from AUTH_MODE: "local"
// (default, bcrypt accounts with locally issued JWTs) or "firebase"
// (Firebase ID tokens, no local signup routes).
func newIdentity(ctx context.Context, firebaseApp *firebase.App, store storage.Store) (auth.Verifier, *service.AuthService, error) {
	mode := getEnv("AUTH_MODE", "local")
	switch mode {
	case "local":
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return nil, nil, fmt.Errorf("local auth mode requires JWT_SECRET")
		}
		jwtManager := auth.NewJWTManager(secret, 24*time.Hour)
		authenticator := auth.NewPasswordAuthenticator(store)
		authSvc := service.NewAuthService(authenticator, jwtManager, slog.Default())
		return auth.NewJWTVerifier(jwtManager), authSvc, nil
	case "firebase":
		if firebaseApp == nil {
			return nil, nil, fmt.Errorf("firebase auth mode requires GOOGLE_APPLICATION_CREDENTIALS_JSON")
		}
		client, err := firebaseApp.Auth(ctx)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewFirebaseVerifier(client), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown AUTH_MODE %q", mode)
	}
}

// startRetentionSweep schedules deletion of day records older than
// RETENTION_DAYS on the RETENTION_CRON schedule. Returns nil when
// retention is disabled (RETENTION_DAYS unset or 0).
func startRetentionSweep(days *service.DayService) *cron.Cron {
	retention, err := strconv.Atoi(getEnv("RETENTION_DAYS", "0"))
	if err != nil || retention <= 0 {
		return nil
	}
	schedule := getEnv("RETENTION_CRON", "0 3 * * *")

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -retention)
		if _, err := days.PurgeBefore(context.Background(), cutoff); err != nil {
			slog.Error("Retention sweep failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("Invalid RETENTION_CRON, retention disabled", "schedule", schedule, "error", err)
		return nil
	}

	c.Start()
	slog.Info("Retention sweep scheduled", "schedule", schedule, "retention_days", retention)
	return c
}
