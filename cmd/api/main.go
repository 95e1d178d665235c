// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatherly/gatherly-backend/internal/auth"
	"github.com/gatherly/gatherly-backend/internal/availability"
	"github.com/gatherly/gatherly-backend/internal/common/database"
	"github.com/gatherly/gatherly-backend/internal/config"
	"github.com/gatherly/gatherly-backend/internal/groups"
	"github.com/gatherly/gatherly-backend/internal/notifications"
	"github.com/gatherly/gatherly-backend/internal/planning"
	"github.com/gatherly/gatherly-backend/internal/profile"
	"github.com/gatherly/gatherly-backend/internal/suggestions"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Gatherly Event Planning API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration loaded and validated")

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	sqlxDB := sqlx.NewDb(db, "postgres")

	// 4. Connect to Redis. Refresh tokens live here, so this is not optional.
	log.Println("\n📮 Step 4: Connecting to Redis...")
	redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	log.Println("✅ Connected to Redis successfully")

	// 5. Run database migrations
	log.Println("\n🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Auth
	log.Println("\n🔐 Step 6: Initializing authentication...")
	authRepo := auth.NewPostgresRepository(sqlxDB)
	authService := auth.NewService(authRepo, redisClient, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication initialized")

	// 7. Profile
	log.Println("\n👤 Step 7: Initializing profiles...")
	profileRepo := profile.NewPostgresRepository(sqlxDB)

	var uploadService profile.UploadService
	if cfg.UseS3 {
		uploadService, err = profile.NewS3UploadService(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Printf("⚠️  Failed to init S3, using local storage: %v", err)
			uploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		} else {
			log.Println("   ✅ Using S3 for avatar uploads")
		}
	} else {
		uploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		log.Println("   ✅ Using local storage for avatar uploads")
	}

	profileService := profile.NewService(profileRepo, uploadService)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profiles initialized")

	// 8. Groups
	log.Println("\n👥 Step 8: Initializing groups...")
	groupsRepo := groups.NewPostgresRepository(sqlxDB)
	groupsService := groups.NewService(groupsRepo)
	groupsHandler := groups.NewHandler(groupsService)
	log.Println("✅ Groups initialized")

	// 9. Availability
	log.Println("\n📅 Step 9: Initializing availability...")
	availabilityRepo := availability.NewPostgresRepository(sqlxDB)

	var calendarClient availability.CalendarClient
	if cfg.EnableCalendarImport {
		calendarClient = availability.NewGoogleCalendarClient()
		log.Println("   ✅ Google Calendar import enabled")
	} else {
		log.Println("   ⚠️  Calendar import disabled")
	}

	availabilityService := availability.NewService(availabilityRepo, calendarClient)
	availabilityHandler := availability.NewHandler(availabilityService)
	log.Println("✅ Availability initialized")

	// 10. Suggestions
	log.Println("\n💡 Step 10: Initializing suggestions...")
	suggestionsRepo := suggestions.NewPostgresRepository(sqlxDB)
	suggestionsCache := suggestions.NewCache(redisClient)
	suggestionsService := suggestions.NewService(suggestionsRepo, suggestionsCache)
	suggestionsHandler := suggestions.NewHandler(suggestionsService)
	log.Println("✅ Suggestions initialized")

	// 11. Notifications
	log.Println("\n🔔 Step 11: Initializing notifications...")

	var emailService notifications.EmailService
	switch cfg.EmailProvider {
	case "sendgrid":
		emailService, err = notifications.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, "")
		if err != nil {
			log.Fatal("❌ Failed to init SendGrid:", err)
		}
		log.Println("   ✅ Using SendGrid for emails")
	default:
		emailService = notifications.NewMockEmailService()
		log.Println("   ⚠️  Using mock email service (development mode)")
	}

	var smsService notifications.SMSService
	switch cfg.SMSProvider {
	case "twilio":
		smsService, err = notifications.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		if err != nil {
			log.Fatal("❌ Failed to init Twilio:", err)
		}
		log.Println("   ✅ Using Twilio for SMS")
	default:
		smsService = notifications.NewMockSMSService()
		log.Println("   ⚠️  Using mock SMS service (development mode)")
	}

	notificationsRepo := notifications.NewPostgresRepository(sqlxDB)
	notifier := notifications.NewService(notificationsRepo, emailService, smsService)
	log.Println("✅ Notifications initialized")

	// 12. Planning
	log.Println("\n🗓️  Step 12: Initializing event planning...")

	planningRepo := planning.NewPostgresRepository(sqlxDB)
	optimizer := planning.NewOptimizer(cfg.MaxSlotResults)
	engine := planning.NewRecommendationEngine(cfg.VariancePenalty)
	processor := planning.NewFeedbackProcessor(cfg.FeedbackAlpha)
	resolver := planning.NewConflictResolver(optimizer, cfg.MinAttendance, cfg.MaxAlternatives)

	planningHub := planning.NewHub()
	go planningHub.Run()
	log.Println("   ✅ WebSocket hub started")

	planningService := planning.NewService(planningRepo, optimizer, engine, processor, resolver, notifier, planningHub, planning.Options{
		DefaultDuration:  cfg.DefaultDuration,
		ReminderLeadTime: cfg.ReminderLeadTime,
	})
	planningHandler := planning.NewHandler(planningService, planningHub)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	planning.NewScheduler(planningService).Start(schedulerCtx)
	log.Println("   ✅ Reminder and expiry jobs scheduled")
	log.Println("✅ Event planning initialized")

	// 13. Routes
	log.Println("\n🛣️  Step 13: Setting up routes...")
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	router.HandleFunc("/health", healthCheck(db)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	groups.RegisterRoutes(router, groupsHandler, authMiddleware)
	availability.RegisterRoutes(router, availabilityHandler, authMiddleware)
	suggestions.RegisterRoutes(router, suggestionsHandler, authMiddleware)
	planning.RegisterRoutes(router, planningHandler, authMiddleware)
	log.Println("✅ Routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 14. Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	stopScheduler()
	planningHub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck reports server health including database reachability.
func healthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
		})
	}
}

// loggingMiddleware logs all requests with status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates or updates the schema on startup
func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			username VARCHAR(100) UNIQUE NOT NULL,
			display_name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			phone VARCHAR(20),
			timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
			email_opt_in BOOLEAN NOT NULL DEFAULT TRUE,
			sms_opt_in BOOLEAN NOT NULL DEFAULT FALSE,
			avatar_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS friend_groups (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			created_by INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			min_attendance DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			group_id INTEGER NOT NULL REFERENCES friend_groups(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			priority_weight DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (group_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS availability_windows (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			recurrence VARCHAR(20),
			source VARCHAR(30) NOT NULL DEFAULT 'manual',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS preference_profiles (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			category_weights JSONB NOT NULL DEFAULT '{}',
			attribute_weights JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS suggestions (
			id SERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			category VARCHAR(100) NOT NULL,
			attributes JSONB NOT NULL DEFAULT '{}',
			created_by INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			group_id INTEGER NOT NULL REFERENCES friend_groups(id) ON DELETE CASCADE,
			suggestion_id INTEGER REFERENCES suggestions(id) ON DELETE SET NULL,
			title VARCHAR(200) NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finalized_at TIMESTAMPTZ,
			cancelled_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS event_feedback (
			id SERIAL PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_event_feedback UNIQUE (event_id, user_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_user_time ON availability_windows(user_id, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestions_category ON suggestions(category)`,
		`CREATE INDEX IF NOT EXISTS idx_events_group ON events(group_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_events_status_start ON events(status, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_event ON event_feedback(event_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
	}

	return nil
}
