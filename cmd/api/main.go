// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/config"
	"github.com/balcaohq/platform/internal/handler"
	"github.com/balcaohq/platform/internal/llm"
	"github.com/balcaohq/platform/internal/middleware"
	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
	"github.com/balcaohq/platform/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "balcao-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the store and bring the schema up to date.
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	migration, err := db.Migrate()
	if err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		os.Exit(1)
	}
	if migration.Changed {
		log.Info("database migrated", zap.Uint("version", migration.Version))
	}

	// Connect the realtime change feed.
	rt, err := realtime.Connect(realtime.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect realtime feed", zap.Error(err))
		os.Exit(1)
	}
	defer rt.Close()
	feed := realtime.NewFeed(rt)

	// LLM client for invoice extraction.
	var llmClient llm.Client
	if key := llmAPIKey(cfg); key != "" {
		llmClient, err = llm.NewClient(llm.Provider(cfg.DefaultLLM), key)
		if err != nil {
			log.Warn("failed to create LLM client, invoice extraction disabled", zap.Error(err))
			llmClient = nil
		}
	} else {
		log.Info("no LLM API key configured, invoice extraction disabled")
	}

	// Services.
	conversationSvc := service.NewConversationService(db, feed, log)
	messageSvc := service.NewMessageService(db, feed, log)
	transferSvc := service.NewTransferService(db, feed, log)
	tagSvc := service.NewTagService(db, log)
	welcomeSvc := service.NewWelcomeService(db, log)
	accountSvc := service.NewAccountService(db, log)
	teamSvc := service.NewTeamService(db, log)
	insightsSvc := service.NewInsightsService(db, log)
	businessSvc := service.NewBusinessService(db, feed, log)

	// Handlers.
	healthHandler := handler.NewHealthHandler(rt, db)
	conversationHandler := handler.NewConversationHandler(conversationSvc, transferSvc, tagSvc, log)
	messageHandler := handler.NewMessageHandler(messageSvc, log)
	liveHandler := handler.NewLiveHandler(conversationSvc, messageSvc, feed, log)
	tagHandler := handler.NewTagHandler(tagSvc, log)
	welcomeHandler := handler.NewWelcomeHandler(welcomeSvc, log)
	accountHandler := handler.NewAccountHandler(accountSvc, cfg.SupportEmailDomain, log)
	teamHandler := handler.NewTeamHandler(teamSvc, log)
	insightsHandler := handler.NewInsightsHandler(insightsSvc, log)
	businessHandler := handler.NewBusinessHandler(businessSvc, log)

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required).
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint.
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Support conversations.
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Patch("/", conversationHandler.Update)

				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Send)

				// Internal notes are staff-only.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAccessLevel(model.AccessSupport))
					r.Get("/notes", messageHandler.ListNotes)
					r.Post("/notes", messageHandler.AddNote)
				})

				r.Post("/transfer", conversationHandler.Transfer)
				r.Get("/transfers", conversationHandler.TransferHistory)

				r.Get("/tags", conversationHandler.ListTags)
				r.Put("/tags/{tagID}", conversationHandler.AttachTag)
				r.Delete("/tags/{tagID}", conversationHandler.DetachTag)

				r.Get("/live", liveHandler.Messages)
			})
		})

		r.Get("/live/conversations", liveHandler.Conversations)

		// Tags.
		r.Route("/tags", func(r chi.Router) {
			r.Post("/", tagHandler.Create)
			r.Get("/", tagHandler.List)
			r.Delete("/{id}", tagHandler.Delete)
		})

		// Welcome messages.
		r.Route("/welcome-messages", func(r chi.Router) {
			r.Get("/greeting", welcomeHandler.Greeting)
			r.Post("/", welcomeHandler.Create)
			r.Get("/", welcomeHandler.List)
			r.Put("/{id}", welcomeHandler.Update)
			r.Delete("/{id}", welcomeHandler.Delete)
		})

		// Support insights.
		r.Get("/insights", insightsHandler.Get)

		// Teams.
		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Get("/", teamHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", teamHandler.Get)
				r.Put("/", teamHandler.Update)
				r.Delete("/", teamHandler.Delete)
				r.Get("/members", teamHandler.Members)
				r.Post("/members", teamHandler.AddMember)
				r.Delete("/members/{userID}", teamHandler.RemoveMember)
			})
		})

		// Account administration, admin only.
		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.RequireAccessLevel(model.AccessAdmin))
			r.Post("/", accountHandler.Create)
			r.Get("/", accountHandler.List)
			r.Get("/audit", accountHandler.AuditLog)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", accountHandler.Get)
				r.Put("/", accountHandler.Update)
				r.Delete("/", accountHandler.Delete)
			})
		})

		// Business dataset.
		r.Route("/products", func(r chi.Router) {
			r.Post("/", businessHandler.CreateProduct)
			r.Get("/", businessHandler.ListProducts)
			r.Get("/{id}", businessHandler.GetProduct)
			r.Put("/{id}", businessHandler.UpdateProduct)
			r.Delete("/{id}", businessHandler.DeleteProduct)
		})
		r.Route("/clients", func(r chi.Router) {
			r.Post("/", businessHandler.CreateClient)
			r.Get("/", businessHandler.ListClients)
			r.Get("/{id}", businessHandler.GetClient)
			r.Put("/{id}", businessHandler.UpdateClient)
			r.Delete("/{id}", businessHandler.DeleteClient)
		})
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", businessHandler.CreateSale)
			r.Get("/", businessHandler.ListSales)
			r.Get("/{id}", businessHandler.GetSale)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", businessHandler.CreateExpense)
			r.Get("/", businessHandler.ListExpenses)
			r.Delete("/{id}", businessHandler.DeleteExpense)
		})
		r.Route("/cash-flow", func(r chi.Router) {
			r.Post("/", businessHandler.RecordCashFlow)
			r.Get("/", businessHandler.ListCashFlow)
		})
		r.Route("/pix-charges", func(r chi.Router) {
			r.Post("/", businessHandler.CreatePixCharge)
			r.Get("/", businessHandler.ListPixCharges)
			r.Put("/{id}/status", businessHandler.SetPixChargeStatus)
		})
		r.Route("/notas-fiscais", func(r chi.Router) {
			r.Post("/", businessHandler.CreateNotaFiscal)
			r.Get("/", businessHandler.ListNotasFiscais)
			r.Get("/{id}", businessHandler.GetNotaFiscal)
		})
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", businessHandler.GetProfile)
			r.Put("/", businessHandler.SaveProfile)
		})

		// Invoice extraction, only when an LLM client is configured.
		if llmClient != nil {
			invoiceHandler := handler.NewInvoiceHandler(service.NewExtractionService(llmClient, log), log)
			r.Post("/invoices/extract", invoiceHandler.Extract)
		}
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func llmAPIKey(cfg *config.Config) string {
	if llm.Provider(cfg.DefaultLLM) == llm.ProviderAnthropic {
		return cfg.AnthropicAPIKey
	}
	return cfg.OpenAIAPIKey
}
