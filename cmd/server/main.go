// Package main is the entry point for the guardrail API server.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"cloud.google.com/go/bigquery"
	"google.golang.org/api/cloudbilling/v1"

	"github.com/finopsguard/guardrail/internal/audit"
	"github.com/finopsguard/guardrail/internal/config"
	"github.com/finopsguard/guardrail/internal/httpapi"
	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/metrics"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/orchestrator"
	"github.com/finopsguard/guardrail/internal/policy"
	"github.com/finopsguard/guardrail/internal/pricing"
	"github.com/finopsguard/guardrail/internal/usage"
	"github.com/finopsguard/guardrail/internal/webhook"
)

func main() {
	cfg := config.Load()
	if err := logging.Initialize(cfg.Logging); err != nil {
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := openDatabase(cfg)
	if db != nil {
		defer db.Close()
	}

	policyStore := newPolicyStore(db)
	evaluator := policy.NewEvaluator(policyStore)
	analyses := orchestrator.NewAnalysisStore(db)

	whStore := newWebhookStore(db)
	dispatcher := webhook.NewDispatcher(whStore)
	registry := webhook.NewRegistry(whStore)

	catalog := pricing.NewCatalog(buildPricingOptions(ctx, cfg))

	orch := orchestrator.New(catalog, evaluator, analyses, dispatcher)

	auditLogger := audit.NewLogger(auditConfigFrom(cfg), newAuditStore(cfg, db))
	policyStore.AddListener(auditLogger)
	policyStore.AddListener(dispatcher)

	reg := metrics.New()
	orch.SetMetrics(reg)
	dispatcher.SetMetrics(reg)

	usageAdapters := buildUsageAdapters(ctx, cfg)

	router := httpapi.NewRouter(httpapi.Deps{
		Config:       cfg,
		Orchestrator: orch,
		Analyses:     analyses,
		Catalog:      catalog,
		Evaluator:    evaluator,
		Policies:     policyStore,
		Webhooks:     registry,
		Dispatcher:   dispatcher,
		WebhookStore: whStore,
		AuditLogger:  auditLogger,
		Usage:        usageAdapters,
		Metrics:      reg,
		DB:           db,
	})

	retryCtx, cancelRetry := context.WithCancel(ctx)
	defer cancelRetry()
	retryCfg := webhook.DefaultRetryConfig()
	retryCfg.Interval = time.Duration(cfg.WebhookRetryIntervalSeconds) * time.Second
	retryCfg.BatchSize = cfg.WebhookRetryBatchSize
	go dispatcher.RunRetryLoop(retryCtx, retryCfg)

	server := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.Info("guardrail: server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("guardrail: server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("guardrail: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("guardrail: forced shutdown", zap.Error(err))
	}
	logging.Info("guardrail: stopped")
}

func openDatabase(cfg *config.Config) *sql.DB {
	if !cfg.DBEnabled {
		return nil
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logging.Warn("guardrail: could not open database, falling back to in-memory stores", zap.Error(err))
		return nil
	}
	db.SetMaxOpenConns(cfg.DBPoolSize)
	if err := db.Ping(); err != nil {
		logging.Warn("guardrail: database unreachable, falling back to in-memory stores", zap.Error(err))
		db.Close()
		return nil
	}
	logging.Info("guardrail: connected to database")
	return db
}

func newPolicyStore(db *sql.DB) policy.Store {
	if db != nil {
		store, err := policy.NewPostgresStore(db)
		if err == nil {
			return store
		}
		logging.Warn("guardrail: policy postgres store init failed, using memory store", zap.Error(err))
	}
	return policy.NewMemoryStore()
}

func newWebhookStore(db *sql.DB) webhook.Store {
	if db != nil {
		return webhook.NewPostgresStore(db)
	}
	return webhook.NewMemoryStore()
}

func newAuditStore(cfg *config.Config, db *sql.DB) audit.Store {
	if db != nil && cfg.AuditDBLogging {
		return audit.NewPostgresStore(db)
	}
	return audit.NewMemoryStore(10000)
}

func auditConfigFrom(cfg *config.Config) audit.Config {
	return audit.Config{
		Enabled:        cfg.AuditLoggingEnabled,
		FileLogging:    cfg.AuditLogFile != "",
		FilePath:       cfg.AuditLogFile,
		ConsoleLogging: cfg.AuditConsoleLogging,
		DBLogging:      cfg.AuditDBLogging,
	}
}

// buildPricingOptions wires a live adapter per cloud only when that
// cloud's live pricing is enabled and its SDK client constructs cleanly;
// a construction failure degrades that cloud to static-catalog pricing
// rather than failing startup.
func buildPricingOptions(ctx context.Context, cfg *config.Config) pricing.Options {
	opts := pricing.Options{
		LiveEnabled:      cfg.LivePricingEnabled,
		AWSLiveEnabled:   cfg.AWSPricingEnabled,
		GCPLiveEnabled:   cfg.GCPPricingEnabled,
		AzureLiveEnabled: cfg.AzurePricingEnabled,
		FallbackToStatic: cfg.PricingFallbackToStatic,
	}
	if !cfg.LivePricingEnabled {
		return opts
	}

	if cfg.AWSPricingEnabled {
		if awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1")); err == nil {
			opts.AWSAdapter = pricing.NewAWSLiveAdapter(awspricing.NewFromConfig(awsCfg))
		} else {
			logging.Warn("guardrail: aws pricing client init failed, static catalog only", zap.Error(err))
		}
	}
	if cfg.AzurePricingEnabled {
		opts.AzureAdapter = pricing.NewAzureLiveAdapter(nil)
	}
	if cfg.GCPPricingEnabled {
		if svc, err := cloudbilling.NewService(ctx); err == nil {
			opts.GCPAdapter = pricing.NewGCPLiveAdapter(svc)
		} else {
			logging.Warn("guardrail: gcp pricing client init failed, static catalog only", zap.Error(err))
		}
	}
	return opts
}

// buildUsageAdapters wires one usage.Adapter per cloud, each wrapped in a
// CachedAdapter; a cloud whose SDK client fails to construct gets a
// permanently-unavailable adapter rather than a missing map entry, so
// GET /usage/{provider}/spend always resolves to a clear error instead of
// a 404 that looks like a routing bug.
func buildUsageAdapters(ctx context.Context, cfg *config.Config) map[model.CloudProvider]usage.Adapter {
	ttl := time.Duration(cfg.UsageCacheTTLSeconds) * time.Second
	adapters := map[model.CloudProvider]usage.Adapter{
		model.ProviderAWS:   usage.NewCachedAdapter(usage.NewAWSAdapter(nil), ttl),
		model.ProviderAzure: usage.NewCachedAdapter(usage.NewAzureAdapter(nil), ttl),
		model.ProviderGCP:   usage.NewCachedAdapter(usage.NewGCPAdapter(nil, ""), ttl),
	}
	if !cfg.UsageIntegrationEnabled {
		return adapters
	}

	if awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion)); err == nil {
		adapters[model.ProviderAWS] = usage.NewCachedAdapter(usage.NewAWSAdapter(costexplorer.NewFromConfig(awsCfg)), ttl)
	} else {
		logging.Warn("guardrail: aws cost explorer client init failed, usage spend unavailable for aws", zap.Error(err))
	}

	if cred, err := azidentity.NewDefaultAzureCredential(nil); err == nil {
		if client, err := armconsumption.NewUsageDetailsClient(cred, nil); err == nil {
			adapters[model.ProviderAzure] = usage.NewCachedAdapter(usage.NewAzureAdapter(client), ttl)
		} else {
			logging.Warn("guardrail: azure consumption client init failed, usage spend unavailable for azure", zap.Error(err))
		}
	} else {
		logging.Warn("guardrail: azure credential init failed, usage spend unavailable for azure", zap.Error(err))
	}

	if cfg.GCPProjectID != "" {
		if client, err := bigquery.NewClient(ctx, cfg.GCPProjectID); err == nil {
			adapters[model.ProviderGCP] = usage.NewCachedAdapter(usage.NewGCPAdapter(client, cfg.GCPProjectID+".billing_export.gcp_billing_export"), ttl)
		} else {
			logging.Warn("guardrail: gcp bigquery client init failed, usage spend unavailable for gcp", zap.Error(err))
		}
	}

	return adapters
}
