// Package pricing resolves a resource's monthly cost rate from a layered
// source: an in-process TTL cache, a live cloud pricing API (if enabled and
// reachable within the live lookup timeout), a static catalog shipped with
// this binary, and finally a generic low-confidence flat rate. Exactly one
// of these sources answers per call; minimum-confidence rule
// means a simulation that touches several resources reports the lowest
// confidence among everything it priced.
package pricing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
)

// Category identifies a priced resource family. It is distinct from "kind"
// used internally by the live adapters (instance/database) because several
// categories (storage, load balancer, kubernetes control plane, cache) have
// no live-API equivalent wired in and go static-or-fallback only.
type Category string

const (
	CategoryInstance          Category = "instance"
	CategoryDatabase          Category = "database"
	CategoryStorage           Category = "storage"
	CategoryLoadBalancer      Category = "load_balancer"
	CategoryKubernetes        Category = "kubernetes"
	CategoryCache             Category = "cache"
	CategoryDataWarehouse     Category = "data_warehouse"
	CategorySearch            Category = "search"
	CategoryStreaming         Category = "streaming"
	CategoryGraphDB           Category = "graph_db"
	CategoryDocumentDB        Category = "document_db"
	CategoryAppService        Category = "app_service"
	CategoryPostgreSQL        Category = "postgresql"
	CategoryMySQL             Category = "mysql"
	CategorySQLManagedInstance Category = "sql_managed_instance"
	CategoryVPNGateway        Category = "vpn_gateway"
	CategoryGateway           Category = "gateway" // per-unit rate consulted by capacity-multiplying special formulas (app gateway, event hub)
	CategoryDataIntegration   Category = "data_integration"
	CategoryMessaging         Category = "messaging"
	CategoryAPIGateway        Category = "api_gateway"
	CategoryCDN               Category = "cdn"
	CategoryAnalyticsStorage  Category = "analytics_storage"
	CategoryContainerOrchestration Category = "container_orchestration"
	CategoryWorkflow          Category = "workflow"
)

// Cloud identifies a provider namespace.
type Cloud string

const (
	CloudAWS   Cloud = "aws"
	CloudGCP   Cloud = "gcp"
	CloudAzure Cloud = "azure"
)

// Options configures a Catalog. Live clients are optional; a nil client for
// a cloud simply disables live lookups for that cloud and the catalog falls
// straight to static+fallback.
type Options struct {
	LiveEnabled       bool
	AWSLiveEnabled    bool
	GCPLiveEnabled    bool
	AzureLiveEnabled  bool
	FallbackToStatic  bool

	AWSAdapter   liveAdapter
	GCPAdapter   liveAdapter
	AzureAdapter liveAdapter
}

// Catalog is the pricing entry point used by the cost simulator.
type Catalog struct {
	opts  Options
	cache *cache
	live  map[Cloud]liveAdapter
}

func NewCatalog(opts Options) *Catalog {
	live := make(map[Cloud]liveAdapter)
	if opts.LiveEnabled {
		if opts.AWSLiveEnabled && opts.AWSAdapter != nil {
			live[CloudAWS] = opts.AWSAdapter
		}
		if opts.GCPLiveEnabled && opts.GCPAdapter != nil {
			live[CloudGCP] = opts.GCPAdapter
		}
		if opts.AzureLiveEnabled && opts.AzureAdapter != nil {
			live[CloudAzure] = opts.AzureAdapter
		}
	}
	return &Catalog{opts: opts, cache: newCache(), live: live}
}

// Quote resolves one rate. Only categories that liveSupports reports
// ("instance"/"database") try a live adapter; every other category goes
// straight to static+fallback.
func (c *Catalog) Quote(category Category, cloud Cloud, sku, region string) model.PriceQuote {
	key := cacheKey{kind: string(category), cloud: string(cloud), sku: sku, region: region}
	if q, ok := c.cache.get(key); ok {
		return q
	}

	if adapter, ok := c.live[cloud]; ok && liveSupports(category) {
		ctx, cancel := context.WithTimeout(context.Background(), liveTimeout)
		q, err := adapter.Quote(ctx, string(category), sku, region)
		cancel()
		if err == nil {
			c.cache.put(key, q)
			return q
		}
		logging.Warn("pricing: live lookup failed, falling back",
			zap.String("category", string(category)), zap.String("cloud", string(cloud)),
			zap.String("sku", sku), zap.String("region", region), zap.Error(err))
	}

	if c.opts.FallbackToStatic {
		if q, ok := staticQuote(category, cloud, sku, region); ok {
			c.cache.put(key, q)
			return q
		}
	}

	q := model.GenericFallbackQuote()
	c.cache.put(key, q)
	return q
}

// liveSupports reports whether a category has a live-API equivalent wired
// in any adapter. Everything else is static-or-fallback only.
func liveSupports(category Category) bool {
	switch category {
	case CategoryInstance, CategoryDatabase:
		return true
	default:
		return false
	}
}

func staticQuote(category Category, cloud Cloud, sku, region string) (model.PriceQuote, bool) {
	table, key, ok := staticTableFor(category, cloud, sku, region)
	if !ok {
		return model.PriceQuote{}, false
	}
	entry, ok := table[key]
	if !ok {
		return model.PriceQuote{}, false
	}
	// Static known-sku results are reported at high confidence, the same
	// as a live hit — only an unmatched sku (the generic fallback) drops
	// to low confidence.
	if entry.hourly != nil {
		return model.NewHourlyQuote(*entry.hourly, model.ConfidenceHigh), true
	}
	return model.NewMonthlyFlatQuote(*entry.monthly, model.ConfidenceHigh), true
}

// staticTableFor picks the right static table and lookup key for a
// (category, cloud) pair. AWS EC2 is keyed "{region}:{sku}"; everything
// else is keyed by sku alone.
func staticTableFor(category Category, cloud Cloud, sku, region string) (staticTable, string, bool) {
	switch cloud {
	case CloudAWS:
		switch category {
		case CategoryInstance:
			return awsEC2, fmt.Sprintf("%s:%s", region, sku), true
		case CategoryDatabase:
			return awsRDS, sku, true
		case CategoryStorage:
			return awsStorage, sku, true
		case CategoryLoadBalancer:
			return awsLoadBalancer, sku, true
		case CategoryCache:
			return awsElastiCache, sku, true
		case CategoryDataWarehouse:
			return awsRedshift, sku, true
		case CategorySearch:
			return awsOpenSearch, sku, true
		case CategoryStreaming:
			return awsMSK, sku, true
		case CategoryGraphDB:
			return awsNeptune, sku, true
		case CategoryDocumentDB:
			return awsDocDB, sku, true
		case CategoryKubernetes:
			return awsEKS, "control-plane", true
		case CategoryMessaging:
			return awsMessaging, sku, true
		case CategoryAPIGateway:
			return awsAPIGateway, sku, true
		case CategoryCDN:
			return awsCloudFront, sku, true
		case CategoryContainerOrchestration:
			return awsECS, sku, true
		case CategoryWorkflow:
			return awsStepFunctions, sku, true
		}
	case CloudGCP:
		switch category {
		case CategoryInstance:
			return gcpCompute, sku, true
		case CategoryDatabase:
			return gcpSQL, sku, true
		case CategoryStorage:
			return gcpStorage, sku, true
		case CategoryKubernetes:
			return gcpGKE, "control-plane", true
		case CategoryDataWarehouse:
			return gcpSpanner, sku, true
		case CategoryCache:
			return gcpRedis, sku, true
		case CategoryMessaging:
			return gcpMessaging, sku, true
		case CategoryAnalyticsStorage:
			return gcpAnalyticsStorage, sku, true
		}
	case CloudAzure:
		switch category {
		case CategoryInstance:
			return azureVM, sku, true
		case CategoryDatabase:
			return azureSQL, sku, true
		case CategoryStorage:
			return azureStorage, sku, true
		case CategoryKubernetes:
			return azureAKS, "control-plane", true
		case CategoryCache:
			return azureRedis, sku, true
		case CategoryDocumentDB:
			return azureCosmos, sku, true
		case CategoryAppService:
			return azureAppServicePlan, sku, true
		case CategoryPostgreSQL:
			return azurePostgreSQL, sku, true
		case CategoryMySQL:
			return azureMySQL, sku, true
		case CategorySQLManagedInstance:
			return azureSQLManagedInstance, sku, true
		case CategoryVPNGateway:
			return azureVPNGateway, sku, true
		case CategoryGateway:
			return azureGatewayUnit, sku, true
		case CategoryDataIntegration:
			return azureDataIntegration, sku, true
		}
	}
	return nil, "", false
}
