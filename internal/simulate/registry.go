package simulate

import "github.com/finopsguard/guardrail/internal/pricing"

// billing describes how a resource type's cost is computed. Most types are
// priced straight from the catalog using the resource's Size as the SKU;
// a handful (storage, DynamoDB, the serverless compute types) need
// resource-specific formulas and are marked special in formulas.go.
type billing struct {
	cloud     pricing.Cloud
	category  pricing.Category
	flat      bool // monthly-flat: no ×730 hours multiplication
	special   string
}

// registry maps every canonical resource type this module knows how to
// price to its billing shape. Types absent here are priced as a generic
// fallback instance (an unrecognized type should never reach the
// simulator — the parser already excludes anything this registry doesn't
// know — but the switch in simulate.go has a safety default too).
var registry = map[string]billing{
	"aws_instance":                 {cloud: pricing.CloudAWS, category: pricing.CategoryInstance},
	"aws_gpu_instance":              {cloud: pricing.CloudAWS, category: pricing.CategoryInstance},
	"aws_db_instance":               {cloud: pricing.CloudAWS, category: pricing.CategoryDatabase},
	"aws_s3_bucket":                 {special: "storage", cloud: pricing.CloudAWS, category: pricing.CategoryStorage},
	"aws_lb":                        {cloud: pricing.CloudAWS, category: pricing.CategoryLoadBalancer, flat: true},
	"aws_dynamodb_table":            {special: "dynamodb"},
	"aws_lambda_function":           {special: "serverless", cloud: pricing.CloudAWS},
	"aws_eks_cluster":               {cloud: pricing.CloudAWS, category: pricing.CategoryKubernetes, flat: true},
	"aws_elasticache_cluster":       {cloud: pricing.CloudAWS, category: pricing.CategoryCache},
	"aws_redshift_cluster":          {cloud: pricing.CloudAWS, category: pricing.CategoryDataWarehouse},
	"aws_opensearch_domain":         {cloud: pricing.CloudAWS, category: pricing.CategorySearch},
	"aws_msk_cluster":               {cloud: pricing.CloudAWS, category: pricing.CategoryStreaming},
	"aws_neptune_cluster_instance":  {cloud: pricing.CloudAWS, category: pricing.CategoryGraphDB},
	"aws_docdb_cluster_instance":    {cloud: pricing.CloudAWS, category: pricing.CategoryDocumentDB},
	"aws_autoscaling_group":        {cloud: pricing.CloudAWS, category: pricing.CategoryInstance},

	// Added for the ECS/messaging/API-surface family original_source's
	// aws_tf_parser.py treats as core resource types.
	"aws_ecs_cluster":         {cloud: pricing.CloudAWS, category: pricing.CategoryContainerOrchestration, flat: true},
	"aws_ecs_service":         {special: "ecs_service", cloud: pricing.CloudAWS},
	"aws_ecs_task_definition": {special: "fargate_task", cloud: pricing.CloudAWS},
	"aws_kinesis_stream":      {special: "kinesis", cloud: pricing.CloudAWS},
	"aws_sns_topic":           {cloud: pricing.CloudAWS, category: pricing.CategoryMessaging, flat: true},
	"aws_sqs_queue":           {cloud: pricing.CloudAWS, category: pricing.CategoryMessaging, flat: true},
	"aws_sfn_state_machine":   {cloud: pricing.CloudAWS, category: pricing.CategoryWorkflow, flat: true},
	"aws_api_gateway_rest_api": {cloud: pricing.CloudAWS, category: pricing.CategoryAPIGateway, flat: true},
	"aws_apigatewayv2_api":    {cloud: pricing.CloudAWS, category: pricing.CategoryAPIGateway, flat: true},
	"aws_cloudfront_distribution": {cloud: pricing.CloudAWS, category: pricing.CategoryCDN, flat: true},

	// cloudres.alias() registers these under the Terraform resource type's
	// own name, which is also what ends up in CanonicalResource.Type — so
	// each alias needs its own entry here too, not just its canonical target.
	"aws_elasticsearch_domain": {cloud: pricing.CloudAWS, category: pricing.CategorySearch},

	"google_compute_instance":         {cloud: pricing.CloudGCP, category: pricing.CategoryInstance},
	"google_sql_database_instance":    {cloud: pricing.CloudGCP, category: pricing.CategoryDatabase},
	"google_storage_bucket":           {special: "storage", cloud: pricing.CloudGCP, category: pricing.CategoryStorage},
	"google_cloudfunctions_function":  {special: "serverless", cloud: pricing.CloudGCP},
	"google_cloud_run_service":        {special: "cloudrun", cloud: pricing.CloudGCP},
	"google_container_cluster":        {cloud: pricing.CloudGCP, category: pricing.CategoryKubernetes, flat: true},
	"google_spanner_instance":         {cloud: pricing.CloudGCP, category: pricing.CategoryDataWarehouse},
	"google_redis_instance":           {cloud: pricing.CloudGCP, category: pricing.CategoryCache},
	"google_pubsub_topic":             {cloud: pricing.CloudGCP, category: pricing.CategoryMessaging, flat: true},
	"google_bigquery_dataset":         {cloud: pricing.CloudGCP, category: pricing.CategoryAnalyticsStorage, flat: true},
	"google_cloudfunctions2_function": {special: "serverless", cloud: pricing.CloudGCP},
	"google_cloud_run_v2_service":     {special: "cloudrun", cloud: pricing.CloudGCP},

	"azurerm_virtual_machine":    {cloud: pricing.CloudAzure, category: pricing.CategoryInstance},
	"azurerm_storage_account":    {special: "storage", cloud: pricing.CloudAzure, category: pricing.CategoryStorage},
	"azurerm_mssql_database":     {cloud: pricing.CloudAzure, category: pricing.CategoryDatabase},
	"azurerm_kubernetes_cluster": {cloud: pricing.CloudAzure, category: pricing.CategoryKubernetes, flat: true},
	"azurerm_linux_web_app":      {cloud: pricing.CloudAzure, category: pricing.CategoryAppService},
	"azurerm_linux_function_app": {special: "serverless", cloud: pricing.CloudAzure},
	"azurerm_redis_cache":        {cloud: pricing.CloudAzure, category: pricing.CategoryCache},
	"azurerm_cosmosdb_account":   {cloud: pricing.CloudAzure, category: pricing.CategoryDocumentDB},

	// azurerm_{linux,windows}_virtual_machine, azurerm_sql_database,
	// azurerm_{windows_web_app,app_service}, azurerm_{windows,}_function_app
	// alias onto the handlers above in cloudres but (see the comment on
	// aws_elasticsearch_domain above) still need their own billing entry.
	"azurerm_linux_virtual_machine":   {cloud: pricing.CloudAzure, category: pricing.CategoryInstance},
	"azurerm_windows_virtual_machine": {cloud: pricing.CloudAzure, category: pricing.CategoryInstance},
	"azurerm_sql_database":            {cloud: pricing.CloudAzure, category: pricing.CategoryDatabase},
	"azurerm_windows_web_app":         {cloud: pricing.CloudAzure, category: pricing.CategoryAppService},
	"azurerm_app_service":             {cloud: pricing.CloudAzure, category: pricing.CategoryAppService},
	"azurerm_windows_function_app":    {special: "serverless", cloud: pricing.CloudAzure},
	"azurerm_function_app":            {special: "serverless", cloud: pricing.CloudAzure},

	// Standalone DB servers and managed instance: spec-mandated, priced
	// hourly x730 x count like any other instance-like resource.
	"azurerm_postgresql_server":            {cloud: pricing.CloudAzure, category: pricing.CategoryPostgreSQL},
	"azurerm_postgresql_flexible_server":   {cloud: pricing.CloudAzure, category: pricing.CategoryPostgreSQL},
	"azurerm_mysql_server":                 {cloud: pricing.CloudAzure, category: pricing.CategoryMySQL},
	"azurerm_mysql_flexible_server":        {cloud: pricing.CloudAzure, category: pricing.CategoryMySQL},
	"azurerm_sql_managed_instance":         {cloud: pricing.CloudAzure, category: pricing.CategorySQLManagedInstance},

	"azurerm_container_group":         {special: "azure_container_instances", cloud: pricing.CloudAzure},
	"azurerm_application_gateway":     {special: "azure_app_gateway", cloud: pricing.CloudAzure},
	"azurerm_eventhub_namespace":      {special: "azure_eventhub", cloud: pricing.CloudAzure},
	"azurerm_data_factory":            {cloud: pricing.CloudAzure, category: pricing.CategoryDataIntegration, flat: true},
	"azurerm_virtual_network_gateway": {cloud: pricing.CloudAzure, category: pricing.CategoryVPNGateway},
	"azurerm_synapse_workspace":       {cloud: pricing.CloudAzure, category: pricing.CategoryDataIntegration, flat: true},
}
