package pricing

import "github.com/shopspring/decimal"

// staticEntry is one static catalog row: an hourly rate with optional
// attributes the caller may want to surface (e.g. vcpu/memory), or a flat
// monthly rate for resources billed independent of hours.
type staticEntry struct {
	hourly  *decimal.Decimal
	monthly *decimal.Decimal
}

func hourly(v float64) staticEntry {
	d := decimal.NewFromFloat(v)
	return staticEntry{hourly: &d}
}

func monthly(v float64) staticEntry {
	d := decimal.NewFromFloat(v)
	return staticEntry{monthly: &d}
}

// staticTable is a per-kind table keyed by SKU, or by "{region}:{sku}" for
// AWS EC2
type staticTable map[string]staticEntry

// awsEC2 is keyed "{region}:{instance_type}"; unmatched keys fall back to
// the generic $0.10/hr low-confidence quote.
var awsEC2 = staticTable{
	"us-east-1:t3.micro":   hourly(0.0104),
	"us-east-1:t3.small":   hourly(0.0208),
	"us-east-1:t3.medium":  hourly(0.0416),
	"us-east-1:t3.large":   hourly(0.0832),
	"us-east-1:m5.large":   hourly(0.096),
	"us-east-1:m5.xlarge":  hourly(0.192),
	"us-east-1:m5.2xlarge": hourly(0.384),
	"us-east-1:c5.large":   hourly(0.085),
	"us-east-1:c5.xlarge":  hourly(0.17),
	"us-east-1:p3.2xlarge": hourly(3.06),
}

var awsRDS = staticTable{
	"db.t3.micro":  hourly(0.017),
	"db.t3.small":  hourly(0.034),
	"db.t3.medium": hourly(0.068),
	"db.m5.large":  hourly(0.171),
}

var awsStorage = staticTable{
	"standard": hourly(0.023), // per GB-month, reused as a flat per-GB rate
}

var awsLoadBalancer = staticTable{
	"application": monthly(16.43),
	"network":     monthly(16.43),
	"gateway":     monthly(16.43),
	"classic":     monthly(18.26),
}

var awsElastiCache = staticTable{
	"cache.t3.micro":  hourly(0.017),
	"cache.t3.small":  hourly(0.034),
	"cache.m5.large":  hourly(0.156),
}

var awsRedshift = staticTable{
	"dc2.large":  hourly(0.25),
	"dc2.8xlarge": hourly(4.80),
}

var awsOpenSearch = staticTable{
	"search.t3.small.search":  hourly(0.036),
	"search.m5.large.search":  hourly(0.142),
}

var awsMSK = staticTable{
	"kafka.t3.small": hourly(0.0418),
	"kafka.m5.large": hourly(0.21),
}

var awsNeptune = staticTable{
	"db.t3.medium": hourly(0.111),
	"db.r5.large":  hourly(0.348),
}

var awsDocDB = staticTable{
	"db.t3.medium": hourly(0.077),
	"db.r5.large":  hourly(0.277),
}

var awsEKS = staticTable{
	"control-plane": monthly(73.00),
}

var gcpCompute = staticTable{
	"e2-micro":       hourly(0.0084),
	"e2-medium":      hourly(0.0335),
	"e2-standard-4":  hourly(0.134),
	"n1-standard-1":  hourly(0.0475),
	"n1-standard-4":  hourly(0.19),
}

var gcpSQL = staticTable{
	"db-f1-micro":        hourly(0.0150),
	"db-n1-standard-1":   hourly(0.0965),
	"db-n1-standard-2":   hourly(0.193),
}

var gcpStorage = staticTable{
	"standard": hourly(0.020),
}

var gcpGKE = staticTable{
	"control-plane": monthly(73.00),
}

var gcpSpanner = staticTable{
	"regional-us-central1": hourly(0.90),
}

var gcpRedis = staticTable{
	"BASIC":    hourly(0.054),
	"STANDARD_HA": hourly(0.125),
}

var azureVM = staticTable{
	"Standard_B1s":   hourly(0.0104),
	"Standard_B2s":   hourly(0.0416),
	"Standard_D2s_v3": hourly(0.096),
	"Standard_D4s_v3": hourly(0.192),
}

var azureSQL = staticTable{
	"S0": hourly(0.0202),
	"S1": hourly(0.0404),
	"S2": hourly(0.0808),
}

var azureStorage = staticTable{
	"Standard": hourly(0.0184),
	"Premium":  hourly(0.12),
}

var azureAKS = staticTable{
	"control-plane": monthly(0.0), // AKS control plane is free on the default tier
}

var azureRedis = staticTable{
	"Basic":    hourly(0.022),
	"Standard": hourly(0.055),
	"Premium":  hourly(0.38),
}

var azureCosmos = staticTable{
	"standard": hourly(0.008), // per 100 RU/s, used as a coarse per-unit proxy
}

var azureAppServicePlan = staticTable{
	"B1":   hourly(0.018),
	"B2":   hourly(0.036),
	"S1":   hourly(0.075),
	"P1v2": hourly(0.122),
}

// azurePostgreSQL, azureMySQL key on sku_name alone (storage is tracked
// separately in metadata but not billed here); priced hourly x730 x count
// per the standalone-DB-server instance-like billing rule.
var azurePostgreSQL = staticTable{
	"B_Gen5_1": hourly(0.034),
	"B_Gen5_2": hourly(0.068),
	"GP_Gen5_2": hourly(0.193),
	"GP_Gen5_4": hourly(0.386),
}

var azureMySQL = staticTable{
	"B_Gen5_1": hourly(0.034),
	"B_Gen5_2": hourly(0.068),
	"GP_Gen5_2": hourly(0.192),
	"GP_Gen5_4": hourly(0.384),
}

var azureSQLManagedInstance = staticTable{
	"GP_Gen5":   hourly(0.446),
	"BC_Gen5":   hourly(0.980),
}

var azureVPNGateway = staticTable{
	"Vpn_Basic":        hourly(0.036),
	"Vpn_VpnGw1":       hourly(0.19),
	"Vpn_VpnGw2":       hourly(0.49),
	"ExpressRoute_Standard": hourly(0.28),
}

// azureGatewayUnit holds per-unit hourly rates for capacity-multiplied
// Azure gateways: Application Gateway's capacity units and Event Hub's
// throughput units share this table since neither sku namespace collides.
var azureGatewayUnit = staticTable{
	"Standard_v2": hourly(0.0144),
	"WAF_v2":      hourly(0.0252),
	"Basic":       hourly(0.015),  // event hub throughput unit, Basic tier
	"Standard":    hourly(0.03),   // event hub throughput unit, Standard tier
}

var azureDataIntegration = staticTable{
	"datafactory": monthly(1.00), // pipeline orchestration base fee; activity-run costs not estimated
	"synapse":     monthly(4700.00),
}

var awsMessaging = staticTable{
	"sns_topic":    monthly(0.50),  // nominal usage assumption, not a per-message meter
	"sqs_standard": monthly(0.40),
	"sqs_fifo":     monthly(0.50),
}

var awsAPIGateway = staticTable{
	"REST": monthly(3.50),
	"HTTP": monthly(1.00),
}

var awsCloudFront = staticTable{
	"PriceClass_100": monthly(10.00),
	"PriceClass_200": monthly(25.00),
	"PriceClass_All": monthly(50.00),
}

var awsECS = staticTable{
	"cluster": monthly(0.0), // the cluster resource itself is free; costs accrue on the EC2/Fargate capacity it runs
}

var awsStepFunctions = staticTable{
	"STANDARD": monthly(2.50),
	"EXPRESS":  monthly(1.00),
}

var gcpMessaging = staticTable{
	"pubsub_topic": monthly(0.40),
}

var gcpAnalyticsStorage = staticTable{
	"dataset": monthly(2.00), // storage-only nominal fee; on-demand query costs not estimated
}
