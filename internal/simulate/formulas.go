package simulate

import (
	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/pricing"
)

// DynamoDB provisioned-capacity hourly rates per read/write capacity unit
// (PAY_PER_REQUEST tables are not priced)
var (
	dynamoReadUnitHourly  = decimal.NewFromFloat(0.00013)
	dynamoWriteUnitHourly = decimal.NewFromFloat(0.00065)
)

// Serverless consumption assumptions (1M invocations + 100 GB-s/month),
// priced at AWS Lambda's published on-demand rates — used as the shared
// approximation for Lambda, Cloud Functions, and Azure Functions since all
// three bill on the same request+GB-s shape and callers only need an
// order-of-magnitude estimate, not an exact per-provider rate lookup.
var (
	serverlessInvocations   = decimal.NewFromInt(1_000_000)
	serverlessRequestPrice  = decimal.NewFromFloat(0.0000002)
	serverlessGBSeconds     = decimal.NewFromInt(100)
	serverlessGBSecondPrice = decimal.NewFromFloat(0.0000166667)
)

// Cloud Run consumption assumption: 2 vCPU + 4 GiB, provisioned for the
// full month (720h), priced at GCP's published per-second Cloud Run rates
// converted to an hourly-equivalent.
var (
	cloudRunVCPU       = decimal.NewFromInt(2)
	cloudRunVCPUHourly = decimal.NewFromFloat(0.0648)
	cloudRunMemGiB     = decimal.NewFromInt(4)
	cloudRunMemHourly  = decimal.NewFromFloat(0.0072)
	cloudRunHours      = decimal.NewFromInt(720)
)

func dynamoDBLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	billingMode, _ := r.Metadata["billing_mode"].(string)
	if billingMode == "PAY_PER_REQUEST" {
		return model.ResourceBreakdownItem{
			ResourceID:  r.ID,
			MonthlyCost: decimal.Zero,
			Notes:       []string{"ppr model not estimated"},
		}
	}

	readCapacity, _ := r.Metadata["read_capacity"].(int)
	writeCapacity, _ := r.Metadata["write_capacity"].(int)
	hourly := decimal.NewFromInt(int64(readCapacity)).Mul(dynamoReadUnitHourly).
		Add(decimal.NewFromInt(int64(writeCapacity)).Mul(dynamoWriteUnitHourly))
	monthly := hourly.Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(r.Count)))

	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
	}
}

func serverlessLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	requestCost := serverlessInvocations.Mul(serverlessRequestPrice)
	computeCost := serverlessGBSeconds.Mul(serverlessGBSecondPrice)
	perFunction := requestCost.Add(computeCost)
	monthly := perFunction.Mul(decimal.NewFromInt(int64(r.Count)))

	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"assumes 1M invocations and 100 GB-s per function per month"},
	}
}

func cloudRunLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	hourly := cloudRunVCPU.Mul(cloudRunVCPUHourly).Add(cloudRunMemGiB.Mul(cloudRunMemHourly))
	monthly := hourly.Mul(cloudRunHours).Mul(decimal.NewFromInt(int64(r.Count)))

	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"assumes 2 vCPU, 4 GiB, provisioned 720h/month"},
	}
}

func storageLine(r model.CanonicalResource, catalog *pricing.Catalog, cloud pricing.Cloud) (model.ResourceBreakdownItem, model.Confidence) {
	quote := catalog.Quote(pricing.CategoryStorage, cloud, r.Size, r.Region)
	const assumedGB = 100
	monthly := quote.HourlyPrice.Mul(decimal.NewFromInt(assumedGB)).Mul(decimal.NewFromInt(int64(r.Count)))

	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"assumes 100 GB of stored data"},
	}, quote.Confidence
}

// Fargate per-unit rates (us-east-1 on-demand), shared by the ECS service
// and task-definition formulas since both bill on the same vCPU/GB-hour
// shape.
var (
	fargateVCPUHourly = decimal.NewFromFloat(0.04048)
	fargateGBHourly   = decimal.NewFromFloat(0.004445)
)

// ecsServiceLine estimates a service running on Fargate as desired_count
// tasks at a nominal 0.25 vCPU / 0.5 GB shape; EC2-launch-type services
// aren't estimated here since their cost is the underlying EC2 fleet,
// already priced separately if that fleet is declared as aws_instance.
func ecsServiceLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	launchType, _ := r.Metadata["launch_type"].(string)
	desiredCount, _ := r.Metadata["desired_count"].(int)
	if desiredCount == 0 {
		desiredCount = 1
	}
	if launchType != "FARGATE" {
		return model.ResourceBreakdownItem{
			ResourceID:  r.ID,
			MonthlyCost: decimal.Zero,
			Notes:       []string{"EC2 launch type: cost accrues on the underlying EC2 capacity, not estimated here"},
		}
	}
	const vCPU = 0.25
	const gb = 0.5
	hourly := fargateVCPUHourly.Mul(decimal.NewFromFloat(vCPU)).Add(fargateGBHourly.Mul(decimal.NewFromFloat(gb)))
	monthly := hourly.Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(desiredCount))).Mul(decimal.NewFromInt(int64(r.Count)))
	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"assumes 0.25 vCPU / 0.5 GB per Fargate task"},
	}
}

// fargateTaskLine prices a standalone task definition at its declared
// cpu/memory shape, run continuously for the month — the same assumption
// original_source's cost model makes for a provisioned task.
func fargateTaskLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	cpuUnits, _ := r.Metadata["cpu"].(int)
	memoryMB, _ := r.Metadata["memory"].(int)
	if cpuUnits == 0 {
		cpuUnits = 256
	}
	if memoryMB == 0 {
		memoryMB = 512
	}
	vCPU := decimal.NewFromInt(int64(cpuUnits)).Div(decimal.NewFromInt(1024))
	gb := decimal.NewFromInt(int64(memoryMB)).Div(decimal.NewFromInt(1024))
	hourly := fargateVCPUHourly.Mul(vCPU).Add(fargateGBHourly.Mul(gb))
	monthly := hourly.Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(r.Count)))
	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"assumes the task runs continuously for the month"},
	}
}

// kinesisShardHourly is the per-shard hourly rate.
var kinesisShardHourly = decimal.NewFromFloat(0.015)

func kinesisStreamLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	shardCount, _ := r.Metadata["shard_count"].(int)
	if shardCount == 0 {
		shardCount = 1
	}
	monthly := kinesisShardHourly.Mul(decimal.NewFromInt(int64(shardCount))).Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(r.Count)))
	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"excludes PUT payload unit charges"},
	}
}

// azureContainerInstancesLine prices an azurerm_container_group at its
// declared cpu/memory shape, provisioned for the full month — mirrors
// cloudRunLine's consumption-as-always-on assumption.
var (
	aciVCPUHourly = decimal.NewFromFloat(0.0000125 * 3600) // per-second rate converted to hourly
	aciGBHourly   = decimal.NewFromFloat(0.0000014 * 3600)
)

func azureContainerInstancesLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	cpu, _ := r.Metadata["cpu"].(float64)
	memory, _ := r.Metadata["memory"].(float64)
	if cpu == 0 {
		cpu = 1.0
	}
	if memory == 0 {
		memory = 1.5
	}
	hourly := aciVCPUHourly.Mul(decimal.NewFromFloat(cpu)).Add(aciGBHourly.Mul(decimal.NewFromFloat(memory)))
	monthly := hourly.Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(r.Count)))
	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"assumes the container group runs continuously for the month"},
	}
}

// azureGatewayUnitLine prices a capacity/throughput-unit-scaled Azure
// gateway (Application Gateway capacity units, Event Hub throughput units):
// a per-unit hourly rate times the declared unit count times hours.
func azureGatewayUnitLine(r model.CanonicalResource, catalog *pricing.Catalog, unitsKey string) (model.ResourceBreakdownItem, model.Confidence) {
	quote := catalog.Quote(pricing.CategoryGateway, pricing.CloudAzure, r.Size, r.Region)
	units, _ := r.Metadata[unitsKey].(int)
	if units == 0 {
		units = 1
	}
	monthly := quote.HourlyPrice.Mul(decimal.NewFromInt(int64(units))).Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(r.Count)))
	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
	}, quote.Confidence
}
