package cloudres

import (
	"fmt"
	"strconv"
)

func init() {
	register("aws_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("instance_type", "t3.micro"), nil, "ec2"
	})

	// Synthetic type used by policy examples (no_gpu_in_dev); treated like
	// any other instance-like resource for costing purposes.
	register("aws_gpu_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("instance_type", "p3.2xlarge"), nil, "gpu"
	})

	register("aws_db_instance", func(a Attrs) (string, map[string]interface{}, string) {
		meta := map[string]interface{}{
			"engine":           a.String("engine", "postgres"),
			"allocated_storage": a.Int("allocated_storage", 20),
			"multi_az":         a.Bool("multi_az", false),
		}
		return a.String("instance_class", "db.t3.micro"), meta, "rds"
	})

	register("aws_s3_bucket", func(a Attrs) (string, map[string]interface{}, string) {
		return "standard", nil, "s3"
	})

	// aws_lb is the real AWS provider resource name for both ALB and NLB;
	// the Ansible handler normalizes ELB/ALB modules onto this same type
	// so both parsers feed one pricing/policy key.
	register("aws_lb", func(a Attrs) (string, map[string]interface{}, string) {
		meta := map[string]interface{}{
			"load_balancer_type": a.String("load_balancer_type", "application"),
		}
		return a.String("load_balancer_type", "application"), meta, "lb"
	})

	register("aws_dynamodb_table", func(a Attrs) (string, map[string]interface{}, string) {
		billingMode := a.String("billing_mode", "PROVISIONED")
		meta := map[string]interface{}{
			"billing_mode":   billingMode,
			"read_capacity":  a.Int("read_capacity", 5),
			"write_capacity": a.Int("write_capacity", 5),
		}
		return billingMode, meta, "ddb"
	})

	register("aws_lambda_function", func(a Attrs) (string, map[string]interface{}, string) {
		memory := a.Int("memory_size", 128)
		runtime := a.String("runtime", "python3.12")
		meta := map[string]interface{}{
			"memory_mb": memory,
			"runtime":   runtime,
		}
		return sizeLabel(memory, runtime), meta, "lambda"
	})

	register("aws_eks_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return "control-plane", nil, "eks"
	})

	register("aws_elasticache_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("node_type", "cache.t3.micro"), nil, "cache"
	})

	register("aws_redshift_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("node_type", "dc2.large"), nil, "redshift"
	})

	register("aws_opensearch_domain", func(a Attrs) (string, map[string]interface{}, string) {
		return clusterInstanceType(a, "search.t3.small.search"), nil, "search"
	})
	alias("aws_elasticsearch_domain", "aws_opensearch_domain")

	register("aws_msk_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return brokerInstanceType(a, "kafka.t3.small"), nil, "msk"
	})

	register("aws_neptune_cluster_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("instance_class", "db.t3.medium"), nil, "neptune"
	})

	register("aws_docdb_cluster_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("instance_class", "db.t3.medium"), nil, "docdb"
	})

	register("aws_autoscaling_group", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("instance_type", "t3.micro"), nil, "asg"
	})

	register("aws_ecs_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return "cluster", nil, "ecs"
	})

	register("aws_ecs_service", func(a Attrs) (string, map[string]interface{}, string) {
		launchType := a.String("launch_type", "EC2")
		desiredCount := a.Int("desired_count", 1)
		meta := map[string]interface{}{
			"launch_type":   launchType,
			"desired_count": desiredCount,
		}
		return fmt.Sprintf("%s-%dtasks", launchType, desiredCount), meta, "ecs-service"
	})

	register("aws_ecs_task_definition", func(a Attrs) (string, map[string]interface{}, string) {
		cpu := a.Int("cpu", 256)
		memory := a.Int("memory", 512)
		meta := map[string]interface{}{
			"cpu":    cpu,
			"memory": memory,
		}
		return fmt.Sprintf("%dcpu-%dmb", cpu, memory), meta, "fargate"
	})

	register("aws_kinesis_stream", func(a Attrs) (string, map[string]interface{}, string) {
		shards := a.Int("shard_count", 1)
		return fmt.Sprintf("%dshards", shards), map[string]interface{}{"shard_count": shards}, "kinesis"
	})

	register("aws_sns_topic", func(a Attrs) (string, map[string]interface{}, string) {
		return "sns_topic", nil, "sns"
	})

	register("aws_sqs_queue", func(a Attrs) (string, map[string]interface{}, string) {
		if a.Bool("fifo_queue", false) {
			return "sqs_fifo", nil, "sqs"
		}
		return "sqs_standard", nil, "sqs"
	})

	register("aws_sfn_state_machine", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("type", "STANDARD"), nil, "stepfunctions"
	})

	register("aws_api_gateway_rest_api", func(a Attrs) (string, map[string]interface{}, string) {
		return "REST", nil, "apigateway"
	})
	register("aws_apigatewayv2_api", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("protocol_type", "HTTP"), nil, "apigateway"
	})

	register("aws_cloudfront_distribution", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("price_class", "PriceClass_All"), nil, "cloudfront"
	})
}

// sizeLabel composes the Lambda "{memory}MB-{runtime}" size string per the
// function handler's documented composition rule.
func sizeLabel(memoryMB int, runtime string) string {
	return strconv.Itoa(memoryMB) + "MB-" + runtime
}

func clusterInstanceType(a Attrs, def string) string {
	if cc, ok := a["cluster_config"].(map[string]interface{}); ok {
		if v, ok := cc["instance_type"].(string); ok && v != "" {
			return v
		}
	}
	return a.String("instance_type", def)
}

func brokerInstanceType(a Attrs, def string) string {
	if bi, ok := a["broker_node_group_info"].(map[string]interface{}); ok {
		if v, ok := bi["instance_type"].(string); ok && v != "" {
			return v
		}
	}
	return a.String("instance_type", def)
}
