package policy

import "github.com/finopsguard/guardrail/internal/model"

// DefaultPolicies returns the three policies loaded into a fresh store at
// startup.
func DefaultPolicies() []model.Policy {
	budget := decimalPtr(1000)

	return []model.Policy{
		{
			ID:          "default_monthly_budget",
			Name:        "Default Monthly Budget",
			Description: "Default monthly budget limit",
			Budget:      budget,
			OnViolation: model.SeverityAdvisory,
			Enabled:     true,
		},
		{
			ID:          "no_gpu_in_dev",
			Name:        "No GPU Instances in Development",
			Description: "Prevent GPU instances in development environment",
			Expression: &model.PolicyExpression{
				Operator: model.OperatorAnd,
				Rules: []model.PolicyRule{
					{Field: "resource.type", Operator: model.OpEquals, Value: "aws_gpu_instance"},
					{Field: "environment", Operator: model.OpEquals, Value: "dev"},
				},
			},
			OnViolation: model.SeverityAdvisory,
			Enabled:     true,
		},
		{
			ID:          "no_large_instances_in_dev",
			Name:        "No Large Instances in Development",
			Description: "Prevent large instance types in development environment",
			Expression: &model.PolicyExpression{
				Operator: model.OperatorAnd,
				Rules: []model.PolicyRule{
					{Field: "resource.size", Operator: model.OpIn, Value: []string{"m5.large", "m5.xlarge", "m5.2xlarge", "c5.large", "c5.xlarge"}},
					{Field: "environment", Operator: model.OpEquals, Value: "dev"},
				},
			},
			OnViolation: model.SeverityBlock,
			Enabled:     true,
		},
	}
}
