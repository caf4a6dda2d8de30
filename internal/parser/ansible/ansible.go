// Package ansible parses Ansible playbooks (YAML) into a canonical
// resource model. A playbook is either one play or a list of plays; each
// play's tasks and handlers are scanned for cloud-resource modules and
// routed to the same per-cloud handler tables the Terraform parser uses.
package ansible

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/parser/cloudres"
)

// reservedTaskKeys are task-level keys that are never a module name.
var reservedTaskKeys = map[string]struct{}{
	"name":     {},
	"vars":     {},
	"when":     {},
	"loop":     {},
	"register": {},
	"tags":     {},
}

// moduleSpec describes how one Ansible module maps onto a canonical
// resource type and how its parameters translate to the attribute names
// the shared cloudres handlers expect.
type moduleSpec struct {
	resourceType string
	translate    func(params map[string]interface{}) map[string]interface{}
}

func passthrough(params map[string]interface{}) map[string]interface{} { return params }

func rename(mapping map[string]string) func(map[string]interface{}) map[string]interface{} {
	return func(params map[string]interface{}) map[string]interface{} {
		out := make(map[string]interface{}, len(params))
		for k, v := range params {
			if nk, ok := mapping[k]; ok {
				out[nk] = v
			} else {
				out[k] = v
			}
		}
		return out
	}
}

var moduleTable = map[string]moduleSpec{
	"ec2_instance":      {"aws_instance", passthrough},
	"ec2":               {"aws_instance", passthrough},
	"amazon.aws.ec2_instance": {"aws_instance", passthrough},

	"rds_instance": {"aws_db_instance", rename(map[string]string{"db_instance_class": "instance_class"})},
	"rds":          {"aws_db_instance", rename(map[string]string{"db_instance_class": "instance_class", "instance_type": "instance_class"})},

	"s3_bucket": {"aws_s3_bucket", passthrough},
	"aws_s3":    {"aws_s3_bucket", passthrough},

	"lambda_function": {"aws_lambda_function", passthrough},

	// Per the resolved naming: the Ansible ELB/ALB handlers register the
	// real Terraform AWS provider resource type "aws_lb", not a
	// provider-specific alias, so both parsers feed one pricing key.
	"elb_application_lb": {"aws_lb", rename(map[string]string{"type": "load_balancer_type"})},
	"elb_classic_lb":     {"aws_lb", rename(map[string]string{"type": "load_balancer_type"})},
	"ec2_elb":            {"aws_lb", rename(map[string]string{"type": "load_balancer_type"})},

	"dynamodb_table": {"aws_dynamodb_table", passthrough},

	"eks_cluster": {"aws_eks_cluster", passthrough},

	"elasticache": {"aws_elasticache_cluster", passthrough},

	"gcp_compute_instance": {"google_compute_instance", passthrough},
	"gce_instance":         {"google_compute_instance", passthrough},

	"gcp_sql_instance": {"google_sql_database_instance", passthrough},

	"gcp_storage_bucket": {"google_storage_bucket", passthrough},

	"gcp_cloudfunctions": {"google_cloudfunctions_function", passthrough},

	"azure_rm_virtualmachine": {"azurerm_virtual_machine", passthrough},

	"azure_rm_storageaccount": {"azurerm_storage_account", passthrough},

	"azure_rm_sqldatabase": {"azurerm_mssql_database", passthrough},

	"azure_rm_akscluster": {"azurerm_kubernetes_cluster", passthrough},
}

// moduleForName resolves an Ansible module name to its canonical resource
// mapping. Modules outside moduleTable are unknown and silently skipped —
// they are outside the priced universe, per the parser contract.
func moduleForName(module string) (moduleSpec, bool) {
	spec, ok := moduleTable[module]
	return spec, ok
}

var templateVar = regexp.MustCompile(`{{\s*([a-zA-Z0-9_]+)\s*}}`)

// substitute replaces simple "{{ var_name }}" placeholders against the
// merged variable dictionary. Nested or filtered templates ("{{ x | y }}",
// "{{ x.y }}") are left untouched.
func substitute(value interface{}, vars map[string]interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	m := templateVar.FindStringSubmatch(s)
	if m == nil {
		return value
	}
	if len(s) == len(m[0]) {
		if v, ok := vars[m[1]]; ok {
			return v
		}
		return value
	}
	return templateVar.ReplaceAllStringFunc(s, func(match string) string {
		sub := templateVar.FindStringSubmatch(match)
		if sub == nil {
			return match
		}
		if v, ok := vars[sub[1]]; ok {
			return fmt.Sprintf("%v", v)
		}
		return match
	})
}

// Parse extracts a CanonicalResourceModel from an Ansible playbook. Malformed
// YAML yields an empty model — never an error to the caller.
func Parse(src []byte) *model.CanonicalResourceModel {
	m := model.NewCanonicalResourceModel()

	var raw interface{}
	if err := yaml.Unmarshal(src, &raw); err != nil {
		logging.Warn("ansible parser: malformed YAML input, returning empty model")
		return m
	}

	var plays []map[string]interface{}
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if play, ok := toStringMap(item); ok {
				plays = append(plays, play)
			}
		}
	case map[string]interface{}:
		plays = append(plays, v)
	default:
		return m
	}

	for _, play := range plays {
		playVars := toStringMapOr(play["vars"])
		for _, section := range []string{"tasks", "handlers"} {
			tasks, _ := play[section].([]interface{})
			for _, t := range tasks {
				task, ok := toStringMap(t)
				if !ok {
					continue
				}
				processTask(m, task, playVars)
			}
		}
	}

	return m
}

func processTask(m *model.CanonicalResourceModel, task map[string]interface{}, playVars map[string]interface{}) {
	taskVars := toStringMapOr(task["vars"])
	merged := make(map[string]interface{}, len(playVars)+len(taskVars))
	for k, v := range playVars {
		merged[k] = v
	}
	for k, v := range taskVars {
		merged[k] = v
	}

	var moduleName string
	var rawParams interface{}
	for key, val := range task {
		if _, reserved := reservedTaskKeys[key]; reserved {
			continue
		}
		moduleName = key
		rawParams = val
		break
	}
	if moduleName == "" {
		return
	}

	spec, ok := moduleForName(moduleName)
	if !ok {
		return
	}

	params, ok := toStringMap(rawParams)
	if !ok {
		return
	}
	for k, v := range params {
		params[k] = substitute(v, merged)
	}
	params = spec.translate(params)

	name, _ := params["name"].(string)
	if name == "" {
		name, _ = task["name"].(string)
	}
	if name == "" {
		name = moduleName
	}

	region, _ := params["region"].(string)
	if region == "" {
		region, _ = params["location"].(string)
	}
	if region == "" {
		region = defaultRegionFor(spec.resourceType)
	}

	count := 1
	if v, ok := params["count"]; ok {
		if n, ok := toInt(v); ok {
			count = n
		}
	}

	tags := toTags(params["tags"])

	res := cloudres.Build(spec.resourceType, name, region, count, cloudres.Attrs(params), tags)
	if res == nil {
		return
	}
	m.Add(*res)
}

func defaultRegionFor(resourceType string) string {
	switch {
	case strings.HasPrefix(resourceType, "aws_"):
		return "us-east-1"
	case strings.HasPrefix(resourceType, "google_"):
		return "us-central1"
	case strings.HasPrefix(resourceType, "azurerm_"):
		return "eastus"
	}
	return "global"
}

func toStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	}
	return nil, false
}

func toStringMapOr(v interface{}) map[string]interface{} {
	m, ok := toStringMap(v)
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

func toTags(v interface{}) map[string]string {
	m, ok := toStringMap(v)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
