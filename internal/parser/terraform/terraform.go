// Package terraform parses Terraform HCL source into a canonical resource
// model. Expressions are evaluated eagerly and only literally: a reference
// to a variable, local, or another resource simply yields no value for
// that attribute, and the owning resource-kind handler's default applies.
// There is no variable/local resolution graph — the parser never fails
// hard, so an unresolved field degrading to a handler default is
// preferable to threading a full evaluation context through every
// resource kind.
package terraform

import (
	"math"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/parser/cloudres"
)

var defaultRegions = map[string]string{
	"aws":     "us-east-1",
	"google":  "us-central1",
	"azurerm": "eastus",
}

var zoneSuffix = regexp.MustCompile(`-[a-z]$`)

// Parse extracts a CanonicalResourceModel from Terraform HCL source.
// Malformed input yields whatever resource blocks parsed successfully
// before the failure — never an error to the caller.
func Parse(src []byte) *model.CanonicalResourceModel {
	m := model.NewCanonicalResourceModel()

	hclFile, diags := hclparse.NewParser().ParseHCL(src, "main.tf")
	if hclFile == nil || hclFile.Body == nil {
		logging.Warn("terraform parser: malformed HCL input, returning empty model")
		return m
	}
	if diags.HasErrors() {
		logging.Warn("terraform parser: HCL parse diagnostics, continuing with partial body")
	}

	body, ok := hclFile.Body.(*hclsyntax.Body)
	if !ok {
		return m
	}

	regions := make(map[string]string, len(defaultRegions))
	for k, v := range defaultRegions {
		regions[k] = v
	}

	var resourceBlocks []*hclsyntax.Block
	for _, block := range body.Blocks {
		switch block.Type {
		case "provider":
			if len(block.Labels) != 1 {
				continue
			}
			provider := block.Labels[0]
			attrs := extractBody(block.Body)
			if r, ok := attrs["region"].(string); ok && r != "" {
				regions[provider] = r
			} else if l, ok := attrs["location"].(string); ok && l != "" {
				regions[provider] = l
			}
		case "resource":
			resourceBlocks = append(resourceBlocks, block)
		}
	}

	for _, block := range resourceBlocks {
		if len(block.Labels) != 2 {
			continue
		}
		resourceType := block.Labels[0]
		name := block.Labels[1]
		if !cloudres.Known(resourceType) {
			continue
		}

		attrs := extractBody(block.Body)

		region := regions[providerPrefix(resourceType)]
		if v, ok := attrs["region"].(string); ok && v != "" {
			region = v
		} else if v, ok := attrs["location"].(string); ok && v != "" {
			region = v
		} else if v, ok := attrs["zone"].(string); ok && v != "" {
			region = normalizeZone(v)
		}

		count := 1
		if v, ok := attrs["count"]; ok {
			if n, ok := toInt(v); ok {
				count = n
			}
		}

		tags := extractTags(attrs["tags"])

		res := cloudres.Build(resourceType, name, region, count, cloudres.Attrs(attrs), tags)
		if res == nil {
			continue
		}
		m.Add(*res)
	}

	return m
}

func providerPrefix(resourceType string) string {
	switch {
	case strings.HasPrefix(resourceType, "aws_"):
		return "aws"
	case strings.HasPrefix(resourceType, "google_"):
		return "google"
	case strings.HasPrefix(resourceType, "azurerm_"):
		return "azurerm"
	}
	return ""
}

// normalizeZone strips a GCP zone's trailing "-<letter>" suffix so that
// "us-central1-a" becomes the region "us-central1".
func normalizeZone(zone string) string {
	return zoneSuffix.ReplaceAllString(zone, "")
}

func extractTags(v interface{}) map[string]string {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
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
	case float64:
		return int(n), true
	}
	return 0, false
}

// extractBody converts a body's own attributes plus, one level deep, the
// attributes of its nested blocks (settings, cluster_config,
// broker_node_group_info, …) into a plain map — enough for each
// resource-kind handler to find the handful of fields it consults, without
// a general expression/graph evaluator.
func extractBody(body *hclsyntax.Body) map[string]interface{} {
	out := make(map[string]interface{})
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			continue
		}
		out[name] = ctyToGo(val)
	}
	for _, block := range body.Blocks {
		out[block.Type] = extractBody(block.Body)
	}
	return out
}

func ctyToGo(val cty.Value) interface{} {
	if val.IsNull() || !val.IsWhollyKnown() {
		return nil
	}
	t := val.Type()
	switch {
	case t == cty.String:
		return val.AsString()
	case t == cty.Bool:
		return val.True()
	case t == cty.Number:
		bf := val.AsBigFloat()
		f, _ := bf.Float64()
		if f == math.Trunc(f) {
			return int(f)
		}
		return f
	case t.IsTupleType(), t.IsListType(), t.IsSetType():
		out := make([]interface{}, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			out = append(out, ctyToGo(v))
		}
		return out
	case t.IsObjectType(), t.IsMapType():
		out := map[string]interface{}{}
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			out[k.AsString()] = ctyToGo(v)
		}
		return out
	}
	return nil
}
