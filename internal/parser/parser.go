// Package parser dispatches an IaC payload to the format-specific parser
// (Terraform HCL, Ansible YAML) and returns a canonical resource model.
// Per the parser contract, this never returns an error: unsupported
// formats and malformed input both yield an empty model.
package parser

import (
	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/parser/ansible"
	"github.com/finopsguard/guardrail/internal/parser/terraform"
)

// Format identifies the supported IaC source formats.
type Format string

const (
	FormatTerraform Format = "terraform"
	FormatAnsible   Format = "ansible"
)

// Parse turns IaC source text into a CanonicalResourceModel. Unknown
// formats yield an empty model and a warning log, consistent with the
// "never fail hard" contract shared with the format-specific parsers.
func Parse(payloadText []byte, format Format) *model.CanonicalResourceModel {
	switch format {
	case FormatTerraform:
		return terraform.Parse(payloadText)
	case FormatAnsible:
		return ansible.Parse(payloadText)
	default:
		logging.Warn("parser: unsupported iac_type, returning empty model")
		return model.NewCanonicalResourceModel()
	}
}
