package provider

import (
	"encoding/json"

	"github.com/rhuss/credentialwatch/pkg/tools"
)

// emptyObjectSchema is sent for tools that declare no input schema; some
// backends reject function definitions without parameters.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// ToolsFromCatalog converts catalog descriptors into function tool
// definitions.
func ToolsFromCatalog(descriptors []tools.Descriptor) []ProviderTool {
	out := make([]ProviderTool, 0, len(descriptors))
	for _, d := range descriptors {
		params := d.InputSchema
		if len(params) == 0 {
			params = emptyObjectSchema
		}
		out = append(out, ProviderTool{
			Type: "function",
			Function: ProviderFunctionDef{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return out
}
