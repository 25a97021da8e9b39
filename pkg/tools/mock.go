package tools

import "encoding/json"

// MockResponse returns the canned payload for an (endpoint, operation)
// pair. Unknown pairs get a generic error payload. The function is pure:
// the same inputs always produce an equal result, and the returned value is
// freshly allocated on every call.
func MockResponse(endpoint, operation string, args map[string]any) map[string]any {
	switch endpoint {
	case EndpointDirectory:
		switch operation {
		case OpSearchProviders:
			return map[string]any{
				"providers": []any{
					map[string]any{"npi": "1234567890", "name": "Dr. Jane Doe", "taxonomy": "Cardiology"},
				},
			}
		case OpGetProviderByNPI:
			return map[string]any{"npi": args["npi"], "name": "Dr. Jane Doe", "licenses": []any{}}
		}

	case EndpointCredentials:
		switch operation {
		case OpListExpiringCredentials:
			return map[string]any{
				"expiring": []any{
					map[string]any{
						"provider_id":    1,
						"name":           "Dr. Jane Doe",
						"credential":     "Medical License",
						"days_remaining": 25,
					},
				},
			}
		case OpGetProviderSnapshot:
			return map[string]any{"name": "Dr. Jane Doe", "status": "Active", "credentials": []any{}}
		}

	case EndpointAlerts:
		switch operation {
		case OpLogAlert:
			return map[string]any{"success": true, "alert_id": 101}
		case OpGetOpenAlerts:
			return map[string]any{"alerts": []any{}}
		}
	}

	return map[string]any{"error": "Mock data not found for this tool"}
}

// MockCatalog lists the operations MockResponse knows about, in the shape
// of a discovered catalog. It is advertised to the model while no live
// catalog is available.
func MockCatalog() []Descriptor {
	return []Descriptor{
		mockDescriptor(EndpointAlerts, OpGetOpenAlerts,
			"List open credential alerts, optionally filtered by provider or severity.",
			`{"type":"object","properties":{"provider_id":{"type":"integer","description":"Provider id to filter on"},"severity":{"type":"string","enum":["critical","high","medium","low"]}}}`),
		mockDescriptor(EndpointAlerts, OpLogAlert,
			"Record an alert about an expiring credential.",
			`{"type":"object","properties":{"provider_id":{"type":"integer"},"credential_id":{"type":"string"},"severity":{"type":"string","enum":["critical","high","medium","low"]},"message":{"type":"string"}},"required":["provider_id","severity","message"]}`),
		mockDescriptor(EndpointDirectory, OpGetProviderByNPI,
			"Look up a provider by National Provider Identifier.",
			`{"type":"object","properties":{"npi":{"type":"string","description":"10-digit NPI"}},"required":["npi"]}`),
		mockDescriptor(EndpointCredentials, OpGetProviderSnapshot,
			"Return a provider's status and credential summary.",
			`{"type":"object","properties":{"provider_id":{"type":"integer"}},"required":["provider_id"]}`),
		mockDescriptor(EndpointCredentials, OpListExpiringCredentials,
			"List credentials expiring within a window of days.",
			`{"type":"object","properties":{"window_days":{"type":"integer","description":"Look-ahead window in days"}}}`),
		mockDescriptor(EndpointDirectory, OpSearchProviders,
			"Search the provider directory by name, specialty or location.",
			`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`),
	}
}

func mockDescriptor(endpoint, op, description, schema string) Descriptor {
	return Descriptor{
		Name:        op,
		Endpoint:    endpoint,
		RemoteName:  op,
		Description: description,
		InputSchema: json.RawMessage(schema),
	}
}
