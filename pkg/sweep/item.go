package sweep

import (
	"fmt"
	"math"
	"strconv"
)

// Severity is the alert tier of an expiring credential.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Classify maps days remaining to a severity: up to 30 days is critical,
// up to 60 high, up to 90 medium, anything later low.
func Classify(daysRemaining int) Severity {
	switch {
	case daysRemaining <= 30:
		return SeverityCritical
	case daysRemaining <= 60:
		return SeverityHigh
	case daysRemaining <= 90:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Defaults applied to fields missing from a fetched item.
const (
	DefaultDaysRemaining = 90
	UnknownCredentialID  = "unknown"
)

// Item is one expiring credential as returned by the credential database.
type Item struct {
	// ProviderID is passed through to the alerting endpoint unchanged; it
	// may be a number or a string depending on the backend.
	ProviderID    any    `json:"provider_id"`
	Name          string `json:"name"`
	Credential    string `json:"credential"`
	CredentialID  string `json:"credential_id"`
	DaysRemaining int    `json:"days_remaining"`
}

// Message is the human-readable alert text for the item.
func (it Item) Message() string {
	return fmt.Sprintf("Credential %s for %s expires in %d days.", it.Credential, it.Name, it.DaysRemaining)
}

func (it Item) String() string {
	return fmt.Sprintf("provider %v credential %q", it.ProviderID, it.Credential)
}

// decodeItems extracts the "expiring" list from a tool result. Anything
// that is not a mapping with a list under "expiring" yields no items.
// Entries that are not mappings are reported as bad.
func decodeItems(result any) (items []Item, bad []string) {
	m, ok := result.(map[string]any)
	if !ok {
		return nil, nil
	}
	list, ok := m["expiring"].([]any)
	if !ok {
		return nil, nil
	}

	items = make([]Item, 0, len(list))
	for i, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			bad = append(bad, fmt.Sprintf("item %d: expected a mapping, got %T", i, raw))
			continue
		}
		items = append(items, decodeItem(entry))
	}
	return items, bad
}

func decodeItem(m map[string]any) Item {
	it := Item{
		ProviderID:    m["provider_id"],
		Name:          stringField(m["name"]),
		Credential:    stringField(m["credential"]),
		CredentialID:  UnknownCredentialID,
		DaysRemaining: DefaultDaysRemaining,
	}
	if v, ok := m["credential_id"]; ok && v != nil {
		it.CredentialID = stringField(v)
	}
	if days, ok := intField(m["days_remaining"]); ok {
		it.DaysRemaining = days
	}
	return it
}

func stringField(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func intField(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(math.Floor(n)), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
