package demo

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Provider is a directory entry.
type Provider struct {
	ID        int
	NPI       string
	Name      string
	Specialty string
	State     string
	Status    string
}

// Credential is a license or certification held by a provider.
type Credential struct {
	ID         string
	ProviderID int
	Kind       string
	ExpiresOn  time.Time
}

// Alert is a logged credential alert.
type Alert struct {
	ID           int
	ProviderID   int
	CredentialID string
	Severity     string
	Message      string
	CreatedAt    time.Time
}

// firstAlertID matches the id the offline mock hands out.
const firstAlertID = 101

// Roster holds the providers, credentials and alert log. It is safe for
// concurrent use.
type Roster struct {
	now func() time.Time

	providers   []Provider
	credentials []Credential

	mu     sync.Mutex
	alerts []Alert
	nextID int
}

// NewRoster returns the sample roster with expiry dates relative to
// today.
func NewRoster() *Roster {
	return NewRosterAt(time.Now())
}

// NewRosterAt returns the sample roster with expiry dates relative to
// now. The same now is used to compute remaining days.
func NewRosterAt(now time.Time) *Roster {
	today := truncateDay(now)
	in := func(days int) time.Time { return today.AddDate(0, 0, days) }

	return &Roster{
		now: func() time.Time { return now },
		providers: []Provider{
			{ID: 1, NPI: "1003000126", Name: "Dr. Sarah Smith", Specialty: "Cardiology", State: "MA", Status: "Active"},
			{ID: 2, NPI: "1013000125", Name: "Dr. James Chen", Specialty: "Pediatrics", State: "NY", Status: "Active"},
			{ID: 3, NPI: "1023000124", Name: "Dr. Maria Garcia", Specialty: "Family Medicine", State: "TX", Status: "Active"},
			{ID: 4, NPI: "1033000123", Name: "Dr. Priya Patel", Specialty: "Dermatology", State: "CA", Status: "Inactive"},
		},
		credentials: []Credential{
			{ID: "C-101", ProviderID: 1, Kind: "Medical License", ExpiresOn: in(20)},
			{ID: "C-102", ProviderID: 1, Kind: "DEA Registration", ExpiresOn: in(200)},
			{ID: "C-201", ProviderID: 2, Kind: "Board Certification", ExpiresOn: in(45)},
			{ID: "C-301", ProviderID: 3, Kind: "Malpractice Insurance", ExpiresOn: in(10)},
			{ID: "C-302", ProviderID: 3, Kind: "Medical License", ExpiresOn: in(75)},
			{ID: "C-401", ProviderID: 4, Kind: "Medical License", ExpiresOn: in(400)},
		},
		nextID: firstAlertID,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysRemaining returns the whole days until c expires.
func (r *Roster) DaysRemaining(c Credential) int {
	return int(c.ExpiresOn.Sub(truncateDay(r.now())).Hours() / 24)
}

// Search returns providers whose name, specialty or state contains query
// (case-insensitive). An empty query matches everyone.
func (r *Roster) Search(query string) []Provider {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Provider, 0)
	for _, p := range r.providers {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Specialty), q) ||
			strings.EqualFold(p.State, q) {
			out = append(out, p)
		}
	}
	return out
}

// ByNPI looks up a provider by NPI.
func (r *Roster) ByNPI(npi string) (Provider, error) {
	for _, p := range r.providers {
		if p.NPI == strings.TrimSpace(npi) {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("no provider with NPI %q", npi)
}

// ByID looks up a provider by id.
func (r *Roster) ByID(id int) (Provider, error) {
	for _, p := range r.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("no provider with id %d", id)
}

// CredentialsOf returns the credentials held by a provider.
func (r *Roster) CredentialsOf(providerID int) []Credential {
	out := make([]Credential, 0)
	for _, c := range r.credentials {
		if c.ProviderID == providerID {
			out = append(out, c)
		}
	}
	return out
}

// Expiring returns credentials expiring within windowDays, soonest first.
// Already expired credentials are included.
func (r *Roster) Expiring(windowDays int) []Credential {
	out := make([]Credential, 0)
	for _, c := range r.credentials {
		if r.DaysRemaining(c) <= windowDays {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresOn.Before(out[j].ExpiresOn) })
	return out
}

// LogAlert appends an alert and returns it with its id assigned.
func (r *Roster) LogAlert(a Alert) Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = r.now()
	r.alerts = append(r.alerts, a)
	return a
}

// OpenAlerts returns the logged alerts, optionally filtered. A zero
// providerID or an empty severity does not filter.
func (r *Roster) OpenAlerts(providerID int, severity string) []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if providerID != 0 && a.ProviderID != providerID {
			continue
		}
		if severity != "" && !strings.EqualFold(a.Severity, severity) {
			continue
		}
		out = append(out, a)
	}
	return out
}
