package schemas

import (
	"encoding/json"
	"fmt"
	"strings"
)

// -- Scan Query --

// QueryKind classifies the shape of a submitted target string. It is a hint
// for routing and labeling only; the authoritative signal of what was actually
// resolved is which sections of the ScanResult came back populated.
type QueryKind string

const (
	KindDomain   QueryKind = "domain"
	KindIP       QueryKind = "ip"
	KindEmail    QueryKind = "email"
	KindPhone    QueryKind = "phone"
	KindUsername QueryKind = "username"
	KindUnknown  QueryKind = "unknown"
)

// ScanQuery is the raw target string a user submitted plus its inferred kind.
// It is immutable once a scan starts.
type ScanQuery struct {
	Raw  string    `json:"raw"`
	Kind QueryKind `json:"kind"`
}

// -- Scan Result --

// ScanResult is the normalized response of the Scan Service. Every section is
// independently optional; an absent section means the corresponding source
// returned nothing (or was never consulted for this target kind). The JSON
// tags match the wire names the Scan Service emits.
type ScanResult struct {
	IPInfo      *IPInfo      `json:"ipapi,omitempty"`
	InternetDB  *InternetDB  `json:"internetdb,omitempty"`
	ThreatIntel *ThreatIntel `json:"threatfox,omitempty"`
	Blacklist   *Blacklist   `json:"talos,omitempty"`
	Tor         *TorStatus   `json:"tor,omitempty"`
	Rank        *RankInfo    `json:"tranco,omitempty"`
	EmailBreach *EmailBreach `json:"email_scan,omitempty"`
	PhoneInfo   *PhoneInfo   `json:"phone_scan,omitempty"`
	// Usernames is a pointer-to-slice so a present-but-empty list (checked,
	// nothing found) stays distinguishable from an absent section (never
	// checked).
	Usernames *[]PlatformHit `json:"username_scan,omitempty"`

	// Error carries an explicit failure message from the Scan Service. A
	// response with Error set must never reach the graph builder.
	Error string `json:"error,omitempty"`
}

// IPInfo bundles the DNS/geo record and the per-IP ownership records.
type IPInfo struct {
	Records []IPRecord `json:"ip_info,omitempty"`
	DNS     *DNSInfo   `json:"dns_info,omitempty"`
}

// DNSInfo wraps the resolver record as the Scan Service nests it.
type DNSInfo struct {
	DNS DNSRecord `json:"dns"`
}

// DNSRecord holds the resolved address and its coarse geo label.
type DNSRecord struct {
	IP  string `json:"ip"`
	Geo string `json:"geo"`
}

// IPRecord is one per-IP ownership record.
type IPRecord struct {
	Query       string `json:"query"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	Timezone    string `json:"timezone"`
	ISP         string `json:"isp"`
	Org         string `json:"org"`
	AS          string `json:"as"`
}

// InternetDB holds passive exposure data for a single address.
type InternetDB struct {
	Hostnames []string `json:"hostnames,omitempty"`
	Ports     []int    `json:"ports,omitempty"`
	CVEs      []CVERef `json:"cves,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Empty reports whether the section carries nothing worth a node.
func (db *InternetDB) Empty() bool {
	return db == nil || (len(db.Hostnames) == 0 && len(db.Ports) == 0 && len(db.CVEs) == 0 && len(db.Tags) == 0)
}

// CVERef pairs a CVE identifier with its reference URL. The Scan Service
// emits each pair as a one-key JSON object ({"CVE-2021-1234": "https://..."}),
// which UnmarshalJSON flattens into the typed form.
type CVERef struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

func (c *CVERef) UnmarshalJSON(data []byte) error {
	var pair map[string]string
	if err := json.Unmarshal(data, &pair); err == nil && len(pair) == 1 {
		for id, ref := range pair {
			c.ID = id
			c.Reference = ref
		}
		return nil
	}
	// Also accept the already-flat form for round-tripping.
	type flat CVERef
	var f flat
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("cve reference has neither pair nor flat shape: %w", err)
	}
	*c = CVERef(f)
	return nil
}

// ThreatIntel is a single indicator-of-compromise record.
type ThreatIntel struct {
	ID         string `json:"id,omitempty"`
	IOC        string `json:"ioc,omitempty"`
	ThreatType string `json:"threat_type,omitempty"`
	Malware    string `json:"malware,omitempty"`
	Confidence int    `json:"confidence_level,omitempty"`
	Reference  string `json:"reference,omitempty"`
	Link       string `json:"link,omitempty"`
}

// Blacklist is the reputation source's verdict.
type Blacklist struct {
	Blacklisted bool `json:"blacklisted"`
}

// TorStatus flags a known Tor exit node.
type TorStatus struct {
	ExitNode bool `json:"exit_node"`
}

// RankInfo carries a popularity rank for a domain.
type RankInfo struct {
	Rank int `json:"rank"`
}

// EmailBreach aggregates breach-database findings for one address. When
// Exposed is false the remaining fields are not trustworthy.
type EmailBreach struct {
	Exposed          bool               `json:"exposed"`
	Breaches         []BreachRecord     `json:"breaches,omitempty"`
	PasswordStrength []PasswordStrength `json:"password_strength,omitempty"`
	Risk             []BreachRisk       `json:"risk,omitempty"`
}

// BreachRecord describes one known breach the address appeared in.
type BreachRecord struct {
	Breach         string `json:"breach"`
	Details        string `json:"details"`
	ExposedData    string `json:"xposed_data"`
	ExposedRecords int64  `json:"xposed_records"`
	References     string `json:"references"`
}

// PasswordStrength buckets how recovered credentials were stored.
type PasswordStrength struct {
	EasyToCrack int `json:"EasyToCrack"`
	PlainText   int `json:"PlainText"`
	StrongHash  int `json:"StrongHash"`
	Unknown     int `json:"Unknown"`
}

// BreachRisk is the breach database's own risk assessment.
type BreachRisk struct {
	Label string `json:"risk_label"`
	Score int    `json:"risk_score"`
}

// PhoneInfo is a phone-number lookup result. Valid=false is the explicit
// "not found" sub-state: none of the other fields are trustworthy then.
type PhoneInfo struct {
	Valid               bool   `json:"valid"`
	Number              string `json:"number,omitempty"`
	LocalFormat         string `json:"local_format,omitempty"`
	InternationalFormat string `json:"international_format,omitempty"`
	CountryCode         string `json:"country_code,omitempty"`
	CountryName         string `json:"country_name,omitempty"`
	Location            string `json:"location,omitempty"`
	Carrier             string `json:"carrier,omitempty"`
	LineType            string `json:"line_type,omitempty"`
}

// PlatformHit is one username-presence hit on a platform.
type PlatformHit struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

// Confirmed reports whether the hit carries a usable profile URL. Hits
// without one are soft matches and are excluded before graph construction.
func (h PlatformHit) Confirmed() bool {
	return strings.TrimSpace(h.URL) != ""
}

// ConfirmedHits filters a platform-hit list down to confirmed entries.
func ConfirmedHits(hits []PlatformHit) []PlatformHit {
	out := make([]PlatformHit, 0, len(hits))
	for _, h := range hits {
		if h.Confirmed() {
			out = append(out, h)
		}
	}
	return out
}
