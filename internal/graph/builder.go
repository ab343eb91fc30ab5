// Package graph maps a normalized scan result onto a renderable node/edge
// graph. Build is pure and deterministic: no I/O, no clock, no randomness.
// Each optional section of the payload is handled independently, so any
// combination of present/absent sections yields a well-formed graph with no
// dangling edges.
package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/layout"
	"github.com/xkilldash9x/recongraph/internal/taxonomy"
)

// Well-known node IDs. Leaf nodes of multi-record sections append their
// record index (e.g. "breach-0").
const (
	RootNodeID             = "query"
	DNSNodeID              = "dns-ip"
	InternetDBNodeID       = "internetdb"
	ThreatIntelNodeID      = "threat-intel"
	BlacklistNodeID        = "blacklist"
	TorNodeID              = "tor"
	RankNodeID             = "rank"
	BreachCheckNodeID      = "breach-check"
	PasswordStrengthNodeID = "password-strength"
	PhoneStatusNodeID      = "phone-status"
	PhoneValidityNodeID    = "phone-validity"
	PhoneLocationNodeID    = "phone-location"
	PhoneCarrierNodeID     = "phone-carrier"
	PhoneLineTypeNodeID    = "phone-line-type"
	UsernameGroupNodeID    = "username-presence"
	UsernameEmptyNodeID    = "username-empty"
)

// Fixed anchors for section nodes hanging directly off the root. Leaves of
// multi-record sections are placed by the layout strategies relative to
// these.
var sectionAnchors = map[string]schemas.Position{
	DNSNodeID:              {X: 0, Y: 150},
	InternetDBNodeID:       {X: 0, Y: 250},
	ThreatIntelNodeID:      {X: 200, Y: 200},
	BlacklistNodeID:        {X: -200, Y: 200},
	TorNodeID:              {X: -300, Y: 150},
	RankNodeID:             {X: 300, Y: 150},
	BreachCheckNodeID:      {X: 200, Y: 200},
	PasswordStrengthNodeID: {X: -200, Y: 200},
	PhoneStatusNodeID:      {X: 50, Y: 150},
	PhoneValidityNodeID:    {X: 10, Y: 60},
	UsernameGroupNodeID:    {X: 0, Y: 150},
	UsernameEmptyNodeID:    {X: 250, Y: 150},
}

// Build maps one (query, result) pair to a fresh Graph. The root node is
// always emitted; every present, non-empty section contributes nodes hanging
// off it. A nil result produces a root-only graph: callers must treat that as
// "could not visualize", never as "target is clean".
func Build(query schemas.ScanQuery, result *schemas.ScanResult) schemas.Graph {
	b := &builder{}

	b.addNode(RootNodeID, schemas.CategoryUnknownInput, query.Raw, schemas.Position{}, schemas.NodeDetail{
		Value:       query.Raw,
		Description: query.Raw,
	})

	if result == nil {
		return b.graph()
	}

	b.mapIPInfo(result.IPInfo, result.ThreatIntel != nil)
	b.mapThreatIntel(result.ThreatIntel)
	b.mapInternetDB(result.InternetDB)
	b.mapBlacklist(result.Blacklist)
	b.mapTor(result.Tor)
	b.mapRank(result.Rank)
	b.mapEmailBreach(result.EmailBreach)
	b.mapPhone(result.PhoneInfo)
	b.mapUsernames(result.Usernames)

	return b.graph()
}

type builder struct {
	nodes []schemas.GraphNode
	edges []schemas.GraphEdge
}

func (b *builder) graph() schemas.Graph {
	return schemas.Graph{Nodes: b.nodes, Edges: b.edges}
}

// addNode appends a node, filling style and default risk from the taxonomy.
// An explicit RiskLevel in the detail wins over the category default.
func (b *builder) addNode(id string, category schemas.NodeCategory, label string, pos schemas.Position, detail schemas.NodeDetail) {
	style := taxonomy.Lookup(category)
	if detail.RiskLevel == "" {
		detail.RiskLevel = style.DefaultRisk
	}
	b.nodes = append(b.nodes, schemas.GraphNode{
		ID:       id,
		Category: category,
		Label:    label,
		Position: pos,
		Class:    style.Class,
		Detail:   detail,
	})
}

func (b *builder) link(source, target string) {
	b.addEdge(source, target, true)
}

func (b *builder) addEdge(source, target string, animated bool) {
	b.edges = append(b.edges, schemas.GraphEdge{
		ID:       fmt.Sprintf("e-%s-%s", source, target),
		Source:   source,
		Target:   target,
		Animated: animated,
	})
}

func anchor(id string) schemas.Position {
	return sectionAnchors[id]
}

// -- Section mappers --

func (b *builder) mapIPInfo(info *schemas.IPInfo, haveThreatIntel bool) {
	if info == nil {
		return
	}

	if info.DNS != nil {
		label := info.DNS.DNS.Geo
		if label == "" {
			label = "Unknown Location"
		}
		b.addNode(DNSNodeID, schemas.CategoryIP, label, anchor(DNSNodeID), schemas.NodeDetail{
			Value:       info.DNS.DNS.IP,
			Description: "Geo: " + info.DNS.DNS.Geo,
		})
		b.link(RootNodeID, DNSNodeID)
	}

	root := schemas.Position{}
	for i, rec := range info.Records {
		id := fmt.Sprintf("ip-info-%d", i)
		b.addNode(id, schemas.CategoryIP, rec.AS, layout.Row(root, i, len(info.Records), layout.Spacing), schemas.NodeDetail{
			Value:     rec.Query,
			RiskLevel: schemas.RiskLow,
			Description: joinLines(
				"ISP: "+rec.ISP,
				"ORG: "+rec.Org,
				"Region: "+rec.Region,
				"Region Name: "+rec.RegionName,
				"Country: "+rec.Country,
				"Time Zone: "+rec.Timezone,
				"Zip: "+rec.Zip,
			),
		})
		b.link(RootNodeID, id)
		// An indicator of compromise on the target taints every resolved
		// address, so each address links to the one threat-intel node.
		if haveThreatIntel {
			b.link(id, ThreatIntelNodeID)
		}
	}
}

func (b *builder) mapThreatIntel(ti *schemas.ThreatIntel) {
	if ti == nil {
		return
	}
	lines := []string{"Malware: " + ti.Malware}
	if ti.Link != "" {
		lines = append(lines, "Link: "+htmlLink(ti.Link, ti.Link))
	}
	b.addNode(ThreatIntelNodeID, schemas.CategoryVulnerability, "Threat Intel", anchor(ThreatIntelNodeID), schemas.NodeDetail{
		Value:       ti.IOC,
		Description: joinLines(lines...),
	})
	b.link(RootNodeID, ThreatIntelNodeID)
}

func (b *builder) mapInternetDB(db *schemas.InternetDB) {
	if db.Empty() {
		return
	}

	var parts []string
	if len(db.Hostnames) > 0 {
		links := make([]string, len(db.Hostnames))
		for i, h := range db.Hostnames {
			links[i] = htmlLink("http://"+h, h)
		}
		parts = append(parts, "Hostnames:<br/>"+strings.Join(links, "<br/>"))
	}
	if len(db.Ports) > 0 {
		ports := make([]string, len(db.Ports))
		for i, p := range db.Ports {
			ports[i] = strconv.Itoa(p)
		}
		parts = append(parts, "Ports: "+strings.Join(ports, ", "))
	}
	if len(db.CVEs) > 0 {
		links := make([]string, len(db.CVEs))
		for i, cve := range db.CVEs {
			links[i] = htmlLink(cve.Reference, cve.ID)
		}
		parts = append(parts, "CVEs:<br/>"+strings.Join(links, "<br/>"))
	}
	if len(db.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(db.Tags, ", "))
	}

	b.addNode(InternetDBNodeID, schemas.CategoryVulnerability, "InternetDB", anchor(InternetDBNodeID), schemas.NodeDetail{
		Value:       "Internet Database",
		RiskLevel:   schemas.RiskMedium,
		Description: joinLines(parts...),
	})
	b.link(RootNodeID, InternetDBNodeID)
}

func (b *builder) mapBlacklist(bl *schemas.Blacklist) {
	if bl == nil {
		return
	}
	risk := schemas.RiskLow
	if bl.Blacklisted {
		risk = schemas.RiskHigh
	}
	b.addNode(BlacklistNodeID, schemas.CategorySecurityMetric, "Blacklist Check", anchor(BlacklistNodeID), schemas.NodeDetail{
		Value:       "Blacklisted Status",
		RiskLevel:   risk,
		Description: fmt.Sprintf("Blacklisted: %t", bl.Blacklisted),
	})
	b.link(RootNodeID, BlacklistNodeID)
}

func (b *builder) mapTor(tor *schemas.TorStatus) {
	if tor == nil {
		return
	}
	risk := schemas.RiskLow
	if tor.ExitNode {
		risk = schemas.RiskHigh
	}
	b.addNode(TorNodeID, schemas.CategorySecurityMetric, "Tor", anchor(TorNodeID), schemas.NodeDetail{
		Value:       "Exit Node",
		RiskLevel:   risk,
		Description: fmt.Sprintf("Exit Node: %t", tor.ExitNode),
	})
	b.link(RootNodeID, TorNodeID)
}

func (b *builder) mapRank(rank *schemas.RankInfo) {
	if rank == nil {
		return
	}
	b.addNode(RankNodeID, schemas.CategoryDomain, "Popularity Rank", anchor(RankNodeID), schemas.NodeDetail{
		Value:       strconv.Itoa(rank.Rank),
		RiskLevel:   schemas.RiskLow,
		Description: fmt.Sprintf("Popularity rank: %d", rank.Rank),
	})
	b.link(RootNodeID, RankNodeID)
}

func (b *builder) mapEmailBreach(eb *schemas.EmailBreach) {
	if eb == nil || !eb.Exposed || len(eb.Breaches) == 0 {
		return
	}

	detail := schemas.NodeDetail{
		Value:       "Email Breaches",
		Description: fmt.Sprintf("Found in %d known breach(es)", len(eb.Breaches)),
	}
	if len(eb.Risk) > 0 {
		detail.RiskLevel = riskFromLabel(eb.Risk[0].Label)
		detail.Description = joinLines(
			detail.Description,
			"Risk Level: "+eb.Risk[0].Label,
			fmt.Sprintf("Risk Score: %d", eb.Risk[0].Score),
		)
	}
	groupPos := anchor(BreachCheckNodeID)
	b.addNode(BreachCheckNodeID, schemas.CategoryBreach, "Data Breach Check", groupPos, detail)
	b.link(RootNodeID, BreachCheckNodeID)

	for i, breach := range eb.Breaches {
		id := fmt.Sprintf("breach-%d", i)
		b.addNode(id, schemas.CategoryBreach, breach.Breach, layout.Ring(groupPos, i, len(eb.Breaches), layout.RingRadius), schemas.NodeDetail{
			Value: breach.Breach,
			Description: joinLines(
				"Details: "+breach.Details,
				"Exposed Data: "+breach.ExposedData,
				fmt.Sprintf("Records Exposed: %d", breach.ExposedRecords),
				htmlLink(breach.References, "More Info"),
			),
		})
		b.link(BreachCheckNodeID, id)
	}

	if len(eb.PasswordStrength) > 0 {
		var lines []string
		for _, s := range eb.PasswordStrength {
			lines = append(lines,
				fmt.Sprintf("Easy To Crack: %d", s.EasyToCrack),
				fmt.Sprintf("Plain Text: %d", s.PlainText),
				fmt.Sprintf("Strong Hash: %d", s.StrongHash),
				fmt.Sprintf("Unknown: %d", s.Unknown),
			)
		}
		b.addNode(PasswordStrengthNodeID, schemas.CategorySecurityMetric, "Password Strength", anchor(PasswordStrengthNodeID), schemas.NodeDetail{
			Value:       "Password Strength Overview",
			Description: joinLines(lines...),
		})
		b.link(RootNodeID, PasswordStrengthNodeID)
	}
}

func (b *builder) mapPhone(phone *schemas.PhoneInfo) {
	if phone == nil {
		return
	}

	// "Not found" is the one phone state that stays user-visible: an
	// error-styled leaf, so the user can tell "checked, nothing" apart from
	// "never checked".
	if !phone.Valid {
		b.addNode(PhoneStatusNodeID, schemas.CategoryPhone, "Phone Lookup", anchor(PhoneStatusNodeID), schemas.NodeDetail{
			Value:       "Phone Scan Result",
			RiskLevel:   schemas.RiskHigh,
			Description: "Record Not Found! The phone number may be invalid. Try adding the country code.",
		})
		b.link(RootNodeID, PhoneStatusNodeID)
		return
	}

	validityPos := anchor(PhoneValidityNodeID)
	b.addNode(PhoneValidityNodeID, schemas.CategoryPhone, "Valid", validityPos, schemas.NodeDetail{
		Value:       "validity info",
		RiskLevel:   schemas.RiskLow,
		Description: "Validity: Valid",
	})
	b.link(RootNodeID, PhoneValidityNodeID)

	// Location, carrier and line type only mean something once validity is
	// established, so they hang off the validity node rather than the root.
	children := []struct {
		id     string
		label  string
		detail schemas.NodeDetail
	}{
		{
			id:    PhoneLocationNodeID,
			label: "Location: " + phone.Location,
			detail: schemas.NodeDetail{
				Value: "location info",
				Description: joinLines(
					"Country Code: "+phone.CountryCode,
					"Country: "+phone.CountryName,
					"Location: "+phone.Location,
				),
			},
		},
		{
			id:    PhoneCarrierNodeID,
			label: "Carrier: " + phone.Carrier,
			detail: schemas.NodeDetail{
				Value: "carrier info",
				Description: joinLines(
					"Carrier: "+phone.Carrier,
					"International Format: "+phone.InternationalFormat,
					"Local Format: "+phone.LocalFormat,
				),
			},
		},
		{
			id:    PhoneLineTypeNodeID,
			label: "Line Type: " + phone.LineType,
			detail: schemas.NodeDetail{
				Value:       "line type info",
				Description: "Line Type: " + phone.LineType,
			},
		},
	}
	for i, child := range children {
		b.addNode(child.id, schemas.CategoryPhone, child.label, layout.Row(validityPos, i, len(children), layout.Spacing), child.detail)
		b.link(PhoneValidityNodeID, child.id)
	}
}

func (b *builder) mapUsernames(hits *[]schemas.PlatformHit) {
	if hits == nil {
		return
	}

	confirmed := schemas.ConfirmedHits(*hits)

	// A checked-but-empty list is a finding in its own right. The edge is
	// the only non-animated one in the graph.
	if len(confirmed) == 0 {
		b.addNode(UsernameEmptyNodeID, schemas.CategorySocial, "No Username Data Found", anchor(UsernameEmptyNodeID), schemas.NodeDetail{
			Value:     "No results found",
			RiskLevel: schemas.RiskLow,
			Icon:      "fas fa-exclamation-circle",
		})
		b.addEdge(RootNodeID, UsernameEmptyNodeID, false)
		return
	}

	groupPos := anchor(UsernameGroupNodeID)
	b.addNode(UsernameGroupNodeID, schemas.CategorySocial, "Username Presence", groupPos, schemas.NodeDetail{
		Value:       "Platform Presence",
		Description: fmt.Sprintf("Found on %d platform(s)", len(confirmed)),
	})
	b.link(RootNodeID, UsernameGroupNodeID)

	for i, hit := range confirmed {
		id := fmt.Sprintf("username-%d", i)
		b.addNode(id, schemas.CategorySocial, hit.Site, layout.Arc(groupPos, i, len(confirmed), layout.Spacing), schemas.NodeDetail{
			Value:       hit.URL,
			Description: "URL: " + htmlLink(hit.URL, hit.URL),
			Icon:        siteIcon(hit.Site),
		})
		b.link(UsernameGroupNodeID, id)
	}
}

// -- Description helpers --

// joinLines assembles detail-drawer fragments, dropping empty ones.
func joinLines(lines ...string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "<br/>")
}

func htmlLink(url, text string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(`<a href="%s" target="_blank" class="text-blue-500 break-words">%s</a>`, url, text)
}

// riskFromLabel maps an explicit risk label from the breach database onto a
// risk level, defaulting to medium for anything unrecognized.
func riskFromLabel(label string) schemas.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high":
		return schemas.RiskHigh
	case "medium":
		return schemas.RiskMedium
	case "low":
		return schemas.RiskLow
	default:
		return schemas.RiskMedium
	}
}

// siteIcons maps well-known platforms to their logo; everything else gets a
// generic placeholder.
var siteIcons = map[string]string{
	"GitHub":      "https://upload.wikimedia.org/wikipedia/commons/9/91/Octicons-mark-github.svg",
	"GitHub Gist": "https://upload.wikimedia.org/wikipedia/commons/e/e1/Octicons-gist.svg",
	"Freelancer":  "https://upload.wikimedia.org/wikipedia/commons/f/f3/Logo_Freelancer.svg",
	"Snapchat":    "https://upload.wikimedia.org/wikipedia/commons/a/a6/Snapchat_Logo_2022.png",
	"DeviantArt":  "https://upload.wikimedia.org/wikipedia/commons/1/1d/DeviantArt_logo_2016.svg",
}

func siteIcon(site string) string {
	if icon, ok := siteIcons[site]; ok {
		return icon
	}
	return "https://upload.wikimedia.org/wikipedia/commons/a/ac/No_image_available.svg"
}
