package schemas

// -- Graph Data Model --
//
// A Graph is the fully-formed, immutable output of the graph builder. The
// presentation layer renders it as-is; it performs no business-logic
// interpretation of payload fields. Repeat scans discard the previous graph
// entirely, there is no merge.

// RiskLevel classifies how concerning a node's finding is.
type RiskLevel string

const (
	RiskHigh    RiskLevel = "high"
	RiskMedium  RiskLevel = "medium"
	RiskLow     RiskLevel = "low"
	RiskUnknown RiskLevel = "unknown"
)

// NodeCategory is the semantic category of a graph node, drawn from the
// taxonomy rules. It drives styling and the default risk tier.
type NodeCategory string

const (
	CategoryIP             NodeCategory = "ip"
	CategoryDomain         NodeCategory = "domain"
	CategorySubdomain      NodeCategory = "subdomain"
	CategoryEmail          NodeCategory = "email"
	CategorySocial         NodeCategory = "social"
	CategoryVulnerability  NodeCategory = "vulnerability"
	CategoryBreach         NodeCategory = "breach"
	CategorySecurityMetric NodeCategory = "security-metric"
	CategoryPhone          NodeCategory = "phone"
	CategoryUnknownInput   NodeCategory = "unknown-input"
)

// Position is a 2D layout coordinate, set once at node creation and never
// recomputed. The renderer may move nodes locally (drag) without the
// builder's knowledge.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeDetail is the payload shown in the details drawer when a node is
// selected. Description may contain structured, marked-up text and links.
type NodeDetail struct {
	Value       string    `json:"value"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
}

// GraphNode is a single node of the result graph. IDs are unique within one
// graph and deterministic for a given (query, result) pair.
type GraphNode struct {
	ID       string       `json:"id"`
	Category NodeCategory `json:"category"`
	Label    string       `json:"label"`
	Position Position     `json:"position"`
	Class    string       `json:"class,omitempty"`
	Detail   NodeDetail   `json:"detail"`
}

// GraphEdge is a directed edge between two node IDs. Animated is a purely
// visual hint: true for real relationships, false only for the explicit
// "no data found" edge.
type GraphEdge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated"`
}

// Graph is the node/edge set handed to the presentation layer.
//
// Invariants: every edge references node IDs present in Nodes, node IDs are
// unique, the graph is acyclic, and there is exactly one root node (the query
// node) with no incoming edges.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}
