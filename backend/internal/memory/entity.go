package memory

// Entity is a named node in the knowledge graph. Names are globally unique,
// conventionally colon-segmented (e.g. "project:entity:name"). Relationships
// are read-only: they are populated on reads and ignored by create and update
// payloads.
type Entity struct {
	Name          string           `json:"name"`
	Labels        []string         `json:"labels"`
	Observations  []string         `json:"observations"`
	Properties    map[string]Value `json:"properties,omitempty"`
	Relationships []Relationship   `json:"relationships,omitempty"`
}

// HasLabel reports whether the entity carries the given label
func (e Entity) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Relationship is a named, directed, typed edge between two entities. The
// type name must be snake_case. Relationships have no separate identity; the
// (from, to, name) triple is the natural key.
type Relationship struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	Name       string           `json:"name"`
	Properties map[string]Value `json:"properties,omitempty"`
}

// Ref returns the natural key of the relationship
func (r Relationship) Ref() RelationshipRef {
	return RelationshipRef{From: r.From, To: r.To, Name: r.Name}
}

// RelationshipRef identifies a relationship for update and delete operations
type RelationshipRef struct {
	From string `json:"from"`
	To   string `json:"to"`
	Name string `json:"name"`
}

// RelationshipFilter narrows a relationship search; empty fields match any
type RelationshipFilter struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Name string `json:"name,omitempty"`
}

// LabelMatchMode governs label-set search semantics
type LabelMatchMode int

const (
	// MatchAny selects entities carrying at least one of the query labels
	MatchAny LabelMatchMode = iota
	// MatchAll selects entities carrying every query label
	MatchAll
)

func (m LabelMatchMode) String() string {
	if m == MatchAll {
		return "all"
	}
	return "any"
}

// ParseLabelMatchMode parses "any"/"all"; anything else defaults to MatchAny
func ParseLabelMatchMode(s string) LabelMatchMode {
	if s == "all" {
		return MatchAll
	}
	return MatchAny
}

// RelationshipDirection governs traversal direction
type RelationshipDirection int

const (
	// DirectionBoth traverses edges regardless of direction
	DirectionBoth RelationshipDirection = iota
	// DirectionOutgoing traverses from source to target
	DirectionOutgoing
	// DirectionIncoming traverses from target to source
	DirectionIncoming
)

func (d RelationshipDirection) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	default:
		return "both"
	}
}

// ParseRelationshipDirection parses "outgoing"/"incoming"/"both"; anything
// else defaults to DirectionBoth
func ParseRelationshipDirection(s string) RelationshipDirection {
	switch s {
	case "outgoing":
		return DirectionOutgoing
	case "incoming":
		return DirectionIncoming
	default:
		return DirectionBoth
	}
}
