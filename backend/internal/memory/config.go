package memory

// DefaultMemoryLabel is the label applied to created entities when the
// configuration does not override it.
const DefaultMemoryLabel = "Memory"

// DefaultLabels is the built-in label allow-list used when label enforcement
// is enabled.
var DefaultLabels = []string{
	"Memory",
	"Project",
	"Component",
	"Task",
	"Note",
	"Technology",
	"Framework",
	"Library",
	"Language",
	"GitRepository",
	"Person",
	"Organization",
}

// DefaultRelationships is the built-in relationship-type allow-list used when
// relationship enforcement is enabled.
var DefaultRelationships = []string{
	"relates_to",
	"part_of",
	"contains",
	"uses",
	"depends_on",
	"created_by",
	"works_on",
	"implements",
	"documented_in",
	"supersedes",
}

// Config controls service-level validation behavior
type Config struct {
	// DefaultLabel is appended to every created entity that lacks it; empty
	// disables injection
	DefaultLabel string

	// EnforceLabels rejects labels outside DefaultLabels, AllowedLabels and
	// the default label
	EnforceLabels bool

	// AllowedLabels extends the built-in label allow-list
	AllowedLabels []string

	// EnforceRelationships rejects relationship types outside
	// DefaultRelationships and AllowedRelationships
	EnforceRelationships bool

	// AllowedRelationships extends the built-in relationship allow-list
	AllowedRelationships []string

	// DefaultProject is the fallback owner entity for task operations
	DefaultProject string
}

// DefaultConfig returns the service configuration used when nothing is
// provided: default label injection plus label and relationship enforcement
// against the built-in allow-lists.
func DefaultConfig() Config {
	return Config{
		DefaultLabel:         DefaultMemoryLabel,
		EnforceLabels:        true,
		EnforceRelationships: true,
	}
}

// labelAllowed reports whether a label passes the allow-list
func (c Config) labelAllowed(label string) bool {
	if label == c.DefaultLabel && c.DefaultLabel != "" {
		return true
	}
	if contains(DefaultLabels, label) {
		return true
	}
	return contains(c.AllowedLabels, label)
}

// relationshipAllowed reports whether a relationship type passes the allow-list
func (c Config) relationshipAllowed(name string) bool {
	if contains(DefaultRelationships, name) {
		return true
	}
	return contains(c.AllowedRelationships, name)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// IsSnakeCase reports whether s contains only lowercase ASCII letters, digits
// and underscores. The empty string passes vacuously; allow-list checks catch
// it separately.
func IsSnakeCase(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
