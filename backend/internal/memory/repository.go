package memory

import "context"

// Repository is the abstract operation set the service depends on. The graph
// adapter implements it against Neo4j; tests substitute doubles. All
// name-taking operations reject empty names before dispatch.
type Repository interface {
	// CreateEntities persists a batch of entities in one call
	CreateEntities(ctx context.Context, entities []Entity) error

	// FindEntityByName returns the entity with its incident relationships,
	// or nil when it does not exist
	FindEntityByName(ctx context.Context, name string) (*Entity, error)

	// SetObservations replaces the entity's observation list
	SetObservations(ctx context.Context, name string, observations []string) error

	// AddObservations appends observations; read-modify-write, not atomic
	AddObservations(ctx context.Context, name string, observations []string) error

	// RemoveObservations deletes matching observations; read-modify-write
	RemoveObservations(ctx context.Context, name string, observations []string) error

	// RemoveAllObservations clears the entity's observation list
	RemoveAllObservations(ctx context.Context, name string) error

	// CreateRelationships persists a batch of relationships in one call;
	// both endpoints must already exist
	CreateRelationships(ctx context.Context, relationships []Relationship) error

	// FindRelatedEntities traverses from the named entity up to depth hops.
	// relationshipType empty matches any edge type.
	FindRelatedEntities(ctx context.Context, name, relationshipType string, direction RelationshipDirection, depth int) ([]Entity, error)

	// FindEntitiesByLabels searches by label set; requiredLabel empty means
	// no additional constraint
	FindEntitiesByLabels(ctx context.Context, labels []string, mode LabelMatchMode, requiredLabel string) ([]Entity, error)

	// FindRelationships returns relationships matching the filter
	FindRelationships(ctx context.Context, filter RelationshipFilter) ([]Relationship, error)

	// UpdateEntity applies a partial update to the named entity
	UpdateEntity(ctx context.Context, name string, update EntityUpdate) error

	// UpdateRelationship applies a partial update to the identified edge
	UpdateRelationship(ctx context.Context, from, to, name string, update RelationshipUpdate) error

	// DeleteEntities removes the named entities and detaches their edges
	DeleteEntities(ctx context.Context, names []string) error

	// DeleteRelationships removes the identified edges
	DeleteRelationships(ctx context.Context, refs []RelationshipRef) error
}
