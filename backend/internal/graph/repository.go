package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// entityReturn is the shared tail of every entity-reading query: it collects
// the node's incident edges into {from, to, name, properties} maps in the
// same round trip, so reading an entity and its relationships is one query.
const entityReturn = `
	OPTIONAL MATCH (n)-[r]-()
	WITH n, collect(CASE WHEN r IS NOT NULL THEN {from: startNode(r).name, to: endNode(r).name, name: type(r), properties: properties(r)} END) AS rels
	RETURN n, [x IN rels WHERE x IS NOT NULL] AS rels`

// Repository implements the memory repository port against Neo4j. It holds
// the driver (a connection pool) and no other shared state; batch creates
// rely on the APOC procedures for dynamic labels and relationship types.
type Repository struct {
	driver neo4j.DriverWithContext
	log    *zap.Logger
}

// NewRepository creates a graph repository on an existing driver
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		log:    logger.Named("graph"),
	}
}

// Connect creates a driver, verifies connectivity and returns a repository
func Connect(ctx context.Context, uri, username, password string) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to create Neo4j driver for "+uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, apperrors.NewConnectionError("failed to connect to Neo4j at "+uri, err)
	}
	return NewRepository(driver), nil
}

// Close closes the underlying driver
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func (r *Repository) readSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

func (r *Repository) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

// write runs a single write statement and drains its result
func (r *Repository) write(ctx context.Context, query string, params map[string]any, failMsg string) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return apperrors.NewQueryError(failMsg, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return apperrors.NewQueryError(failMsg, err)
	}
	return nil
}

// collectEntities runs an entity-reading query and decodes every row
func (r *Repository) collectEntities(ctx context.Context, query string, params map[string]any, failMsg string) ([]memory.Entity, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewQueryError(failMsg, err)
	}

	var entities []memory.Entity
	for result.Next(ctx) {
		entity, err := entityFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewQueryError(failMsg, err)
	}
	return entities, nil
}

// entityFromRecord decodes the (n, rels) row shape shared by entity queries
func entityFromRecord(record *neo4j.Record) (memory.Entity, error) {
	rawNode, ok := record.Get("n")
	if !ok {
		return memory.Entity{}, apperrors.NewDecodeError("result row has no node column", record.Values, nil)
	}
	node, ok := rawNode.(neo4j.Node)
	if !ok {
		return memory.Entity{}, apperrors.NewDecodeError("result node column is not a node", rawNode, nil)
	}
	rels, _ := record.Get("rels")
	return entityFromNode(node, rels)
}

// CreateEntities persists a batch of entities in a single statement. Each row
// carries its own label list, so node creation goes through apoc.create.node
// rather than static query labels.
func (r *Repository) CreateEntities(ctx context.Context, entities []memory.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(entities))
	for _, entity := range entities {
		props, err := encodeProperties(entity.Properties)
		if err != nil {
			return err
		}
		props[fieldName] = entity.Name
		props[fieldObservations] = entity.Observations
		rows = append(rows, map[string]any{
			"labels": entity.Labels,
			"props":  props,
		})
	}

	query := `
		UNWIND $rows AS row
		CALL apoc.create.node(row.labels, row.props) YIELD node
		RETURN count(node)`

	if err := r.write(ctx, query, map[string]any{"rows": rows}, "failed to create entities"); err != nil {
		return err
	}

	r.log.Info("entities created", zap.Int("count", len(entities)))
	return nil
}

// FindEntityByName returns the named entity with its incident relationships,
// or nil when no node matches
func (r *Repository) FindEntityByName(ctx context.Context, name string) (*memory.Entity, error) {
	if name == "" {
		return nil, apperrors.NewValidationError(apperrors.EmptyEntityName())
	}

	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := "MATCH (n {name: $name})" + entityReturn
	result, err := session.Run(ctx, query, map[string]any{"name": name})
	if err != nil {
		return nil, apperrors.NewQueryError("failed to find entity "+name, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewQueryError("failed to retrieve result for entity "+name, err)
		}
		return nil, nil
	}

	entity, err := entityFromRecord(result.Record())
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// DeleteEntities removes the named entities, detaching their edges, in one
// batched statement
func (r *Repository) DeleteEntities(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	query := "MATCH (n) WHERE n.name IN $names DETACH DELETE n"
	if err := r.write(ctx, query, map[string]any{"names": names}, "failed to delete entities"); err != nil {
		return err
	}

	r.log.Info("entities deleted", zap.Int("count", len(names)))
	return nil
}
