package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
)

// CreateRelationships persists a batch of relationships in a single
// statement. Edge types vary per row, so creation goes through
// apoc.create.relationship. Both endpoints must already exist; rows whose
// endpoints do not match any node create nothing.
func (r *Repository) CreateRelationships(ctx context.Context, relationships []memory.Relationship) error {
	if len(relationships) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(relationships))
	for _, rel := range relationships {
		props, err := encodeProperties(rel.Properties)
		if err != nil {
			return err
		}
		rows = append(rows, map[string]any{
			"from":  rel.From,
			"to":    rel.To,
			"name":  rel.Name,
			"props": props,
		})
	}

	query := `
		UNWIND $rows AS row
		MATCH (a {name: row.from}), (b {name: row.to})
		CALL apoc.create.relationship(a, row.name, row.props, b) YIELD rel
		RETURN count(rel)`

	if err := r.write(ctx, query, map[string]any{"rows": rows}, "failed to create relationships"); err != nil {
		return err
	}

	r.log.Info("relationships created", zap.Int("count", len(relationships)))
	return nil
}

// FindRelationships returns relationships matching the filter; empty filter
// fields match any value
func (r *Repository) FindRelationships(ctx context.Context, filter memory.RelationshipFilter) ([]memory.Relationship, error) {
	var conditions []string
	params := map[string]any{}
	if filter.From != "" {
		conditions = append(conditions, "a.name = $from")
		params["from"] = filter.From
	}
	if filter.To != "" {
		conditions = append(conditions, "b.name = $to")
		params["to"] = filter.To
	}
	if filter.Name != "" {
		conditions = append(conditions, "type(r) = $type")
		params["type"] = filter.Name
	}

	query := "MATCH (a)-[r]->(b)"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " RETURN a.name AS from, b.name AS to, type(r) AS name, properties(r) AS props"

	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewQueryError("failed to query relationships", err)
	}

	var relationships []memory.Relationship
	for result.Next(ctx) {
		record := result.Record()

		from, err := recordString(record, "from")
		if err != nil {
			return nil, err
		}
		to, err := recordString(record, "to")
		if err != nil {
			return nil, err
		}
		name, err := recordString(record, "name")
		if err != nil {
			return nil, err
		}

		properties := map[string]memory.Value{}
		if rawProps, ok := record.Get("props"); ok && rawProps != nil {
			propsMap, ok := rawProps.(map[string]any)
			if !ok {
				return nil, apperrors.NewDecodeError("relationship properties column is not a map", rawProps, nil)
			}
			properties, err = decodePropertyMap(propsMap)
			if err != nil {
				return nil, err
			}
		}

		relationships = append(relationships, memory.Relationship{
			From:       from,
			To:         to,
			Name:       name,
			Properties: properties,
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewQueryError("failed to fetch relationships", err)
	}
	return relationships, nil
}

// DeleteRelationships removes the identified edges in one batched statement
func (r *Repository) DeleteRelationships(ctx context.Context, refs []memory.RelationshipRef) error {
	if len(refs) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, map[string]any{
			"from": ref.From,
			"to":   ref.To,
			"name": ref.Name,
		})
	}

	query := `
		UNWIND $rows AS row
		MATCH (a {name: row.from})-[r]->(b {name: row.to})
		WHERE type(r) = row.name
		DELETE r`

	if err := r.write(ctx, query, map[string]any{"rows": rows}, "failed to delete relationships"); err != nil {
		return err
	}

	r.log.Info("relationships deleted", zap.Int("count", len(refs)))
	return nil
}

// recordString reads a required string column from a record
func recordString(record *neo4j.Record, key string) (string, error) {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return "", apperrors.NewDecodeError("result row is missing required column "+key, record.Values, nil)
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewDecodeError("result column "+key+" is not a string", raw, nil)
	}
	return s, nil
}
