package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
)

// propertyUpdateClause builds the SET/REMOVE fragment for a property update
// against the query identifier id. Set replaces all properties, optionally
// preserving named fields; add merges, remove drops keys. Exactly one of the
// strategies is expected to be populated, the service validates that.
func propertyUpdateClause(id string, update *memory.PropertiesUpdate, preserve []string) (string, map[string]any, error) {
	if update == nil {
		return "", nil, nil
	}

	switch {
	case update.Add != nil:
		props, err := encodeProperties(update.Add)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("SET %s += $props", id), map[string]any{"props": props}, nil

	case update.Remove != nil:
		if len(update.Remove) == 0 {
			return "", nil, nil
		}
		clauses := make([]string, 0, len(update.Remove))
		for _, key := range update.Remove {
			clauses = append(clauses, fmt.Sprintf("%s.`%s`", id, key))
		}
		return "REMOVE " + strings.Join(clauses, ", "), nil, nil

	case update.Set != nil:
		props, err := encodeProperties(update.Set)
		if err != nil {
			return "", nil, err
		}
		if len(preserve) > 0 {
			// Strip every existing property except the preserved fields, then
			// apply the replacement map.
			quoted := make([]string, 0, len(preserve))
			for _, field := range preserve {
				quoted = append(quoted, fmt.Sprintf("x <> '%s'", field))
			}
			clause := fmt.Sprintf(
				"WITH %s, keys(%s) AS propKeys UNWIND [x IN propKeys WHERE %s] AS key REMOVE %s[key] WITH %s ",
				id, id, strings.Join(quoted, " AND "), id, id)
			return clause + fmt.Sprintf("SET %s += $props", id), map[string]any{"props": props}, nil
		}
		// Without preserved fields a set is a plain full replacement.
		return fmt.Sprintf("SET %s = $props", id), map[string]any{"props": props}, nil
	}
	return "", nil, nil
}

// labelUpdateClause builds the SET/REMOVE fragment for a label update. Cypher
// has no parameterized labels, so the names are spliced in backticked.
func labelUpdateClause(id string, update *memory.LabelsUpdate) string {
	if update == nil {
		return ""
	}
	var clauses []string
	if len(update.Add) > 0 {
		labels := make([]string, 0, len(update.Add))
		for _, label := range update.Add {
			labels = append(labels, fmt.Sprintf("%s:`%s`", id, label))
		}
		clauses = append(clauses, "SET "+strings.Join(labels, ", "))
	}
	if len(update.Remove) > 0 {
		labels := make([]string, 0, len(update.Remove))
		for _, label := range update.Remove {
			labels = append(labels, fmt.Sprintf("%s:`%s`", id, label))
		}
		clauses = append(clauses, "REMOVE "+strings.Join(labels, ", "))
	}
	return strings.Join(clauses, " ")
}

// UpdateEntity applies an update to the named entity. Observation changes go
// through the observation operations; property and label changes each run as
// their own statement so a failed fragment does not leave a half-built query.
func (r *Repository) UpdateEntity(ctx context.Context, name string, update memory.EntityUpdate) error {
	if name == "" {
		return apperrors.NewValidationError(apperrors.EmptyEntityName())
	}

	if obs := update.Observations; obs != nil {
		switch {
		case obs.Set != nil:
			if err := r.SetObservations(ctx, name, obs.Set); err != nil {
				return err
			}
		case obs.Add != nil:
			if err := r.AddObservations(ctx, name, obs.Add); err != nil {
				return err
			}
		case obs.Remove != nil:
			if err := r.RemoveObservations(ctx, name, obs.Remove); err != nil {
				return err
			}
		}
	}

	// name and observations live alongside domain properties on the node, a
	// full property replacement must not wipe them.
	clause, params, err := propertyUpdateClause("n", update.Properties, []string{fieldName, fieldObservations})
	if err != nil {
		return err
	}
	if clause != "" {
		query := "MATCH (n {name: $name}) " + clause
		if params == nil {
			params = map[string]any{}
		}
		params["name"] = name
		if err := r.write(ctx, query, params, "failed to update properties for entity "+name); err != nil {
			return err
		}
	}

	if labelClause := labelUpdateClause("n", update.Labels); labelClause != "" {
		query := "MATCH (n {name: $name}) " + labelClause
		if err := r.write(ctx, query, map[string]any{"name": name}, "failed to update labels for entity "+name); err != nil {
			return err
		}
	}

	r.log.Info("entity updated", zap.String("name", name))
	return nil
}

// UpdateRelationship applies a property update to the edge of the given type
// between the two named entities. Relationships have no reserved fields, so a
// full property replacement preserves nothing.
func (r *Repository) UpdateRelationship(ctx context.Context, from, to, name string, update memory.RelationshipUpdate) error {
	clause, params, err := propertyUpdateClause("r", update.Properties, nil)
	if err != nil {
		return err
	}
	if clause == "" {
		return nil
	}

	query := fmt.Sprintf("MATCH (a {name: $from})-[r:`%s`]->(b {name: $to}) %s", name, clause)
	if params == nil {
		params = map[string]any{}
	}
	params["from"] = from
	params["to"] = to

	if err := r.write(ctx, query, params, fmt.Sprintf("failed to update relationship %s from %s to %s", name, from, to)); err != nil {
		return err
	}

	r.log.Info("relationship updated",
		zap.String("from", from),
		zap.String("name", name),
		zap.String("to", to),
	)
	return nil
}
