package graph

import (
	"context"
	"fmt"
	"strings"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
)

// labelSearchConditions builds the WHERE predicate for a label search. An
// empty label list with no required label yields no predicate and matches
// every node.
func labelSearchConditions(labels []string, mode memory.LabelMatchMode, requiredLabel string) string {
	var conditions []string
	if requiredLabel != "" {
		conditions = append(conditions, "$required IN labels(n)")
	}
	if len(labels) > 0 {
		switch mode {
		case memory.MatchAll:
			conditions = append(conditions, "ALL(l IN $labels WHERE l IN labels(n))")
		default:
			conditions = append(conditions, "ANY(l IN $labels WHERE l IN labels(n))")
		}
	}
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

// traversalPattern builds the variable-length path fragment for a related
// entity query: the arrow follows the direction, the range is 1..depth and an
// optional relationship type is spliced in.
func traversalPattern(relationshipType string, direction memory.RelationshipDirection, depth int) string {
	relType := ""
	if relationshipType != "" {
		relType = ":" + relationshipType
	}
	segment := fmt.Sprintf("[r%s*1..%d]", relType, depth)
	switch direction {
	case memory.DirectionOutgoing:
		return "-" + segment + "->"
	case memory.DirectionIncoming:
		return "<-" + segment + "-"
	default:
		return "-" + segment + "-"
	}
}

// FindEntitiesByLabels searches entities whose label set satisfies the match
// mode, optionally constrained by a required label
func (r *Repository) FindEntitiesByLabels(ctx context.Context, labels []string, mode memory.LabelMatchMode, requiredLabel string) ([]memory.Entity, error) {
	whereClause := labelSearchConditions(labels, mode, requiredLabel)

	query := "MATCH (n) " + whereClause + entityReturn
	params := map[string]any{"labels": labels}
	if requiredLabel != "" {
		params["required"] = requiredLabel
	}

	return r.collectEntities(ctx, query, params, "failed to execute label query")
}

// FindRelatedEntities returns the entities reachable from the named entity
// within depth hops. The same node can be reachable over several paths, so
// results are deduplicated before the relationship projection runs.
func (r *Repository) FindRelatedEntities(ctx context.Context, name, relationshipType string, direction memory.RelationshipDirection, depth int) ([]memory.Entity, error) {
	if name == "" {
		return nil, apperrors.NewValidationError(apperrors.EmptyEntityName())
	}

	pattern := traversalPattern(relationshipType, direction, depth)
	query := fmt.Sprintf("MATCH (start {name: $name}) MATCH (start)%s(n) WITH DISTINCT n", pattern) + entityReturn
	params := map[string]any{"name": name}

	return r.collectEntities(ctx, query, params, "failed to execute related entity query for "+name)
}
