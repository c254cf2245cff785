package graph

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// Reserved node fields that are not domain properties
const (
	fieldName         = "name"
	fieldObservations = "observations"
)

// entityFromNode rebuilds a domain entity from a matched node plus the
// aggregated relationship projection returned alongside it. A missing or
// malformed name or observations field is a decode error; everything else on
// the node becomes a property.
func entityFromNode(node neo4j.Node, rels any) (memory.Entity, error) {
	rawName, ok := node.Props[fieldName]
	if !ok {
		return memory.Entity{}, apperrors.NewDecodeError("node has no name field", node.Props, nil)
	}
	name, ok := rawName.(string)
	if !ok {
		return memory.Entity{}, apperrors.NewDecodeError(
			fmt.Sprintf("node name field is %T, expected string", rawName), rawName, nil)
	}

	observations, err := observationsFromProps(node.Props)
	if err != nil {
		return memory.Entity{}, err
	}

	properties := make(map[string]memory.Value)
	for key, value := range node.Props {
		if key == fieldName || key == fieldObservations {
			continue
		}
		decoded, err := decodeValue(value)
		if err != nil {
			return memory.Entity{}, err
		}
		properties[key] = decoded
	}

	relationships, err := relationshipsFromProjection(rels)
	if err != nil {
		return memory.Entity{}, err
	}

	return memory.Entity{
		Name:          name,
		Labels:        append([]string{}, node.Labels...),
		Observations:  observations,
		Properties:    properties,
		Relationships: relationships,
	}, nil
}

// observationsFromProps extracts the observation list. The field must be
// present; a null value reads as an empty list, anything but a list of
// strings is a decode error.
func observationsFromProps(props map[string]any) ([]string, error) {
	raw, ok := props[fieldObservations]
	if !ok {
		return nil, apperrors.NewDecodeError("node has no observations field", props, nil)
	}
	if raw == nil {
		return []string{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("observations field is %T, expected list", raw), raw, nil)
	}
	observations := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, apperrors.NewDecodeError(
				fmt.Sprintf("observation entry is %T, expected string", item), item, nil)
		}
		observations = append(observations, s)
	}
	return observations, nil
}

// relationshipsFromProjection decodes the collect() aggregation of
// {from, to, name, properties} maps produced by the lookup queries. Null and
// empty entries are skipped; a present entry missing one of its required
// fields fails.
func relationshipsFromProjection(rels any) ([]memory.Relationship, error) {
	if rels == nil {
		return nil, nil
	}
	list, ok := rels.([]any)
	if !ok {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("relationship projection is %T, expected list", rels), rels, nil)
	}

	relationships := make([]memory.Relationship, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, apperrors.NewDecodeError(
				fmt.Sprintf("relationship entry is %T, expected map", item), item, nil)
		}
		if len(entry) == 0 {
			continue
		}

		from, err := requiredString(entry, "from")
		if err != nil {
			return nil, err
		}
		to, err := requiredString(entry, "to")
		if err != nil {
			return nil, err
		}
		name, err := requiredString(entry, "name")
		if err != nil {
			return nil, err
		}

		properties := make(map[string]memory.Value)
		if rawProps, ok := entry["properties"].(map[string]any); ok {
			for key, value := range rawProps {
				decoded, err := decodeValue(value)
				if err != nil {
					// A single undecodable edge property should not sink
					// the whole entity; drop it and keep the rest.
					logger.Named("graph").Error("skipping undecodable relationship property",
						zap.String("key", key),
						zap.String("from", from),
						zap.String("name", name),
						zap.String("to", to),
						zap.Error(err),
					)
					continue
				}
				properties[key] = decoded
			}
		}

		relationships = append(relationships, memory.Relationship{
			From:       from,
			To:         to,
			Name:       name,
			Properties: properties,
		})
	}
	return relationships, nil
}

func requiredString(entry map[string]any, key string) (string, error) {
	raw, ok := entry[key]
	if !ok || raw == nil {
		return "", apperrors.NewDecodeError(
			fmt.Sprintf("relationship entry is missing required field %q", key), entry, nil)
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewDecodeError(
			fmt.Sprintf("relationship field %q is %T, expected string", key, raw), raw, nil)
	}
	return s, nil
}
