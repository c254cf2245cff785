package memory

import (
	apperrors "graphmem/backend/pkg/errors"
)

// validateEntity applies the configured rules to a single entity and returns
// the entity as it should be persisted (default label injected) together with
// every violation found.
func validateEntity(cfg Config, entity Entity) (Entity, []apperrors.ValidationIssue) {
	tagged := entity
	if cfg.DefaultLabel != "" && !tagged.HasLabel(cfg.DefaultLabel) {
		tagged.Labels = append(append([]string{}, tagged.Labels...), cfg.DefaultLabel)
	}

	var issues []apperrors.ValidationIssue
	if tagged.Name == "" {
		issues = append(issues, apperrors.EmptyEntityName())
	}
	if len(tagged.Labels) == 0 {
		issues = append(issues, apperrors.NoLabels(tagged.Name))
	}
	if cfg.EnforceLabels {
		for _, label := range tagged.Labels {
			if !cfg.labelAllowed(label) {
				issues = append(issues, apperrors.UnknownLabel(label))
			}
		}
	}
	return tagged, issues
}

// validateRelationship applies the configured rules to a single relationship.
func validateRelationship(cfg Config, rel Relationship) []apperrors.ValidationIssue {
	var issues []apperrors.ValidationIssue
	if rel.From == "" || rel.To == "" {
		issues = append(issues, apperrors.EmptyEntityName())
	}
	if !IsSnakeCase(rel.Name) {
		issues = append(issues, apperrors.InvalidRelationshipFormat(rel.Name))
	}
	if cfg.EnforceRelationships && !cfg.relationshipAllowed(rel.Name) {
		issues = append(issues, apperrors.UnknownRelationship(rel.Name))
	}
	return issues
}

// validatePropertiesUpdate rejects updates mixing add/remove/set
func validatePropertiesUpdate(update *PropertiesUpdate) error {
	if update != nil && update.strategies() > 1 {
		return apperrors.NewValidationError(apperrors.ConflictingOperations("properties"))
	}
	return nil
}

// validateEntityUpdate rejects updates mixing strategies on any field
func validateEntityUpdate(update EntityUpdate) error {
	if update.Observations != nil && update.Observations.strategies() > 1 {
		return apperrors.NewValidationError(apperrors.ConflictingOperations("observations"))
	}
	if err := validatePropertiesUpdate(update.Properties); err != nil {
		return err
	}
	if update.Labels != nil && update.Labels.strategies() > 1 {
		return apperrors.NewValidationError(apperrors.ConflictingOperations("labels"))
	}
	return nil
}
