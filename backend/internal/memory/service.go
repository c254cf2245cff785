package memory

import (
	"context"

	"go.uber.org/zap"

	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// Traversal depth bounds for related entity queries
const (
	MinTraversalDepth = 1
	MaxTraversalDepth = 5
)

// Service is the validated facade over the repository port. It owns the
// validation rules; the repository owns query synthesis.
type Service struct {
	repo   Repository
	config Config
	log    *zap.Logger
}

// NewService creates a memory service backed by the given repository
func NewService(repo Repository, config Config) *Service {
	return &Service{
		repo:   repo,
		config: config,
		log:    logger.Named("memory"),
	}
}

// Config returns the service configuration
func (s *Service) Config() Config {
	return s.config
}

// CreateEntities validates and persists a batch of entities. Every item is
// evaluated independently; items that pass are forwarded to the repository in
// a single batched call even when other items fail. A *errors.BatchError
// return lists the rejected items; valid items were still persisted.
func (s *Service) CreateEntities(ctx context.Context, entities []Entity) error {
	var rejected []apperrors.BatchItem
	valid := make([]Entity, 0, len(entities))

	for _, entity := range entities {
		tagged, issues := validateEntity(s.config, entity)
		if len(issues) > 0 {
			rejected = append(rejected, apperrors.BatchItem{Name: entity.Name, Issues: issues})
			continue
		}
		valid = append(valid, tagged)
	}

	if len(valid) > 0 {
		if err := s.repo.CreateEntities(ctx, valid); err != nil {
			return err
		}
	}

	if len(rejected) > 0 {
		s.log.Warn("entity batch partially rejected",
			zap.Int("rejected", len(rejected)),
			zap.Int("persisted", len(valid)),
		)
		return &apperrors.BatchError{Items: rejected}
	}
	return nil
}

// CreateRelationships validates and persists a batch of relationships with
// the same partial-failure semantics as CreateEntities. Rejected items are
// identified by their relationship type name.
func (s *Service) CreateRelationships(ctx context.Context, relationships []Relationship) error {
	var rejected []apperrors.BatchItem
	valid := make([]Relationship, 0, len(relationships))

	for _, rel := range relationships {
		issues := validateRelationship(s.config, rel)
		if len(issues) > 0 {
			rejected = append(rejected, apperrors.BatchItem{Name: rel.Name, Issues: issues})
			continue
		}
		valid = append(valid, rel)
	}

	if len(valid) > 0 {
		if err := s.repo.CreateRelationships(ctx, valid); err != nil {
			return err
		}
	}

	if len(rejected) > 0 {
		s.log.Warn("relationship batch partially rejected",
			zap.Int("rejected", len(rejected)),
			zap.Int("persisted", len(valid)),
		)
		return &apperrors.BatchError{Items: rejected}
	}
	return nil
}

// FindEntityByName returns the named entity with its incident relationships,
// or nil when it does not exist
func (s *Service) FindEntityByName(ctx context.Context, name string) (*Entity, error) {
	return s.repo.FindEntityByName(ctx, name)
}

// SetObservations replaces the entity's observation list
func (s *Service) SetObservations(ctx context.Context, name string, observations []string) error {
	return s.repo.SetObservations(ctx, name, observations)
}

// AddObservations appends observations to the entity
func (s *Service) AddObservations(ctx context.Context, name string, observations []string) error {
	return s.repo.AddObservations(ctx, name, observations)
}

// RemoveObservations deletes matching observations from the entity
func (s *Service) RemoveObservations(ctx context.Context, name string, observations []string) error {
	return s.repo.RemoveObservations(ctx, name, observations)
}

// RemoveAllObservations clears the entity's observation list
func (s *Service) RemoveAllObservations(ctx context.Context, name string) error {
	return s.repo.RemoveAllObservations(ctx, name)
}

// FindRelatedEntities traverses from the named entity up to depth hops,
// optionally filtered by relationship type and direction
func (s *Service) FindRelatedEntities(ctx context.Context, name, relationshipType string, direction RelationshipDirection, depth int) ([]Entity, error) {
	if name == "" {
		return nil, apperrors.NewValidationError(apperrors.EmptyEntityName())
	}
	if depth < MinTraversalDepth || depth > MaxTraversalDepth {
		return nil, apperrors.NewValidationError(apperrors.InvalidDepth(depth))
	}
	return s.repo.FindRelatedEntities(ctx, name, relationshipType, direction, depth)
}

// FindEntitiesByLabels searches entities by label set. When no required label
// is given the configured default label is required instead, scoping searches
// to entities this service created.
func (s *Service) FindEntitiesByLabels(ctx context.Context, labels []string, mode LabelMatchMode, requiredLabel string) ([]Entity, error) {
	if requiredLabel == "" {
		requiredLabel = s.config.DefaultLabel
	}
	return s.repo.FindEntitiesByLabels(ctx, labels, mode, requiredLabel)
}

// FindRelationships returns relationships matching the filter
func (s *Service) FindRelationships(ctx context.Context, filter RelationshipFilter) ([]Relationship, error) {
	return s.repo.FindRelationships(ctx, filter)
}

// UpdateEntity applies a partial update to the named entity
func (s *Service) UpdateEntity(ctx context.Context, name string, update EntityUpdate) error {
	if name == "" {
		return apperrors.NewValidationError(apperrors.EmptyEntityName())
	}
	if err := validateEntityUpdate(update); err != nil {
		return err
	}
	return s.repo.UpdateEntity(ctx, name, update)
}

// UpdateRelationship applies a partial update to the identified relationship
func (s *Service) UpdateRelationship(ctx context.Context, from, to, name string, update RelationshipUpdate) error {
	if from == "" || to == "" {
		return apperrors.NewValidationError(apperrors.EmptyEntityName())
	}
	if err := validatePropertiesUpdate(update.Properties); err != nil {
		return err
	}
	return s.repo.UpdateRelationship(ctx, from, to, name, update)
}

// DeleteEntities removes the named entities and all their incident edges
func (s *Service) DeleteEntities(ctx context.Context, names []string) error {
	return s.repo.DeleteEntities(ctx, names)
}

// DeleteRelationships removes the identified relationships
func (s *Service) DeleteRelationships(ctx context.Context, refs []RelationshipRef) error {
	return s.repo.DeleteRelationships(ctx, refs)
}
