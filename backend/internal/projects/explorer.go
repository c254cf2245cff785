package projects

import (
	"context"

	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// ProjectLabel is the entity label carried by every project
const ProjectLabel = "Project"

// technologyLabels are the labels bucketed together as technologies
var technologyLabels = []string{"Technology", "Framework", "Library", "Language"}

// Context is everything known about a project, gathered in one traversal and
// bucketed by entity label.
type Context struct {
	Project      memory.Entity   `json:"project"`
	Technologies []memory.Entity `json:"technologies,omitempty"`
	Notes        []memory.Entity `json:"notes,omitempty"`
	Components   []memory.Entity `json:"components,omitempty"`
	Tasks        []memory.Entity `json:"tasks,omitempty"`
	Other        []memory.Entity `json:"other,omitempty"`
}

// Explorer answers project-level questions on top of the memory service
type Explorer struct {
	svc *memory.Service
	log *zap.Logger
}

// NewExplorer creates a project explorer backed by the given service
func NewExplorer(svc *memory.Service) *Explorer {
	return &Explorer{
		svc: svc,
		log: logger.Named("projects"),
	}
}

// GetContext loads the project entity and buckets its related entities by
// label. Depth 0 defaults to direct neighbors.
func (e *Explorer) GetContext(ctx context.Context, project string, depth int) (*Context, error) {
	if depth == 0 {
		depth = 1
	}

	entity, err := e.svc.FindEntityByName(ctx, project)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, &apperrors.EntityNotFoundError{Name: project}
	}

	related, err := e.svc.FindRelatedEntities(ctx, project, "", memory.DirectionBoth, depth)
	if err != nil {
		return nil, err
	}

	result := &Context{Project: *entity}
	for _, rel := range related {
		switch {
		case hasAnyLabel(rel, technologyLabels):
			result.Technologies = append(result.Technologies, rel)
		case rel.HasLabel("Note"):
			result.Notes = append(result.Notes, rel)
		case rel.HasLabel("Component"):
			result.Components = append(result.Components, rel)
		case rel.HasLabel("Task"):
			result.Tasks = append(result.Tasks, rel)
		default:
			result.Other = append(result.Other, rel)
		}
	}

	e.log.Debug("project context assembled",
		zap.String("project", project),
		zap.Int("related", len(related)),
	)
	return result, nil
}

// ListProjects returns every entity labeled as a project
func (e *Explorer) ListProjects(ctx context.Context) ([]memory.Entity, error) {
	return e.svc.FindEntitiesByLabels(ctx, []string{ProjectLabel}, memory.MatchAny, "")
}

func hasAnyLabel(entity memory.Entity, labels []string) bool {
	for _, label := range labels {
		if entity.HasLabel(label) {
			return true
		}
	}
	return false
}
