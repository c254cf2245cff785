package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// ErrSelfDependency is returned when a task lists itself as a dependency
var ErrSelfDependency = errors.New("a task cannot depend on itself")

// Manager provides task operations on top of the memory service. Tasks are
// plain entities with the Task label; the project owns them through contains
// edges and ordering constraints live on depends_on edges.
type Manager struct {
	svc *memory.Service
	log *zap.Logger
}

// NewManager creates a task manager backed by the given service
func NewManager(svc *memory.Service) *Manager {
	return &Manager{
		svc: svc,
		log: logger.Named("tasks"),
	}
}

// CreateTaskRequest describes a task to create. Name is optional; a generated
// one is used when empty. Project falls back to the configured default.
type CreateTaskRequest struct {
	Name         string     `json:"name,omitempty"`
	Project      string     `json:"project,omitempty"`
	Description  string     `json:"description,omitempty"`
	Type         Type       `json:"type,omitempty"`
	Status       Status     `json:"status,omitempty"`
	Priority     Priority   `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
}

// CreateTask creates a task entity under a project. The project and every
// dependency must already exist; lookups run concurrently. The entity and its
// relationships are created in separate statements, a failure in between can
// leave a task without its edges.
func (m *Manager) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	project, err := m.resolveProject(req.Project)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = "task:" + uuid.NewString()
	}

	for _, dep := range req.Dependencies {
		if dep == "" {
			return nil, apperrors.NewValidationError(apperrors.EmptyEntityName())
		}
		if dep == name {
			return nil, ErrSelfDependency
		}
	}

	required := append([]string{project}, req.Dependencies...)
	g, gctx := errgroup.WithContext(ctx)
	for _, requiredName := range required {
		requiredName := requiredName
		g.Go(func() error {
			entity, err := m.svc.FindEntityByName(gctx, requiredName)
			if err != nil {
				return err
			}
			if entity == nil {
				return &apperrors.EntityNotFoundError{Name: requiredName}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	task := Task{
		Name:         name,
		Project:      project,
		Description:  req.Description,
		Type:         req.Type,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
		Dependencies: req.Dependencies,
	}
	if task.Status == "" {
		task.Status = StatusTodo
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}

	entity := memory.Entity{
		Name:         name,
		Labels:       []string{TaskLabel},
		Observations: []string{},
		Properties:   task.properties(),
	}
	if err := m.svc.CreateEntities(ctx, []memory.Entity{entity}); err != nil {
		return nil, err
	}

	relationships := []memory.Relationship{
		{From: project, To: name, Name: "contains"},
	}
	for _, dep := range req.Dependencies {
		relationships = append(relationships, memory.Relationship{From: name, To: dep, Name: "depends_on"})
	}
	if err := m.svc.CreateRelationships(ctx, relationships); err != nil {
		return nil, err
	}

	m.log.Info("task created",
		zap.String("name", name),
		zap.String("project", project),
		zap.Int("dependencies", len(req.Dependencies)),
	)
	return &task, nil
}

// ListTasks returns the tasks directly contained by a project, optionally
// filtered by status
func (m *Manager) ListTasks(ctx context.Context, project string, status Status) ([]Task, error) {
	project, err := m.resolveProject(project)
	if err != nil {
		return nil, err
	}

	related, err := m.svc.FindRelatedEntities(ctx, project, "contains", memory.DirectionOutgoing, 1)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(related))
	for _, entity := range related {
		if !entity.HasLabel(TaskLabel) {
			continue
		}
		task := taskFromEntity(entity)
		if task.Project == "" {
			task.Project = project
		}
		if status != "" && task.Status != status {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// GetTask returns the named task
func (m *Manager) GetTask(ctx context.Context, name string) (*Task, error) {
	entity, err := m.svc.FindEntityByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if entity == nil || !entity.HasLabel(TaskLabel) {
		return nil, &apperrors.EntityNotFoundError{Name: name}
	}
	task := taskFromEntity(*entity)
	return &task, nil
}

// TaskUpdate is a partial patch of a task's mutable fields
type TaskUpdate struct {
	Description *string    `json:"description,omitempty"`
	Type        *Type      `json:"type,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTask applies a patch to the named task and returns the updated view
func (m *Manager) UpdateTask(ctx context.Context, name string, patch TaskUpdate) (*Task, error) {
	if _, err := m.GetTask(ctx, name); err != nil {
		return nil, err
	}

	props := map[string]memory.Value{
		propUpdatedAt: memory.DateTimeValue(time.Now().UTC().Truncate(time.Second)),
	}
	if patch.Description != nil {
		props[propDescription] = memory.StringValue(*patch.Description)
	}
	if patch.Type != nil {
		props[propType] = memory.StringValue(string(*patch.Type))
	}
	if patch.Status != nil {
		props[propStatus] = memory.StringValue(string(*patch.Status))
	}
	if patch.Priority != nil {
		props[propPriority] = memory.StringValue(string(*patch.Priority))
	}
	if patch.DueDate != nil {
		props[propDueDate] = memory.DateValue(*patch.DueDate)
	}

	update := memory.EntityUpdate{
		Properties: &memory.PropertiesUpdate{Add: props},
	}
	if err := m.svc.UpdateEntity(ctx, name, update); err != nil {
		return nil, err
	}

	m.log.Info("task updated", zap.String("name", name))
	return m.GetTask(ctx, name)
}

// DeleteTask removes the named task and its edges
func (m *Manager) DeleteTask(ctx context.Context, name string) error {
	if _, err := m.GetTask(ctx, name); err != nil {
		return err
	}
	if err := m.svc.DeleteEntities(ctx, []string{name}); err != nil {
		return err
	}
	m.log.Info("task deleted", zap.String("name", name))
	return nil
}

// resolveProject falls back to the configured default project
func (m *Manager) resolveProject(project string) (string, error) {
	if project != "" {
		return project, nil
	}
	if fallback := m.svc.Config().DefaultProject; fallback != "" {
		return fallback, nil
	}
	return "", apperrors.ErrMissingProject
}
