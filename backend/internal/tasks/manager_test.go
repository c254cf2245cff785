package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphmem/backend/internal/memory"
	apperrors "graphmem/backend/pkg/errors"
)

// fakeRepo is an in-memory repository double tracking entities and
// relationships by name.
type fakeRepo struct {
	mu            sync.Mutex
	entities      map[string]memory.Entity
	relationships []memory.Relationship
}

func newFakeRepo(names ...string) *fakeRepo {
	repo := &fakeRepo{entities: map[string]memory.Entity{}}
	for _, name := range names {
		repo.entities[name] = memory.Entity{
			Name:         name,
			Labels:       []string{"Memory", "Project"},
			Observations: []string{},
		}
	}
	return repo
}

func (f *fakeRepo) CreateEntities(ctx context.Context, entities []memory.Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entity := range entities {
		// Mimic the store: temporal property values persist in their string
		// form and read back as strings.
		if entity.Properties != nil {
			props := make(map[string]memory.Value, len(entity.Properties))
			for key, value := range entity.Properties {
				switch value.Kind() {
				case memory.KindDate, memory.KindTime, memory.KindOffsetTime,
					memory.KindDateTime, memory.KindLocalDateTime, memory.KindDuration:
					props[key] = memory.StringValue(value.String())
				default:
					props[key] = value
				}
			}
			entity.Properties = props
		}
		f.entities[entity.Name] = entity
	}
	return nil
}

func (f *fakeRepo) FindEntityByName(ctx context.Context, name string) (*memory.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entity, ok := f.entities[name]
	if !ok {
		return nil, nil
	}
	entity.Relationships = nil
	for _, rel := range f.relationships {
		if rel.From == name || rel.To == name {
			entity.Relationships = append(entity.Relationships, rel)
		}
	}
	return &entity, nil
}

func (f *fakeRepo) SetObservations(ctx context.Context, name string, observations []string) error {
	return nil
}

func (f *fakeRepo) AddObservations(ctx context.Context, name string, observations []string) error {
	return nil
}

func (f *fakeRepo) RemoveObservations(ctx context.Context, name string, observations []string) error {
	return nil
}

func (f *fakeRepo) RemoveAllObservations(ctx context.Context, name string) error {
	return nil
}

func (f *fakeRepo) CreateRelationships(ctx context.Context, relationships []memory.Relationship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relationships = append(f.relationships, relationships...)
	return nil
}

func (f *fakeRepo) FindRelatedEntities(ctx context.Context, name, relType string, direction memory.RelationshipDirection, depth int) ([]memory.Entity, error) {
	f.mu.Lock()
	reachable := map[string]bool{}
	for _, rel := range f.relationships {
		if relType != "" && rel.Name != relType {
			continue
		}
		if rel.From == name && direction != memory.DirectionIncoming {
			reachable[rel.To] = true
		}
		if rel.To == name && direction != memory.DirectionOutgoing {
			reachable[rel.From] = true
		}
	}
	f.mu.Unlock()

	var entities []memory.Entity
	for related := range reachable {
		entity, _ := f.FindEntityByName(ctx, related)
		if entity != nil {
			entities = append(entities, *entity)
		}
	}
	return entities, nil
}

func (f *fakeRepo) FindEntitiesByLabels(ctx context.Context, labels []string, mode memory.LabelMatchMode, requiredLabel string) ([]memory.Entity, error) {
	return nil, nil
}

func (f *fakeRepo) FindRelationships(ctx context.Context, filter memory.RelationshipFilter) ([]memory.Relationship, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateEntity(ctx context.Context, name string, update memory.EntityUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entity, ok := f.entities[name]
	if !ok {
		return nil
	}
	if update.Properties != nil && update.Properties.Add != nil {
		if entity.Properties == nil {
			entity.Properties = map[string]memory.Value{}
		}
		for key, value := range update.Properties.Add {
			// Mimic the store: values persist in their string form.
			entity.Properties[key] = memory.StringValue(value.String())
		}
	}
	f.entities[name] = entity
	return nil
}

func (f *fakeRepo) UpdateRelationship(ctx context.Context, from, to, name string, update memory.RelationshipUpdate) error {
	return nil
}

func (f *fakeRepo) DeleteEntities(ctx context.Context, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range names {
		delete(f.entities, name)
	}
	return nil
}

func (f *fakeRepo) DeleteRelationships(ctx context.Context, refs []memory.RelationshipRef) error {
	return nil
}

func newManager(repo *fakeRepo, cfg memory.Config) *Manager {
	return NewManager(memory.NewService(repo, cfg))
}

func TestCreateTaskMissingProject(t *testing.T) {
	mgr := newManager(newFakeRepo(), memory.DefaultConfig())

	_, err := mgr.CreateTask(context.Background(), CreateTaskRequest{})
	assert.ErrorIs(t, err, apperrors.ErrMissingProject)
}

func TestCreateTaskDefaultProjectFallback(t *testing.T) {
	repo := newFakeRepo("proj:home")
	cfg := memory.DefaultConfig()
	cfg.DefaultProject = "proj:home"
	mgr := newManager(repo, cfg)

	task, err := mgr.CreateTask(context.Background(), CreateTaskRequest{Description: "fix it"})
	require.NoError(t, err)
	assert.Equal(t, "proj:home", task.Project)
}

func TestCreateTaskUnknownProject(t *testing.T) {
	mgr := newManager(newFakeRepo(), memory.DefaultConfig())

	_, err := mgr.CreateTask(context.Background(), CreateTaskRequest{Project: "proj:ghost"})
	var notFound *apperrors.EntityNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "proj:ghost", notFound.Name)
}

func TestCreateTaskUnknownDependency(t *testing.T) {
	mgr := newManager(newFakeRepo("proj:home"), memory.DefaultConfig())

	_, err := mgr.CreateTask(context.Background(), CreateTaskRequest{
		Project:      "proj:home",
		Dependencies: []string{"task:missing"},
	})
	var notFound *apperrors.EntityNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "task:missing", notFound.Name)
}

func TestCreateTaskSelfDependency(t *testing.T) {
	mgr := newManager(newFakeRepo("proj:home"), memory.DefaultConfig())

	_, err := mgr.CreateTask(context.Background(), CreateTaskRequest{
		Name:         "task:loop",
		Project:      "proj:home",
		Dependencies: []string{"task:loop"},
	})
	assert.ErrorIs(t, err, ErrSelfDependency)
}

func TestCreateTask(t *testing.T) {
	repo := newFakeRepo("proj:home", "task:first")
	mgr := newManager(repo, memory.DefaultConfig())

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task, err := mgr.CreateTask(context.Background(), CreateTaskRequest{
		Name:         "task:second",
		Project:      "proj:home",
		Description:  "write tests",
		Type:         TypeChore,
		DueDate:      &due,
		Dependencies: []string{"task:first"},
	})
	require.NoError(t, err)

	// Defaults fill the unset lifecycle fields.
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())

	entity := repo.entities["task:second"]
	assert.Contains(t, entity.Labels, TaskLabel)
	assert.Contains(t, entity.Labels, "Memory")

	require.Len(t, repo.relationships, 2)
	assert.Equal(t, memory.Relationship{From: "proj:home", To: "task:second", Name: "contains"}, repo.relationships[0])
	assert.Equal(t, memory.Relationship{From: "task:second", To: "task:first", Name: "depends_on"}, repo.relationships[1])
}

func TestCreateTaskGeneratesName(t *testing.T) {
	mgr := newManager(newFakeRepo("proj:home"), memory.DefaultConfig())

	task, err := mgr.CreateTask(context.Background(), CreateTaskRequest{Project: "proj:home"})
	require.NoError(t, err)
	assert.Contains(t, task.Name, "task:")
}

func TestListTasks(t *testing.T) {
	repo := newFakeRepo("proj:home")
	mgr := newManager(repo, memory.DefaultConfig())
	ctx := context.Background()

	_, err := mgr.CreateTask(ctx, CreateTaskRequest{Name: "task:a", Project: "proj:home"})
	require.NoError(t, err)
	_, err = mgr.CreateTask(ctx, CreateTaskRequest{Name: "task:b", Project: "proj:home", Status: StatusDone})
	require.NoError(t, err)

	all, err := mgr.ListTasks(ctx, "proj:home", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := mgr.ListTasks(ctx, "proj:home", StatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "task:b", done[0].Name)
}

func TestGetTaskRoundTrip(t *testing.T) {
	repo := newFakeRepo("proj:home", "task:dep")
	mgr := newManager(repo, memory.DefaultConfig())
	ctx := context.Background()

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := mgr.CreateTask(ctx, CreateTaskRequest{
		Name:         "task:full",
		Project:      "proj:home",
		Description:  "all fields",
		Type:         TypeBug,
		Status:       StatusBlocked,
		Priority:     PriorityHigh,
		DueDate:      &due,
		Dependencies: []string{"task:dep"},
	})
	require.NoError(t, err)

	task, err := mgr.GetTask(ctx, "task:full")
	require.NoError(t, err)

	assert.Equal(t, "proj:home", task.Project)
	assert.Equal(t, "all fields", task.Description)
	assert.Equal(t, TypeBug, task.Type)
	assert.Equal(t, StatusBlocked, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due, *task.DueDate)
	assert.Equal(t, []string{"task:dep"}, task.Dependencies)
}

func TestGetTaskNotFound(t *testing.T) {
	mgr := newManager(newFakeRepo(), memory.DefaultConfig())

	_, err := mgr.GetTask(context.Background(), "task:ghost")
	var notFound *apperrors.EntityNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetTaskRejectsNonTaskEntity(t *testing.T) {
	mgr := newManager(newFakeRepo("proj:home"), memory.DefaultConfig())

	_, err := mgr.GetTask(context.Background(), "proj:home")
	var notFound *apperrors.EntityNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpdateTask(t *testing.T) {
	repo := newFakeRepo("proj:home")
	mgr := newManager(repo, memory.DefaultConfig())
	ctx := context.Background()

	_, err := mgr.CreateTask(ctx, CreateTaskRequest{Name: "task:a", Project: "proj:home"})
	require.NoError(t, err)

	status := StatusInProgress
	priority := PriorityCritical
	task, err := mgr.UpdateTask(ctx, "task:a", TaskUpdate{
		Status:   &status,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, PriorityCritical, task.Priority)
}

func TestUpdateTaskNotFound(t *testing.T) {
	mgr := newManager(newFakeRepo(), memory.DefaultConfig())

	status := StatusDone
	_, err := mgr.UpdateTask(context.Background(), "task:ghost", TaskUpdate{Status: &status})
	var notFound *apperrors.EntityNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteTask(t *testing.T) {
	repo := newFakeRepo("proj:home")
	mgr := newManager(repo, memory.DefaultConfig())
	ctx := context.Background()

	_, err := mgr.CreateTask(ctx, CreateTaskRequest{Name: "task:a", Project: "proj:home"})
	require.NoError(t, err)

	require.NoError(t, mgr.DeleteTask(ctx, "task:a"))
	_, err = mgr.GetTask(ctx, "task:a")
	assert.Error(t, err)
}
