package mcptools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphmem/backend/internal/memory"
	"graphmem/backend/internal/projects"
	"graphmem/backend/internal/tasks"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// nopRepo is a no-op repository base; tests embed it and override what they
// need.
type nopRepo struct{}

func (nopRepo) CreateEntities(ctx context.Context, entities []memory.Entity) error { return nil }
func (nopRepo) FindEntityByName(ctx context.Context, name string) (*memory.Entity, error) {
	return nil, nil
}
func (nopRepo) SetObservations(ctx context.Context, name string, observations []string) error {
	return nil
}
func (nopRepo) AddObservations(ctx context.Context, name string, observations []string) error {
	return nil
}
func (nopRepo) RemoveObservations(ctx context.Context, name string, observations []string) error {
	return nil
}
func (nopRepo) RemoveAllObservations(ctx context.Context, name string) error { return nil }
func (nopRepo) CreateRelationships(ctx context.Context, relationships []memory.Relationship) error {
	return nil
}
func (nopRepo) FindRelatedEntities(ctx context.Context, name, relType string, direction memory.RelationshipDirection, depth int) ([]memory.Entity, error) {
	return nil, nil
}
func (nopRepo) FindEntitiesByLabels(ctx context.Context, labels []string, mode memory.LabelMatchMode, requiredLabel string) ([]memory.Entity, error) {
	return nil, nil
}
func (nopRepo) FindRelationships(ctx context.Context, filter memory.RelationshipFilter) ([]memory.Relationship, error) {
	return nil, nil
}
func (nopRepo) UpdateEntity(ctx context.Context, name string, update memory.EntityUpdate) error {
	return nil
}
func (nopRepo) UpdateRelationship(ctx context.Context, from, to, name string, update memory.RelationshipUpdate) error {
	return nil
}
func (nopRepo) DeleteEntities(ctx context.Context, names []string) error              { return nil }
func (nopRepo) DeleteRelationships(ctx context.Context, refs []memory.RelationshipRef) error {
	return nil
}

type capturingRepo struct {
	nopRepo
	created []memory.Entity
	entity  *memory.Entity
	err     error
}

func (r *capturingRepo) CreateEntities(ctx context.Context, entities []memory.Entity) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, entities...)
	return nil
}

func (r *capturingRepo) FindEntityByName(ctx context.Context, name string) (*memory.Entity, error) {
	return r.entity, r.err
}

func newToolset(repo memory.Repository) *Toolset {
	svc := memory.NewService(repo, memory.DefaultConfig())
	return &Toolset{
		svc:      svc,
		tasks:    tasks.NewManager(svc),
		projects: projects.NewExplorer(svc),
		log:      logger.Named("mcptools"),
	}
}

func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleCreateEntities(t *testing.T) {
	repo := &capturingRepo{}
	ts := newToolset(repo)

	res, err := ts.handleCreateEntities(context.Background(), request(map[string]any{
		"entities": []any{
			map[string]any{"name": "proj:alpha", "labels": []any{"Project"}},
		},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "created 1 entities", resultText(t, res))

	require.Len(t, repo.created, 1)
	assert.Contains(t, repo.created[0].Labels, "Memory")
}

func TestHandleCreateEntitiesValidationSurfaces(t *testing.T) {
	ts := newToolset(&capturingRepo{})

	res, err := ts.handleCreateEntities(context.Background(), request(map[string]any{
		"entities": []any{map[string]any{"name": "x", "labels": []any{"Spaceship"}}},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Spaceship")
}

func TestHandleCreateEntitiesMissingArgument(t *testing.T) {
	ts := newToolset(&capturingRepo{})

	res, err := ts.handleCreateEntities(context.Background(), request(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetEntity(t *testing.T) {
	repo := &capturingRepo{entity: &memory.Entity{
		Name:         "proj:alpha",
		Labels:       []string{"Memory", "Project"},
		Observations: []string{"note"},
	}}
	ts := newToolset(repo)

	res, err := ts.handleGetEntity(context.Background(), request(map[string]any{"name": "proj:alpha"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"name":"proj:alpha"`)
}

func TestHandleGetEntityNotFound(t *testing.T) {
	ts := newToolset(&capturingRepo{})

	res, err := ts.handleGetEntity(context.Background(), request(map[string]any{"name": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestHandleFindRelatedEntitiesDepthValidation(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleFindRelatedEntities(context.Background(), request(map[string]any{
		"name":  "a",
		"depth": float64(9),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "depth")
}

func TestHandleCreateTaskMissingProject(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleCreateTask(context.Background(), request(map[string]any{
		"description": "orphan work",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no project")
}

func TestHandleCreateTaskInvalidDueDate(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleCreateTask(context.Background(), request(map[string]any{
		"project":  "proj:alpha",
		"due_date": "next tuesday",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "due_date")
}

// relationshipRepo records relationship and observation calls
type relationshipRepo struct {
	nopRepo
	filter   memory.RelationshipFilter
	rels     []memory.Relationship
	updated  *memory.RelationshipUpdate
	deleted  []memory.RelationshipRef
	cleared  []string
	byLabels []memory.Entity
}

func (r *relationshipRepo) FindRelationships(ctx context.Context, filter memory.RelationshipFilter) ([]memory.Relationship, error) {
	r.filter = filter
	return r.rels, nil
}

func (r *relationshipRepo) UpdateRelationship(ctx context.Context, from, to, name string, update memory.RelationshipUpdate) error {
	r.updated = &update
	return nil
}

func (r *relationshipRepo) DeleteRelationships(ctx context.Context, refs []memory.RelationshipRef) error {
	r.deleted = append(r.deleted, refs...)
	return nil
}

func (r *relationshipRepo) RemoveAllObservations(ctx context.Context, name string) error {
	r.cleared = append(r.cleared, name)
	return nil
}

func (r *relationshipRepo) FindEntitiesByLabels(ctx context.Context, labels []string, mode memory.LabelMatchMode, requiredLabel string) ([]memory.Entity, error) {
	return r.byLabels, nil
}

func TestHandleFindRelationships(t *testing.T) {
	repo := &relationshipRepo{rels: []memory.Relationship{
		{From: "proj:alpha", To: "task:one", Name: "contains"},
	}}
	ts := newToolset(repo)

	res, err := ts.handleFindRelationships(context.Background(), request(map[string]any{
		"from": "proj:alpha",
		"name": "contains",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"name":"contains"`)
	assert.Equal(t, memory.RelationshipFilter{From: "proj:alpha", Name: "contains"}, repo.filter)
}

func TestHandleUpdateRelationship(t *testing.T) {
	repo := &relationshipRepo{}
	ts := newToolset(repo)

	res, err := ts.handleUpdateRelationship(context.Background(), request(map[string]any{
		"from": "a",
		"to":   "b",
		"name": "uses",
		"update": map[string]any{
			"properties": map[string]any{
				"set": map[string]any{
					"weight": map[string]any{"kind": "integer", "value": 2},
				},
			},
		},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	require.NotNil(t, repo.updated)
	require.NotNil(t, repo.updated.Properties)
	assert.Equal(t, memory.IntegerValue(2), repo.updated.Properties.Set["weight"])
}

func TestHandleUpdateRelationshipMissingEndpoint(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleUpdateRelationship(context.Background(), request(map[string]any{
		"from":   "a",
		"name":   "uses",
		"update": map[string]any{},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleDeleteRelationships(t *testing.T) {
	repo := &relationshipRepo{}
	ts := newToolset(repo)

	res, err := ts.handleDeleteRelationships(context.Background(), request(map[string]any{
		"relationships": []any{
			map[string]any{"from": "a", "to": "b", "name": "uses"},
		},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "deleted 1 relationships", resultText(t, res))
	assert.Equal(t, []memory.RelationshipRef{{From: "a", To: "b", Name: "uses"}}, repo.deleted)
}

func TestHandleRemoveAllObservations(t *testing.T) {
	repo := &relationshipRepo{}
	ts := newToolset(repo)

	res, err := ts.handleRemoveAllObservations(context.Background(), request(map[string]any{
		"name": "proj:alpha",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"proj:alpha"}, repo.cleared)

	res, err = ts.handleRemoveAllObservations(context.Background(), request(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetTaskNotFound(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleGetTask(context.Background(), request(map[string]any{"name": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestHandleListTasksMissingProject(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleListTasks(context.Background(), request(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no project")
}

func TestHandleListTasksEmptyProject(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleListTasks(context.Background(), request(map[string]any{
		"project": "proj:alpha",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "[]", resultText(t, res))
}

func TestHandleUpdateTaskInvalidDueDate(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleUpdateTask(context.Background(), request(map[string]any{
		"name":     "task:one",
		"due_date": "someday",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "due_date")
}

func TestHandleDeleteTaskNotFound(t *testing.T) {
	ts := newToolset(nopRepo{})

	res, err := ts.handleDeleteTask(context.Background(), request(map[string]any{"name": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestHandleListProjects(t *testing.T) {
	repo := &relationshipRepo{byLabels: []memory.Entity{
		{Name: "proj:alpha", Labels: []string{"Memory", "Project"}},
	}}
	ts := newToolset(repo)

	res, err := ts.handleListProjects(context.Background(), request(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"name":"proj:alpha"`)
}

func TestInternalErrorsAreNotExposed(t *testing.T) {
	repo := &capturingRepo{err: apperrors.NewQueryError("boom", nil)}
	ts := newToolset(repo)

	res, err := ts.handleCreateEntities(context.Background(), request(map[string]any{
		"entities": []any{map[string]any{"name": "x", "labels": []any{"Project"}}},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "internal error", resultText(t, res))
}
