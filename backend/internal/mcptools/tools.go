package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	"graphmem/backend/internal/projects"
	"graphmem/backend/internal/tasks"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// Toolset exposes the memory facade as MCP tools
type Toolset struct {
	svc      *memory.Service
	tasks    *tasks.Manager
	projects *projects.Explorer
	log      *zap.Logger
}

// Register adds every memory tool to the MCP server
func Register(srv *server.MCPServer, svc *memory.Service, taskMgr *tasks.Manager, explorer *projects.Explorer) {
	ts := &Toolset{
		svc:      svc,
		tasks:    taskMgr,
		projects: explorer,
		log:      logger.Named("mcptools"),
	}

	srv.AddTool(buildCreateEntitiesTool(), ts.handleCreateEntities)
	srv.AddTool(buildGetEntityTool(), ts.handleGetEntity)
	srv.AddTool(buildCreateRelationshipsTool(), ts.handleCreateRelationships)
	srv.AddTool(buildFindEntitiesByLabelsTool(), ts.handleFindEntitiesByLabels)
	srv.AddTool(buildFindRelatedEntitiesTool(), ts.handleFindRelatedEntities)
	srv.AddTool(buildFindRelationshipsTool(), ts.handleFindRelationships)
	srv.AddTool(buildUpdateEntityTool(), ts.handleUpdateEntity)
	srv.AddTool(buildUpdateRelationshipTool(), ts.handleUpdateRelationship)
	srv.AddTool(buildDeleteEntitiesTool(), ts.handleDeleteEntities)
	srv.AddTool(buildDeleteRelationshipsTool(), ts.handleDeleteRelationships)
	srv.AddTool(buildSetObservationsTool(), ts.handleSetObservations)
	srv.AddTool(buildAddObservationsTool(), ts.handleAddObservations)
	srv.AddTool(buildRemoveObservationsTool(), ts.handleRemoveObservations)
	srv.AddTool(buildRemoveAllObservationsTool(), ts.handleRemoveAllObservations)
	srv.AddTool(buildCreateTaskTool(), ts.handleCreateTask)
	srv.AddTool(buildGetTaskTool(), ts.handleGetTask)
	srv.AddTool(buildListTasksTool(), ts.handleListTasks)
	srv.AddTool(buildUpdateTaskTool(), ts.handleUpdateTask)
	srv.AddTool(buildDeleteTaskTool(), ts.handleDeleteTask)
	srv.AddTool(buildListProjectsTool(), ts.handleListProjects)
	srv.AddTool(buildGetProjectContextTool(), ts.handleGetProjectContext)
}

// ---------------------------------------------------------------------------
// Tool builders
// ---------------------------------------------------------------------------

func buildCreateEntitiesTool() mcp.Tool {
	return mcp.NewTool(
		"create_entities",
		mcp.WithDescription("Creates entities in the knowledge graph. Each entity has a unique name, labels, observations and optional typed properties. Valid entities are persisted even when others in the batch fail validation."),
		mcp.WithArray("entities",
			mcp.Description("Entities to create: [{name, labels, observations, properties}, ...]"),
			mcp.Required(),
		),
	)
}

func buildGetEntityTool() mcp.Tool {
	return mcp.NewTool(
		"get_entity",
		mcp.WithDescription("Retrieves an entity by name together with all its relationships."),
		mcp.WithString("name",
			mcp.Description("Entity name to look up"),
			mcp.Required(),
		),
	)
}

func buildCreateRelationshipsTool() mcp.Tool {
	return mcp.NewTool(
		"create_relationships",
		mcp.WithDescription("Creates directed, typed relationships between existing entities. Type names must be snake_case. Valid relationships are persisted even when others in the batch fail validation."),
		mcp.WithArray("relationships",
			mcp.Description("Relationships to create: [{from, to, name, properties}, ...]"),
			mcp.Required(),
		),
	)
}

func buildFindEntitiesByLabelsTool() mcp.Tool {
	return mcp.NewTool(
		"find_entities_by_labels",
		mcp.WithDescription("Searches entities by label set."),
		mcp.WithArray("labels",
			mcp.Description("Labels to match"),
		),
		mcp.WithString("match",
			mcp.Description("Match mode: 'any' (default) or 'all'"),
			mcp.Enum("any", "all"),
		),
		mcp.WithString("required_label",
			mcp.Description("Label every result must carry; defaults to the configured memory label"),
		),
	)
}

func buildFindRelatedEntitiesTool() mcp.Tool {
	return mcp.NewTool(
		"find_related_entities",
		mcp.WithDescription("Finds entities reachable from a starting entity within a bounded number of hops (1-5)."),
		mcp.WithString("name",
			mcp.Description("Starting entity name"),
			mcp.Required(),
		),
		mcp.WithString("relationship_type",
			mcp.Description("Restrict traversal to this relationship type"),
		),
		mcp.WithString("direction",
			mcp.Description("Traversal direction: 'outgoing', 'incoming' or 'both' (default)"),
			mcp.Enum("outgoing", "incoming", "both"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Maximum hops, 1 to 5 (default 1)"),
		),
	)
}

func buildFindRelationshipsTool() mcp.Tool {
	return mcp.NewTool(
		"find_relationships",
		mcp.WithDescription("Searches relationships by endpoint names and type. Empty filters match any relationship."),
		mcp.WithString("from",
			mcp.Description("Source entity name"),
		),
		mcp.WithString("to",
			mcp.Description("Target entity name"),
		),
		mcp.WithString("name",
			mcp.Description("Relationship type"),
		),
	)
}

func buildUpdateEntityTool() mcp.Tool {
	return mcp.NewTool(
		"update_entity",
		mcp.WithDescription("Applies a partial update to an entity. Each of observations/properties/labels accepts exactly one strategy (add, remove or set)."),
		mcp.WithString("name",
			mcp.Description("Entity name to update"),
			mcp.Required(),
		),
		mcp.WithObject("update",
			mcp.Description("Update payload: {observations: {add|remove|set}, properties: {add|remove|set}, labels: {add|remove}}"),
			mcp.Required(),
		),
	)
}

func buildUpdateRelationshipTool() mcp.Tool {
	return mcp.NewTool(
		"update_relationship",
		mcp.WithDescription("Applies a property update to the relationship of the given type between two entities. The properties payload accepts exactly one strategy (add, remove or set); set replaces the whole property map."),
		mcp.WithString("from",
			mcp.Description("Source entity name"),
			mcp.Required(),
		),
		mcp.WithString("to",
			mcp.Description("Target entity name"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Relationship type"),
			mcp.Required(),
		),
		mcp.WithObject("update",
			mcp.Description("Update payload: {properties: {add|remove|set}}"),
			mcp.Required(),
		),
	)
}

func buildDeleteEntitiesTool() mcp.Tool {
	return mcp.NewTool(
		"delete_entities",
		mcp.WithDescription("Deletes entities by name, detaching all their relationships."),
		mcp.WithArray("names",
			mcp.Description("Entity names to delete"),
			mcp.Required(),
		),
	)
}

func buildDeleteRelationshipsTool() mcp.Tool {
	return mcp.NewTool(
		"delete_relationships",
		mcp.WithDescription("Deletes the named relationships between their endpoint entities."),
		mcp.WithArray("relationships",
			mcp.Description("Relationships to delete: [{from, to, name}, ...]"),
			mcp.Required(),
		),
	)
}

func buildSetObservationsTool() mcp.Tool {
	return mcp.NewTool(
		"set_observations",
		mcp.WithDescription("Replaces an entity's observation list."),
		mcp.WithString("name",
			mcp.Description("Entity name"),
			mcp.Required(),
		),
		mcp.WithArray("observations",
			mcp.Description("New observation list"),
			mcp.Required(),
		),
	)
}

func buildAddObservationsTool() mcp.Tool {
	return mcp.NewTool(
		"add_observations",
		mcp.WithDescription("Appends observations to an entity."),
		mcp.WithString("name",
			mcp.Description("Entity name"),
			mcp.Required(),
		),
		mcp.WithArray("observations",
			mcp.Description("Observations to append"),
			mcp.Required(),
		),
	)
}

func buildRemoveObservationsTool() mcp.Tool {
	return mcp.NewTool(
		"remove_observations",
		mcp.WithDescription("Removes matching observations from an entity."),
		mcp.WithString("name",
			mcp.Description("Entity name"),
			mcp.Required(),
		),
		mcp.WithArray("observations",
			mcp.Description("Observations to remove"),
			mcp.Required(),
		),
	)
}

func buildRemoveAllObservationsTool() mcp.Tool {
	return mcp.NewTool(
		"remove_all_observations",
		mcp.WithDescription("Clears an entity's observation list."),
		mcp.WithString("name",
			mcp.Description("Entity name"),
			mcp.Required(),
		),
	)
}

func buildCreateTaskTool() mcp.Tool {
	return mcp.NewTool(
		"create_task",
		mcp.WithDescription("Creates a task entity under a project with optional dependencies on other tasks."),
		mcp.WithString("project",
			mcp.Description("Owning project; defaults to the configured default project"),
		),
		mcp.WithString("description",
			mcp.Description("What the task is about"),
		),
		mcp.WithString("type",
			mcp.Description("Kind of work"),
			mcp.Enum("feature", "bug", "chore", "improvement"),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (default 'todo')"),
			mcp.Enum("todo", "in_progress", "blocked", "done", "cancelled"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority (default 'medium')"),
			mcp.Enum("low", "medium", "high", "critical"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date in YYYY-MM-DD form"),
		),
		mcp.WithArray("dependencies",
			mcp.Description("Names of tasks this one depends on"),
		),
	)
}

func buildGetTaskTool() mcp.Tool {
	return mcp.NewTool(
		"get_task",
		mcp.WithDescription("Retrieves a task by name."),
		mcp.WithString("name",
			mcp.Description("Task name"),
			mcp.Required(),
		),
	)
}

func buildListTasksTool() mcp.Tool {
	return mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("Lists the tasks contained by a project, optionally filtered by status."),
		mcp.WithString("project",
			mcp.Description("Owning project; defaults to the configured default project"),
		),
		mcp.WithString("status",
			mcp.Description("Only return tasks with this status"),
			mcp.Enum("todo", "in_progress", "blocked", "done", "cancelled"),
		),
	)
}

func buildUpdateTaskTool() mcp.Tool {
	return mcp.NewTool(
		"update_task",
		mcp.WithDescription("Applies a partial update to a task and returns the updated task."),
		mcp.WithString("name",
			mcp.Description("Task name"),
			mcp.Required(),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("type",
			mcp.Description("New kind of work"),
			mcp.Enum("feature", "bug", "chore", "improvement"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum("todo", "in_progress", "blocked", "done", "cancelled"),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum("low", "medium", "high", "critical"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date in YYYY-MM-DD form"),
		),
	)
}

func buildDeleteTaskTool() mcp.Tool {
	return mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Deletes a task and its edges."),
		mcp.WithString("name",
			mcp.Description("Task name"),
			mcp.Required(),
		),
	)
}

func buildListProjectsTool() mcp.Tool {
	return mcp.NewTool(
		"list_projects",
		mcp.WithDescription("Lists every project entity in the graph."),
	)
}

func buildGetProjectContextTool() mcp.Tool {
	return mcp.NewTool(
		"get_project_context",
		mcp.WithDescription("Loads a project and its related entities bucketed into technologies, notes, components, tasks and other."),
		mcp.WithString("project",
			mcp.Description("Project entity name"),
			mcp.Required(),
		),
		mcp.WithNumber("depth",
			mcp.Description("Traversal depth, 1 to 5 (default 1)"),
		),
	)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (ts *Toolset) handleCreateEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var entities []memory.Entity
	if err := decodeArg(req.GetArguments(), "entities", &entities); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := ts.svc.CreateEntities(ctx, entities); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %d entities", len(entities))), nil
}

func (ts *Toolset) handleGetEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	entity, err := ts.svc.FindEntityByName(ctx, name)
	if err != nil {
		return ts.renderError(err), nil
	}
	if entity == nil {
		return mcp.NewToolResultError(fmt.Sprintf("entity not found: %s", name)), nil
	}
	return jsonResult(entity)
}

func (ts *Toolset) handleCreateRelationships(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var relationships []memory.Relationship
	if err := decodeArg(req.GetArguments(), "relationships", &relationships); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := ts.svc.CreateRelationships(ctx, relationships); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %d relationships", len(relationships))), nil
}

func (ts *Toolset) handleFindEntitiesByLabels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	labels := stringSlice(args["labels"])
	match, _ := args["match"].(string)
	required, _ := args["required_label"].(string)

	entities, err := ts.svc.FindEntitiesByLabels(ctx, labels, memory.ParseLabelMatchMode(match), required)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(entities)
}

func (ts *Toolset) handleFindRelatedEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, _ := args["name"].(string)
	relType, _ := args["relationship_type"].(string)
	direction, _ := args["direction"].(string)
	depth := intArg(args["depth"], 1)

	entities, err := ts.svc.FindRelatedEntities(ctx, name, relType, memory.ParseRelationshipDirection(direction), depth)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(entities)
}

func (ts *Toolset) handleFindRelationships(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	filter := memory.RelationshipFilter{
		From: stringArg(args, "from"),
		To:   stringArg(args, "to"),
		Name: stringArg(args, "name"),
	}

	relationships, err := ts.svc.FindRelationships(ctx, filter)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(relationships)
}

func (ts *Toolset) handleUpdateEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	var update memory.EntityUpdate
	if err := decodeArg(args, "update", &update); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := ts.svc.UpdateEntity(ctx, name, update); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated entity %s", name)), nil
}

func (ts *Toolset) handleUpdateRelationship(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	from := stringArg(args, "from")
	to := stringArg(args, "to")
	name := stringArg(args, "name")
	if from == "" || to == "" || name == "" {
		return mcp.NewToolResultError("from, to and name parameters are required"), nil
	}
	var update memory.RelationshipUpdate
	if err := decodeArg(args, "update", &update); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := ts.svc.UpdateRelationship(ctx, from, to, name, update); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated relationship %s from %s to %s", name, from, to)), nil
}

func (ts *Toolset) handleDeleteEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := stringSlice(req.GetArguments()["names"])
	if len(names) == 0 {
		return mcp.NewToolResultError("names parameter is required"), nil
	}

	if err := ts.svc.DeleteEntities(ctx, names); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %d entities", len(names))), nil
}

func (ts *Toolset) handleDeleteRelationships(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var refs []memory.RelationshipRef
	if err := decodeArg(req.GetArguments(), "relationships", &refs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultError("relationships parameter is required"), nil
	}

	if err := ts.svc.DeleteRelationships(ctx, refs); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %d relationships", len(refs))), nil
}

func (ts *Toolset) handleSetObservations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ts.handleObservations(ctx, req, ts.svc.SetObservations, "set")
}

func (ts *Toolset) handleAddObservations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ts.handleObservations(ctx, req, ts.svc.AddObservations, "added")
}

func (ts *Toolset) handleRemoveObservations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ts.handleObservations(ctx, req, ts.svc.RemoveObservations, "removed")
}

func (ts *Toolset) handleObservations(ctx context.Context, req mcp.CallToolRequest, op func(context.Context, string, []string) error, verb string) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	observations := stringSlice(args["observations"])

	if err := op(ctx, name, observations); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %d observations on %s", verb, len(observations), name)), nil
}

func (ts *Toolset) handleRemoveAllObservations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	if err := ts.svc.RemoveAllObservations(ctx, name); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed all observations on %s", name)), nil
}

func (ts *Toolset) handleCreateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	taskReq := tasks.CreateTaskRequest{
		Project:      stringArg(args, "project"),
		Description:  stringArg(args, "description"),
		Type:         tasks.Type(stringArg(args, "type")),
		Status:       tasks.Status(stringArg(args, "status")),
		Priority:     tasks.Priority(stringArg(args, "priority")),
		Dependencies: stringSlice(args["dependencies"]),
	}
	if raw := stringArg(args, "due_date"); raw != "" {
		due, err := time.Parse(memory.DateLayout, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_date %q, expected YYYY-MM-DD", raw)), nil
		}
		taskReq.DueDate = &due
	}

	task, err := ts.tasks.CreateTask(ctx, taskReq)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(task)
}

func (ts *Toolset) handleGetTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	task, err := ts.tasks.GetTask(ctx, name)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(task)
}

func (ts *Toolset) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	list, err := ts.tasks.ListTasks(ctx, stringArg(args, "project"), tasks.Status(stringArg(args, "status")))
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(list)
}

func (ts *Toolset) handleUpdateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	var patch tasks.TaskUpdate
	if raw := stringArg(args, "description"); raw != "" {
		patch.Description = &raw
	}
	if raw := stringArg(args, "type"); raw != "" {
		kind := tasks.Type(raw)
		patch.Type = &kind
	}
	if raw := stringArg(args, "status"); raw != "" {
		status := tasks.Status(raw)
		patch.Status = &status
	}
	if raw := stringArg(args, "priority"); raw != "" {
		priority := tasks.Priority(raw)
		patch.Priority = &priority
	}
	if raw := stringArg(args, "due_date"); raw != "" {
		due, err := time.Parse(memory.DateLayout, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_date %q, expected YYYY-MM-DD", raw)), nil
		}
		patch.DueDate = &due
	}

	task, err := ts.tasks.UpdateTask(ctx, name, patch)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(task)
}

func (ts *Toolset) handleDeleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	if err := ts.tasks.DeleteTask(ctx, name); err != nil {
		return ts.renderError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted task %s", name)), nil
}

func (ts *Toolset) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectList, err := ts.projects.ListProjects(ctx)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(projectList)
}

func (ts *Toolset) handleGetProjectContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	project, _ := args["project"].(string)
	if project == "" {
		return mcp.NewToolResultError("project parameter is required"), nil
	}
	depth := intArg(args["depth"], 1)

	result, err := ts.projects.GetContext(ctx, project, depth)
	if err != nil {
		return ts.renderError(err), nil
	}
	return jsonResult(result)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// renderError maps domain errors onto tool results. Validation outcomes are
// surfaced verbatim; internal failures are logged and replaced by a generic
// message so backend details never cross the protocol boundary.
func (ts *Toolset) renderError(err error) *mcp.CallToolResult {
	var valErr *apperrors.ValidationError
	var batchErr *apperrors.BatchError
	var notFound *apperrors.EntityNotFoundError
	switch {
	case errors.As(err, &valErr),
		errors.As(err, &batchErr),
		errors.As(err, &notFound),
		errors.Is(err, apperrors.ErrMissingProject),
		errors.Is(err, tasks.ErrSelfDependency):
		return mcp.NewToolResultError(err.Error())
	default:
		ts.log.Error("tool call failed", zap.Error(err))
		return mcp.NewToolResultError("internal error")
	}
}

// decodeArg re-encodes a structured argument through JSON into a typed value
func decodeArg(args map[string]any, key string, target any) error {
	raw, ok := args[key]
	if !ok {
		return fmt.Errorf("%s parameter is required", key)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid %s payload: %v", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid %s payload: %v", key, err)
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("failed to serialize result"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func stringSlice(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intArg(raw any, fallback int) int {
	if f, ok := raw.(float64); ok {
		return int(f)
	}
	return fallback
}
