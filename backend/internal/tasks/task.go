package tasks

import (
	"time"

	"graphmem/backend/internal/memory"
)

// TaskLabel is the entity label carried by every task
const TaskLabel = "Task"

// Priority orders tasks by urgency
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Status tracks a task through its lifecycle
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Type categorizes the work a task represents
type Type string

const (
	TypeFeature     Type = "feature"
	TypeBug         Type = "bug"
	TypeChore       Type = "chore"
	TypeImprovement Type = "improvement"
)

// Property keys on task entities
const (
	propDescription = "description"
	propType        = "task_type"
	propStatus      = "status"
	propPriority    = "priority"
	propDueDate     = "due_date"
	propCreatedAt   = "created_at"
	propUpdatedAt   = "updated_at"
)

// Task is the task view of a graph entity. Project and Dependencies are
// derived from the entity's contains and depends_on relationships.
type Task struct {
	Name         string     `json:"name"`
	Project      string     `json:"project,omitempty"`
	Description  string     `json:"description,omitempty"`
	Type         Type       `json:"type,omitempty"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Dependencies []string   `json:"dependencies,omitempty"`
}

// properties builds the entity property map for a task
func (t Task) properties() map[string]memory.Value {
	props := map[string]memory.Value{
		propStatus:    memory.StringValue(string(t.Status)),
		propPriority:  memory.StringValue(string(t.Priority)),
		propCreatedAt: memory.DateTimeValue(t.CreatedAt),
		propUpdatedAt: memory.DateTimeValue(t.UpdatedAt),
	}
	if t.Description != "" {
		props[propDescription] = memory.StringValue(t.Description)
	}
	if t.Type != "" {
		props[propType] = memory.StringValue(string(t.Type))
	}
	if t.DueDate != nil {
		props[propDueDate] = memory.DateValue(*t.DueDate)
	}
	return props
}

// taskFromEntity rebuilds a task from its entity. Properties written by this
// package come back as strings, temporal ones in their formatted layouts;
// missing or unparsable fields degrade to zero values rather than failing the
// read.
func taskFromEntity(entity memory.Entity) Task {
	task := Task{Name: entity.Name}

	str := func(key string) string {
		if v, ok := entity.Properties[key]; ok && v.Kind() == memory.KindString {
			return v.StringVal()
		}
		return ""
	}

	task.Description = str(propDescription)
	task.Type = Type(str(propType))
	task.Status = Status(str(propStatus))
	task.Priority = Priority(str(propPriority))

	if raw := str(propDueDate); raw != "" {
		if due, err := time.Parse(memory.DateLayout, raw); err == nil {
			task.DueDate = &due
		}
	}
	if raw := str(propCreatedAt); raw != "" {
		if created, err := time.Parse(time.RFC3339, raw); err == nil {
			task.CreatedAt = created
		}
	}
	if raw := str(propUpdatedAt); raw != "" {
		if updated, err := time.Parse(time.RFC3339, raw); err == nil {
			task.UpdatedAt = updated
		}
	}

	for _, rel := range entity.Relationships {
		switch {
		case rel.Name == "contains" && rel.To == entity.Name:
			task.Project = rel.From
		case rel.Name == "depends_on" && rel.From == entity.Name:
			task.Dependencies = append(task.Dependencies, rel.To)
		}
	}
	return task
}
