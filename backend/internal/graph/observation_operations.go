package graph

import (
	"context"

	apperrors "graphmem/backend/pkg/errors"
)

// SetObservations replaces the entity's observation list
func (r *Repository) SetObservations(ctx context.Context, name string, observations []string) error {
	if name == "" {
		return apperrors.NewValidationError(apperrors.EmptyEntityName())
	}

	query := "MATCH (n {name: $name}) SET n.observations = $observations"
	params := map[string]any{
		"name":         name,
		"observations": observations,
	}
	return r.write(ctx, query, params, "failed to set observations for entity "+name)
}

// AddObservations appends observations to the entity. The backend treats the
// observation list as an atomic value, so this is a read-modify-write cycle;
// two concurrent calls against the same entity can lose an update.
func (r *Repository) AddObservations(ctx context.Context, name string, observations []string) error {
	current, err := r.currentObservations(ctx, name)
	if err != nil {
		return err
	}
	return r.SetObservations(ctx, name, append(current, observations...))
}

// RemoveObservations deletes matching observations; read-modify-write, same
// caveat as AddObservations
func (r *Repository) RemoveObservations(ctx context.Context, name string, observations []string) error {
	current, err := r.currentObservations(ctx, name)
	if err != nil {
		return err
	}

	remaining := make([]string, 0, len(current))
	for _, obs := range current {
		if !containsString(observations, obs) {
			remaining = append(remaining, obs)
		}
	}
	return r.SetObservations(ctx, name, remaining)
}

// RemoveAllObservations clears the entity's observation list
func (r *Repository) RemoveAllObservations(ctx context.Context, name string) error {
	return r.SetObservations(ctx, name, []string{})
}

func (r *Repository) currentObservations(ctx context.Context, name string) ([]string, error) {
	entity, err := r.FindEntityByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, nil
	}
	return entity.Observations, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
