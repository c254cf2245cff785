package memory

// EntityUpdate describes modifications to an entity. Each nested update
// carries at most one strategy; mixing add/remove/set in one call is a
// validation error.
type EntityUpdate struct {
	Observations *ObservationsUpdate `json:"observations,omitempty"`
	Properties   *PropertiesUpdate   `json:"properties,omitempty"`
	Labels       *LabelsUpdate       `json:"labels,omitempty"`
}

// RelationshipUpdate describes modifications to a relationship's properties
type RelationshipUpdate struct {
	Properties *PropertiesUpdate `json:"properties,omitempty"`
}

// ObservationsUpdate modifies an entity's observation list
type ObservationsUpdate struct {
	// Add appends observations
	Add []string `json:"add,omitempty"`
	// Remove deletes matching observations
	Remove []string `json:"remove,omitempty"`
	// Set replaces the whole list
	Set []string `json:"set,omitempty"`
}

// PropertiesUpdate modifies a property map
type PropertiesUpdate struct {
	// Add merges the given entries into the existing map
	Add map[string]Value `json:"add,omitempty"`
	// Remove deletes the named keys
	Remove []string `json:"remove,omitempty"`
	// Set replaces the whole map
	Set map[string]Value `json:"set,omitempty"`
}

// LabelsUpdate modifies an entity's label set
type LabelsUpdate struct {
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

func (u *ObservationsUpdate) strategies() int {
	n := 0
	if u.Add != nil {
		n++
	}
	if u.Remove != nil {
		n++
	}
	if u.Set != nil {
		n++
	}
	return n
}

func (u *PropertiesUpdate) strategies() int {
	n := 0
	if u.Add != nil {
		n++
	}
	if u.Remove != nil {
		n++
	}
	if u.Set != nil {
		n++
	}
	return n
}

func (u *LabelsUpdate) strategies() int {
	n := 0
	if u.Add != nil {
		n++
	}
	if u.Remove != nil {
		n++
	}
	return n
}
