package domain

// Override is a partial patch against a baseline Feature. Presence of a
// field means "this field replaces the baseline value"; a nil pointer
// means the field is not overridden.
type Override struct {
	Start    *string         `json:"start,omitempty"`
	End      *string         `json:"end,omitempty"`
	Capacity []CapacityEntry `json:"capacity,omitempty"`
	HasCap   bool            `json:"-"` // distinguishes "no capacity override" from "overridden to an empty list"
}

// Clone deep-copies an Override so two scenarios can never alias the same
// capacity slice or string pointers.
func (o Override) Clone() Override {
	clone := Override{HasCap: o.HasCap}
	if o.Start != nil {
		s := *o.Start
		clone.Start = &s
	}
	if o.End != nil {
		e := *o.End
		clone.End = &e
	}
	clone.Capacity = CloneCapacity(o.Capacity)
	return clone
}

// IsExplicit reports whether the override differs from the baseline in at
// least one field. A synthetic override (identical to baseline, or with
// nothing set) is not explicit — see spec §3 "Override".
func (o Override) IsExplicit(base Feature) bool {
	if o.Start != nil && *o.Start != base.Start {
		return true
	}
	if o.End != nil && *o.End != base.End {
		return true
	}
	if o.HasCap && !EqualCapacity(o.Capacity, base.Capacity) {
		return true
	}
	return false
}

// EffectiveStart/EffectiveEnd resolve the date the override implies,
// falling back to the baseline when the field is not overridden.
func (o Override) EffectiveStart(base Feature) string {
	if o.Start != nil {
		return *o.Start
	}
	return base.Start
}

func (o Override) EffectiveEnd(base Feature) string {
	if o.End != nil {
		return *o.End
	}
	return base.End
}

// EffectiveFeature is the value-level merge of a baseline Feature and its
// (possibly absent) override. Callers must treat it as a snapshot: no
// aliasing back into the baseline store or a scenario's overrides map.
type EffectiveFeature struct {
	Feature
	ScenarioOverride bool     `json:"scenarioOverride"`
	ChangedFields    []string `json:"changedFields"`
	Dirty            bool     `json:"dirty"`
}
