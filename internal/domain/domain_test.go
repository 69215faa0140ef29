package domain

import "testing"

func TestEqualCapacity(t *testing.T) {
	tests := []struct {
		name string
		a    []CapacityEntry
		b    []CapacityEntry
		want bool
	}{
		{"both nil", nil, nil, true},
		{"equal order", []CapacityEntry{{"t1", 10}, {"t2", 20}}, []CapacityEntry{{"t1", 10}, {"t2", 20}}, true},
		{"different order", []CapacityEntry{{"t1", 10}, {"t2", 20}}, []CapacityEntry{{"t2", 20}, {"t1", 10}}, false},
		{"different length", []CapacityEntry{{"t1", 10}}, []CapacityEntry{{"t1", 10}, {"t2", 20}}, false},
		{"different value", []CapacityEntry{{"t1", 10}}, []CapacityEntry{{"t1", 11}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualCapacity(tt.a, tt.b); got != tt.want {
				t.Errorf("EqualCapacity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCloneCapacity_NoAliasing(t *testing.T) {
	orig := []CapacityEntry{{"t1", 10}}
	clone := CloneCapacity(orig)
	clone[0].Capacity = 99

	if orig[0].Capacity != 10 {
		t.Fatal("mutating the clone mutated the original slice")
	}
}

func TestOverride_IsExplicit(t *testing.T) {
	base := Feature{Start: "2025-01-01", End: "2025-01-10", Capacity: []CapacityEntry{{"t1", 5}}}
	start := "2025-01-01"
	changedStart := "2025-01-02"

	tests := []struct {
		name string
		ov   Override
		want bool
	}{
		{"empty override", Override{}, false},
		{"start equals baseline", Override{Start: &start}, false},
		{"start differs", Override{Start: &changedStart}, true},
		{"capacity equals baseline", Override{HasCap: true, Capacity: []CapacityEntry{{"t1", 5}}}, false},
		{"capacity differs", Override{HasCap: true, Capacity: []CapacityEntry{{"t1", 6}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ov.IsExplicit(base); got != tt.want {
				t.Errorf("IsExplicit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverride_Clone_NoAliasing(t *testing.T) {
	start := "2025-01-01"
	ov := Override{Start: &start, HasCap: true, Capacity: []CapacityEntry{{"t1", 5}}}
	clone := ov.Clone()

	*clone.Start = "2025-02-02"
	clone.Capacity[0].Capacity = 50

	if *ov.Start != "2025-01-01" {
		t.Fatal("mutating clone.Start mutated the original pointer target")
	}
	if ov.Capacity[0].Capacity != 5 {
		t.Fatal("mutating clone.Capacity mutated the original slice")
	}
}
