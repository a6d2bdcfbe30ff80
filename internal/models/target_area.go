package models

// TargetArea is the muscle-group tag used to bucket volume analytics.
type TargetArea string

const (
	UpperChest   TargetArea = "upper_chest"
	MiddleChest  TargetArea = "middle_chest"
	LowerChest   TargetArea = "lower_chest"
	FrontDeltoid TargetArea = "front_deltoid"
	SideDeltoid  TargetArea = "side_deltoid"
	RearDeltoid  TargetArea = "rear_deltoid"
	UpperBack    TargetArea = "upper_back"
	MidBack      TargetArea = "mid_back"
	LowerBack    TargetArea = "lower_back"
	Lats         TargetArea = "lats"
	Biceps       TargetArea = "biceps"
	Triceps      TargetArea = "triceps"
	Forearms     TargetArea = "forearms"
	Quadriceps   TargetArea = "quadriceps"
	Hamstrings   TargetArea = "hamstrings"
	Glutes       TargetArea = "glutes"
	Calves       TargetArea = "calves"
)

var targetAreas = map[TargetArea]bool{
	UpperChest: true, MiddleChest: true, LowerChest: true,
	FrontDeltoid: true, SideDeltoid: true, RearDeltoid: true,
	UpperBack: true, MidBack: true, LowerBack: true, Lats: true,
	Biceps: true, Triceps: true, Forearms: true,
	Quadriceps: true, Hamstrings: true, Glutes: true, Calves: true,
}

// Valid reports whether t is a known muscle-group tag. The empty tag is
// allowed: exercises created before tagging have no target area.
func (t TargetArea) Valid() bool {
	return t == "" || targetAreas[t]
}

func (t TargetArea) String() string { return string(t) }
