// Package pipeline describes the lead sales funnel: nine ordered stages,
// the task-type to stage table and the progress math shown on lead cards.
package pipeline

import "math"

// Stage is one of the nine ordered funnel states.
type Stage string

const (
	NewLead       Stage = "new_lead"
	FirstContact  Stage = "first_contact"
	Qualification Stage = "qualification"
	NeedsAnalysis Stage = "needs_analysis"
	Presentation  Stage = "presentation"
	Negotiation   Stage = "negotiation"
	DealClosing   Stage = "deal_closing"
	Won           Stage = "won"
	Lost          Stage = "lost"

	// Other groups tasks whose type is not in the task table.
	Other Stage = "other"
)

var stages = []Stage{
	NewLead,
	FirstContact,
	Qualification,
	NeedsAnalysis,
	Presentation,
	Negotiation,
	DealClosing,
	Won,
	Lost,
}

var taskTypeToStage = map[string]Stage{
	"contact": NewLead,

	"first_contact": FirstContact,

	"qualification":    Qualification,
	"collect_contacts": Qualification,

	"car_preferences": NeedsAnalysis,
	"budget":          NeedsAnalysis,
	"region":          NeedsAnalysis,
	"timeline":        NeedsAnalysis,
	"register_lead":   NeedsAnalysis,

	"send_offers":      Presentation,
	"send_calculation": Presentation,
	"send_photos":      Presentation,

	"follow_up":          Negotiation,
	"objection_handling": Negotiation,
	"additional_info":    Negotiation,

	"schedule_meeting": DealClosing,
	"send_contract":    DealClosing,
	"get_prepayment":   DealClosing,
	"confirm_deal":     DealClosing,
}

// Stages returns the funnel in order. The slice is a copy.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Valid reports whether s is one of the nine funnel stages.
func Valid(s Stage) bool {
	return Index(s) >= 0
}

// Index returns the position of s in the funnel, or -1.
func Index(s Stage) int {
	for i, st := range stages {
		if st == s {
			return i
		}
	}
	return -1
}

// StageForTaskType maps a task type to its stage. Unknown types are returned
// unchanged with ok=false.
func StageForTaskType(taskType string) (Stage, bool) {
	if st, ok := taskTypeToStage[taskType]; ok {
		return st, true
	}
	return Stage(taskType), false
}

// NextStage returns the stage after s. There is none for unknown stages,
// the last working stage and the two terminal ones.
func NextStage(s Stage) (Stage, bool) {
	idx := Index(s)
	if idx == -1 || idx >= len(stages)-3 {
		return "", false
	}
	return stages[idx+1], true
}

// Progress is the completion percentage of the funnel: index/(stages-2)*100,
// rounded. Won is always 100 and lost always 0.
func Progress(s Stage) int {
	switch s {
	case Won:
		return 100
	case Lost:
		return 0
	}
	idx := Index(s)
	if idx < 0 {
		return 0
	}
	working := float64(len(stages) - 2)
	return int(math.Round(float64(idx) / working * 100))
}
