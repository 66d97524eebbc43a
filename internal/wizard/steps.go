// ABOUTME: Wizard steps and their display names
// ABOUTME: Steps are strictly ordered 1..4; only the first is open without a person

package wizard

import "fmt"

// Step is one stage of person creation.
type Step int

const (
	StepPersonal Step = iota + 1
	StepFiles
	StepRecords
	StepPersons
)

// Steps lists every step in display order.
var Steps = []Step{StepPersonal, StepFiles, StepRecords, StepPersons}

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "personal data"
	case StepFiles:
		return "files"
	case StepRecords:
		return "records"
	case StepPersons:
		return "linked persons"
	}
	return fmt.Sprintf("step %d", int(s))
}

// Valid reports whether s is one of Steps.
func (s Step) Valid() bool {
	return s >= StepPersonal && s <= StepPersons
}
