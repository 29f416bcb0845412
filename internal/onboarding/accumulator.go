// Package onboarding accumulates the five wizard-step answers a new
// user gives before account creation. The snapshot is written once,
// under the user document, at registration time and never mutated
// afterwards.
package onboarding

import (
	"encoding/json"
	"errors"
	"sync"
)

// Steps is the fixed slot set of the wizard.
var Steps = []string{"step1", "step2", "step3", "step4", "step5"}

var ErrUnknownStep = errors.New("unknown onboarding step")

// Snapshot is the five-slot result of a wizard run. Unset slots are
// null; partial onboarding is a valid, representable state.
type Snapshot struct {
	Step1 json.RawMessage `json:"step1"`
	Step2 json.RawMessage `json:"step2"`
	Step3 json.RawMessage `json:"step3"`
	Step4 json.RawMessage `json:"step4"`
	Step5 json.RawMessage `json:"step5"`
}

// Accumulator collects wizard answers. Values are opaque: the
// accumulator neither validates nor interprets slot contents. It is
// an explicitly constructed, explicitly passed object - created when
// the wizard starts, consumed at Finalize, discarded by the caller.
type Accumulator struct {
	mu    sync.Mutex
	slots map[string]json.RawMessage
}

func NewAccumulator() *Accumulator {
	return &Accumulator{slots: make(map[string]json.RawMessage, len(Steps))}
}

// Set replaces a single slot. Setting a slot twice keeps the later
// value only.
func (a *Accumulator) Set(step string, value json.RawMessage) error {
	if !validStep(step) {
		return ErrUnknownStep
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[step] = value
	return nil
}

// Finalize returns the full five-slot snapshot for the one-time user
// write. It does not clear the accumulator, and unset slots come back
// null rather than raising an error.
func (a *Accumulator) Finalize() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Step1: a.slots["step1"],
		Step2: a.slots["step2"],
		Step3: a.slots["step3"],
		Step4: a.slots["step4"],
		Step5: a.slots["step5"],
	}
}

func validStep(step string) bool {
	for _, s := range Steps {
		if s == step {
			return true
		}
	}
	return false
}
