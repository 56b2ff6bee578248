// ABOUTME: Step and Pattern types for the drum sequencer
// ABOUTME: A pattern is one track's step sequence bound to a sample name
package music

// Step is one schedulable slot in a pattern.
type Step struct {
	Active   bool    `json:"active"`
	Velocity float32 `json:"velocity"`
}

// NewStep returns an inactive step at full velocity.
func NewStep() Step {
	return Step{Active: false, Velocity: 1.0}
}

// StepWithVelocity returns an active step, clamping velocity to [0, 1].
func StepWithVelocity(velocity float32) Step {
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 1 {
		velocity = 1
	}
	return Step{Active: true, Velocity: velocity}
}

// Pattern is a named step sequence that triggers a single sample.
type Pattern struct {
	Name       string `json:"name"`
	SampleName string `json:"sample_name"`
	Steps      []Step `json:"steps"`
}

// NewPattern creates a pattern of numSteps inactive steps.
func NewPattern(name, sampleName string, numSteps int) *Pattern {
	steps := make([]Step, numSteps)
	for i := range steps {
		steps[i] = NewStep()
	}
	return &Pattern{Name: name, SampleName: sampleName, Steps: steps}
}

// SetStep replaces the step at index. Out-of-range indices are ignored so
// stray UI input can never panic.
func (p *Pattern) SetStep(index int, step Step) {
	if index >= 0 && index < len(p.Steps) {
		p.Steps[index] = step
	}
}

// ToggleStep flips the active flag at index; out-of-range is a no-op.
func (p *Pattern) ToggleStep(index int) {
	if index >= 0 && index < len(p.Steps) {
		p.Steps[index].Active = !p.Steps[index].Active
	}
}

// Clear deactivates every step, keeping velocities.
func (p *Pattern) Clear() {
	for i := range p.Steps {
		p.Steps[i].Active = false
	}
}

// Len returns the pattern's loop length in steps.
func (p *Pattern) Len() int {
	return len(p.Steps)
}

// Resize grows the pattern with inactive steps or truncates it, preserving
// steps below the smaller length.
func (p *Pattern) Resize(newLength int) {
	if newLength < 0 {
		return
	}
	switch {
	case newLength > len(p.Steps):
		for len(p.Steps) < newLength {
			p.Steps = append(p.Steps, NewStep())
		}
	case newLength < len(p.Steps):
		p.Steps = p.Steps[:newLength]
	}
}

// Clone returns an independent copy of the pattern.
func (p *Pattern) Clone() *Pattern {
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	return &Pattern{Name: p.Name, SampleName: p.SampleName, Steps: steps}
}
