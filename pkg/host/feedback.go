package host

import (
	"fmt"
	"sync"
)

// Style is the visual state of a feedback.
type Style struct {
	Active bool   `json:"active"`
	Text   string `json:"text"`
}

// FeedbackDef describes a feedback derived from one facet. With Match set
// the feedback is active while the facet equals Match; otherwise it is
// active whenever the facet has been reported.
type FeedbackDef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Field string `json:"field"`
	Match string `json:"match,omitempty"`
}

// ValueSource reads one facet of a display's snapshot.
type ValueSource interface {
	Value(facet string) (any, bool)
}

// Feedback is a FeedbackDef bound to one display. It implements
// notify.Watcher.
type Feedback struct {
	def      FeedbackDef
	source   ValueSource
	onChange func(id string, st Style)

	mu    sync.Mutex
	style Style
	evals int
}

// Bind attaches the definition to a source. onChange, when non-nil, is
// called after a re-evaluation that changed the style.
func (d FeedbackDef) Bind(source ValueSource, onChange func(id string, st Style)) *Feedback {
	return &Feedback{def: d, source: source, onChange: onChange}
}

func (f *Feedback) ID() string          { return f.def.ID }
func (f *Feedback) DependsOn() []string { return []string{f.def.Field} }

// Reevaluate recomputes the style from the current facet value.
func (f *Feedback) Reevaluate() {
	v, ok := f.source.Value(f.def.Field)

	var st Style
	if ok && v != nil {
		st.Text = fmt.Sprint(v)
		if f.def.Match != "" {
			st.Active = st.Text == f.def.Match
		} else {
			st.Active = true
		}
	}

	f.mu.Lock()
	f.evals++
	changed := st != f.style
	f.style = st
	f.mu.Unlock()

	if changed && f.onChange != nil {
		f.onChange(f.def.ID, st)
	}
}

// Style returns the last evaluated style.
func (f *Feedback) Style() Style {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.style
}

// Evaluations returns how many times the feedback was re-evaluated.
func (f *Feedback) Evaluations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evals
}
