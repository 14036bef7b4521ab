package replay

import (
	"fmt"
	"strings"

	"github.com/reb0und/sringbuf/pkg/cli"
	"github.com/reb0und/sringbuf/pkg/ringbuf"
)

// Step records one executed operation and the buffer state after it.
type Step struct {
	Index int    `json:"index" yaml:"index" msgpack:"index"`
	Op    OpKind `json:"op" yaml:"op" msgpack:"op"`

	// Value is the written value.
	Value any `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`

	// Got is the value returned by a read; Empty is set when the read found
	// nothing.
	Got   any  `json:"got,omitempty" yaml:"got,omitempty" msgpack:"got,omitempty"`
	Empty bool `json:"empty,omitempty" yaml:"empty,omitempty" msgpack:"empty,omitempty"`

	// Evicted is set when a write replaced an unread value.
	Evicted      bool `json:"evicted,omitempty" yaml:"evicted,omitempty" msgpack:"evicted,omitempty"`
	EvictedValue any  `json:"evicted_value,omitempty" yaml:"evicted_value,omitempty" msgpack:"evicted_value,omitempty"`

	State ringbuf.State[any] `json:"state" yaml:"state" msgpack:"state"`
}

// Failure is an expectation that did not hold. Step is -1 for the final
// state check.
type Failure struct {
	Step    int    `json:"step" yaml:"step" msgpack:"step"`
	Message string `json:"message" yaml:"message" msgpack:"message"`
}

// String implements fmt.Stringer.
func (f Failure) String() string {
	if f.Step < 0 {
		return "final: " + f.Message
	}
	return fmt.Sprintf("op %d: %s", f.Step, f.Message)
}

// Report is the result of running a script. ID is a UUIDv7, so reports
// sort by the time they were run.
type Report struct {
	ID        string             `json:"id" yaml:"id" msgpack:"id"`
	Name      string             `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Capacity  int                `json:"capacity" yaml:"capacity" msgpack:"capacity"`
	Steps     []Step             `json:"steps" yaml:"steps" msgpack:"steps"`
	Final     ringbuf.State[any] `json:"final" yaml:"final" msgpack:"final"`
	Evictions int                `json:"evictions" yaml:"evictions" msgpack:"evictions"`
	Failures  []Failure          `json:"failures,omitempty" yaml:"failures,omitempty" msgpack:"failures,omitempty"`
}

// OK reports whether every expectation held.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

// RenderTable implements cli.TableRenderer.
func (r *Report) RenderTable(st cli.Styles) string {
	var lines []string

	title := r.Name
	if title == "" {
		title = "replay"
	}
	lines = append(lines, st.Title.Render(title)+st.Help.Render(fmt.Sprintf(" capacity=%d run=%s", r.Capacity, r.ID)))

	for _, s := range r.Steps {
		var detail string
		switch s.Op {
		case OpWrite:
			detail = fmt.Sprint(s.Value)
			if s.Evicted {
				detail += " " + st.Alert.Render(fmt.Sprintf("(evicted %v)", s.EvictedValue))
			}
		case OpRead:
			if s.Empty {
				detail = "-> empty"
			} else {
				detail = fmt.Sprintf("-> %v", s.Got)
			}
		}
		lines = append(lines, fmt.Sprintf("%4d  %-5s  %-24s  %s", s.Index, s.Op, detail, s.State))
	}

	lines = append(lines, "", st.Label.Render("final"), cli.RenderState(r.Final, st))

	if r.OK() {
		lines = append(lines, st.Label.Render("ok"))
	} else {
		for _, f := range r.Failures {
			lines = append(lines, st.Alert.Render("FAIL "+f.String()))
		}
	}
	return strings.Join(lines, "\n")
}
