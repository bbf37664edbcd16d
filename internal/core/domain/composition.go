package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// StepKind distinguishes the three composition primitives.
type StepKind int

const (
	// StepUnit is a single task unit invocation.
	StepUnit StepKind = iota
	// StepSeries runs its children strictly left to right.
	StepSeries
	// StepParallel runs its children without ordering between them.
	StepParallel
)

// Step is a node of a composition tree.
type Step struct {
	Kind     StepKind
	Unit     string
	Children []Step
}

// Unit returns a step invoking the named task unit.
func Unit(name string) Step {
	return Step{Kind: StepUnit, Unit: name}
}

// Series returns a step running steps in order. A failure stops the rest.
func Series(steps ...Step) Step {
	return Step{Kind: StepSeries, Children: steps}
}

// Parallel returns a step running steps concurrently.
func Parallel(steps ...Step) Step {
	return Step{Kind: StepParallel, Children: steps}
}

// Units returns the unit names referenced by the step in declaration order.
func (s Step) Units() []string {
	var out []string
	s.collect(&out)
	return out
}

func (s Step) collect(out *[]string) {
	if s.Kind == StepUnit {
		*out = append(*out, s.Unit)
		return
	}
	for _, c := range s.Children {
		c.collect(out)
	}
}

// Contains reports whether the step references the named unit anywhere.
func (s Step) Contains(unit string) bool {
	if s.Kind == StepUnit {
		return s.Unit == unit
	}
	for _, c := range s.Children {
		if c.Contains(unit) {
			return true
		}
	}
	return false
}

// String renders the step as "a > b > [c, d]".
func (s Step) String() string {
	switch s.Kind {
	case StepUnit:
		return s.Unit
	case StepSeries:
		parts := make([]string, len(s.Children))
		for i, c := range s.Children {
			parts[i] = c.String()
		}
		return strings.Join(parts, " > ")
	default:
		parts := make([]string, len(s.Children))
		for i, c := range s.Children {
			parts[i] = c.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
}

// Compile turns a composition into a validated dependency graph.
// Task names are "<prefix>:<unit>"; a unit used more than once gets a "#n" suffix.
func Compile(prefix string, s Step) (*Graph, error) {
	c := &compiler{
		prefix: prefix,
		graph:  NewGraph(),
		seen:   make(map[string]int),
	}
	if _, err := c.compile(s, nil); err != nil {
		return nil, err
	}
	if c.graph.TaskCount() == 0 {
		return nil, zerr.With(ErrEmptyComposition, "entry", prefix)
	}
	if err := c.graph.Validate(); err != nil {
		return nil, err
	}
	return c.graph, nil
}

type compiler struct {
	prefix string
	graph  *Graph
	seen   map[string]int
}

// compile adds s to the graph with every root depending on deps and returns
// the tails that a following step must wait for.
func (c *compiler) compile(s Step, deps []InternedString) ([]InternedString, error) {
	switch s.Kind {
	case StepUnit:
		name := c.taskName(s.Unit)
		task := &Task{
			Name:         name,
			Unit:         NewInternedString(s.Unit),
			Dependencies: deps,
		}
		if err := c.graph.AddTask(task); err != nil {
			return nil, err
		}
		return []InternedString{name}, nil

	case StepSeries:
		tails := deps
		for _, child := range s.Children {
			next, err := c.compile(child, tails)
			if err != nil {
				return nil, err
			}
			tails = next
		}
		return tails, nil

	default:
		if len(s.Children) == 0 {
			return deps, nil
		}
		var tails []InternedString
		for _, child := range s.Children {
			next, err := c.compile(child, deps)
			if err != nil {
				return nil, err
			}
			tails = append(tails, next...)
		}
		return tails, nil
	}
}

func (c *compiler) taskName(unit string) InternedString {
	c.seen[unit]++
	name := c.prefix + ":" + unit
	if n := c.seen[unit]; n > 1 {
		name += "#" + strconv.Itoa(n)
	}
	return NewInternedString(name)
}
