package domain

// Task is one node of a compiled graph: a single invocation of a task unit.
// The same unit may appear under several task names (for example in a watch
// reaction and in an entry point), so Name and Unit are kept apart.
type Task struct {
	Name         InternedString
	Unit         InternedString
	Dependencies []InternedString
}
