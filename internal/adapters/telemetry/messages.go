package telemetry

// MsgTaskLog carries a chunk of output for a specific span.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgInitTasks announces the planned tasks of a run.
type MsgInitTasks struct {
	Tasks        []string
	Dependencies map[string][]string
	Targets      []string
}
