package trace

// TraceLevel controls the verbosity of step tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures every step, accepted or not.
	TraceLevelSteps TraceLevel = "steps"
	// TraceLevelAccepted captures only steps that moved a particle.
	TraceLevelAccepted TraceLevel = "accepted"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelSteps:    true,
	TraceLevelAccepted: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects step records during a run.
type SimulationTrace struct {
	Config TraceConfig
	Steps  []StepRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Steps:  make([]StepRecord, 0),
	}
}

// Enabled reports whether any records will be kept.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level != TraceLevelNone && st.Config.Level != ""
}

// Record appends a step record if the trace level admits it.
func (st *SimulationTrace) Record(record StepRecord) {
	if !st.Enabled() {
		return
	}
	if st.Config.Level == TraceLevelAccepted && !record.Accepted {
		return
	}
	st.Steps = append(st.Steps, record)
}
