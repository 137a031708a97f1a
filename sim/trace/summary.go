package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps          int
	AcceptedCount       int
	RejectedCount       int
	ReasonDistribution  map[string]int // outcome reason → count
	AcceptedBySpin      map[int]int    // spin layer → accepted moves
	MeanAcceptedDeltaE  float64
	BiasedAcceptedCount int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ReasonDistribution: make(map[string]int),
		AcceptedBySpin:     make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalSteps = len(st.Steps)
	totalDeltaE := 0.0
	for _, s := range st.Steps {
		summary.ReasonDistribution[s.Reason]++
		if !s.Accepted {
			summary.RejectedCount++
			continue
		}
		summary.AcceptedCount++
		summary.AcceptedBySpin[s.Spin]++
		totalDeltaE += s.DeltaEnergy
		if s.Biased {
			summary.BiasedAcceptedCount++
		}
	}
	if summary.AcceptedCount > 0 {
		summary.MeanAcceptedDeltaE = totalDeltaE / float64(summary.AcceptedCount)
	}

	return summary
}
