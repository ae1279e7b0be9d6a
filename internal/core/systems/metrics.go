package systems

import "time"

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64        `json:"execution_count"`
	TotalExecutionTime   time.Duration `json:"total_execution_time"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	MaxExecutionTime     time.Duration `json:"max_execution_time"`
	LastExecutionTime    time.Duration `json:"last_execution_time"`
	ErrorCount           uint64        `json:"error_count"`
	LastError            string        `json:"last_error,omitempty"`
}

func (m *Metrics) record(took time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.LastExecutionTime = took
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if m.ExecutionCount == 1 {
		m.AverageExecutionTime = took
	} else {
		// exponential moving average
		m.AverageExecutionTime = time.Duration(float64(m.AverageExecutionTime)*0.9 + float64(took)*0.1)
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err.Error()
	}
}

// ManagerMetrics aggregates a whole pipeline run.
type ManagerMetrics struct {
	Ticks           uint64        `json:"ticks"`
	LastTickTime    time.Duration `json:"last_tick_time"`
	AverageTickTime time.Duration `json:"average_tick_time"`
	MaxTickTime     time.Duration `json:"max_tick_time"`
	Systems         int           `json:"systems"`
	EnabledSystems  int           `json:"enabled_systems"`
}
