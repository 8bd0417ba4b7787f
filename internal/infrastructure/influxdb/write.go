package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/lookingglass/internal/lookingglass"
)

// MeasurementExecution is the measurement holding one point per execution.
const MeasurementExecution = "lookingglass_execution"

// outcomeSuccess is the outcome tag for executions that produced output.
const outcomeSuccess = "success"

// executionPoint converts an execution to a point. Empty tag values are
// omitted; failures before rendering have no driver.
func executionPoint(exec lookingglass.Execution) *write.Point {
	outcome := outcomeSuccess
	if !exec.Succeeded() {
		outcome = string(exec.Kind)
	}

	tags := map[string]string{
		"device":  exec.Device,
		"command": exec.CommandID,
		"outcome": outcome,
	}
	if exec.Driver != "" {
		tags["driver"] = exec.Driver
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}

	ts := exec.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return write.NewPoint(
		MeasurementExecution,
		tags,
		map[string]interface{}{
			"duration_ms":  exec.Duration.Milliseconds(),
			"output_bytes": int64(exec.OutputBytes),
			"success":      exec.Succeeded(),
		},
		ts,
	)
}

// WriteExecution queues one execution point. The write is non-blocking.
func (c *Client) WriteExecution(exec lookingglass.Execution) error {
	// Hold the read lock so Close cannot shut the write API mid-call.
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return ErrNotConnected
	}
	c.writeAPI.WritePoint(executionPoint(exec))
	return nil
}

// ObserveExecution implements lookingglass.Observer.
func (c *Client) ObserveExecution(_ context.Context, exec lookingglass.Execution) error {
	return c.WriteExecution(exec)
}
