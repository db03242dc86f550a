package observability

// EventEnvelope wraps a client telemetry event for publication.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// BuildHeaders assembles publish headers from the connection id and an
// optional trace id.
func BuildHeaders(connID, traceID string) map[string]string {
	headers := map[string]string{}
	if connID != "" {
		headers["conn_id"] = connID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
