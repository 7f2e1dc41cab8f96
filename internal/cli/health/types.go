// Package health holds the shapes of the server's health responses as seen
// by CLI clients.
package health

// Response is the body of GET /health.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service   string `json:"service"`
		StartedAt string `json:"started_at"`
		Uptime    string `json:"uptime"`
		UptimeSec int64  `json:"uptime_sec"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// ReadyResponse is the body of GET /health/ready.
type ReadyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Datasets       int    `json:"datasets"`
		Store          string `json:"store"`
		ShapesPerChunk int    `json:"shapes_per_chunk"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Healthy reports whether a response status means healthy.
func Healthy(status string) bool {
	return status == "healthy"
}
