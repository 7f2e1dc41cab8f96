package commands

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/health"
	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/internal/cli/timeutil"
	"github.com/marmos91/shapeview/pkg/apiclient"
)

var statusServer string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a running shapeview server.

This command checks the server's liveness and readiness endpoints and
displays status, uptime and dataset information.

Examples:
  # Check the server configured in the config file
  shapeview status

  # Check a remote server, output as JSON
  shapeview status --server http://viewer.internal:8080 --format json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusServer, "server", "", "Server URL (default: http://localhost:<server.port>)")
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server         string `json:"server" yaml:"server"`
	Status         string `json:"status" yaml:"status"`
	Healthy        bool   `json:"healthy" yaml:"healthy"`
	Ready          bool   `json:"ready" yaml:"ready"`
	Service        string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt      string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime         string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Datasets       int    `json:"datasets,omitempty" yaml:"datasets,omitempty"`
	Store          string `json:"store,omitempty" yaml:"store,omitempty"`
	ShapesPerChunk int    `json:"shapes_per_chunk,omitempty" yaml:"shapes_per_chunk,omitempty"`
	Latency        string `json:"latency,omitempty" yaml:"latency,omitempty"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	serverURL := statusServer
	if serverURL == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		serverURL = "http://localhost:" + strconv.Itoa(cfg.Server.Port)
	}

	client := apiclient.New(serverURL).WithHTTPClient(&http.Client{Timeout: 5 * time.Second})
	status := fetchStatus(cmd.Context(), client)

	if printer.Format() != output.FormatTable {
		return printer.Print(status)
	}
	printStatusTable(printer, status)
	return nil
}

// fetchStatus queries the liveness and readiness endpoints. Failures are
// reported in the returned status, never as an error.
func fetchStatus(ctx context.Context, client *apiclient.Client) ServerStatus {
	status := ServerStatus{Server: client.BaseURL(), Status: "unreachable"}

	start := time.Now()
	live, err := client.Health(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Latency = timeutil.FormatLatency(time.Since(start))
	status.Status = live.Status
	status.Healthy = health.Healthy(live.Status)
	status.Service = live.Data.Service
	status.StartedAt = live.Data.StartedAt
	status.Uptime = live.Data.Uptime

	ready, err := client.Ready(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Ready = health.Healthy(ready.Status)
	status.Datasets = ready.Data.Datasets
	status.Store = ready.Data.Store
	status.ShapesPerChunk = ready.Data.ShapesPerChunk
	if ready.Error != "" {
		status.Error = ready.Error
	}
	return status
}

func printStatusTable(p *output.Printer, status ServerStatus) {
	p.Println()
	p.Println("shapeview Server Status")
	p.Println("=======================")
	p.Println()
	p.Printf("  Server:     %s\n", status.Server)

	switch {
	case status.Healthy && status.Ready:
		p.Status("success", "  Status:     ● ready")
	case status.Healthy:
		p.Status("warning", "  Status:     ● live, not ready")
	default:
		p.Status("error", "  Status:     ○ "+status.Status)
	}

	if status.Service != "" {
		p.Printf("  Service:    %s\n", status.Service)
	}
	if status.StartedAt != "" {
		p.Printf("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		p.Printf("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime))
	}
	if status.Latency != "" {
		p.Printf("  Latency:    %s\n", status.Latency)
	}
	if status.Ready {
		p.Printf("  Datasets:   %d\n", status.Datasets)
		p.Printf("  Store:      %s\n", status.Store)
		p.Printf("  Chunk size: %d shapes\n", status.ShapesPerChunk)
	}
	if status.Error != "" {
		p.Printf("  Error:      %s\n", status.Error)
	}
	p.Println()
}
