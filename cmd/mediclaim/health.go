package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/mediclaim/internal/client"
)

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable",
		Long: `Health calls GET /health on the analysis service and prints its status.
It exits non-zero when the service cannot be reached or reports itself unhealthy.

Examples:
  mediclaim health
  mediclaim health --api-url http://claims.internal:8000 --json`,
		Args: cobra.NoArgs,
		RunE: runHealthCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the status as JSON")

	return cmd
}

// healthOutput is the JSON form printed by --json.
type healthOutput struct {
	APIURL    string `json:"api_url"`
	Status    string `json:"status"`
	Service   string `json:"service"`
	LatencyMS int64  `json:"latency_ms"`
	Healthy   bool   `json:"healthy"`
}

// runHealthCmd executes the health command.
func runHealthCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateEndpoint(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg)

	c, err := client.New(cfg, client.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	status, err := c.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", c.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(healthOutput{
			APIURL:    c.BaseURL(),
			Status:    status.Status,
			Service:   status.Service,
			LatencyMS: status.Latency.Milliseconds(),
			Healthy:   status.Healthy(),
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Service: %s\n", status.Service)
		fmt.Fprintf(out, "URL:     %s\n", c.BaseURL())
		fmt.Fprintf(out, "Status:  %s\n", status.Status)
		fmt.Fprintf(out, "Latency: %s\n", status.Latency.Round(time.Millisecond))
	}

	if !status.Healthy() {
		return fmt.Errorf("service reported status %q", status.Status)
	}
	return nil
}
