package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the server is ready",
	Long: `Probe the running server's /readyz endpoint.

Meant for Docker HEALTHCHECK and similar supervisors: the command is
silent on success and the exit code carries the verdict.

Exit codes:
  0 - server is ready
  1 - server is unhealthy or unreachable
  2 - response could not be parsed`,
	RunE: runHealthcheck,
}

var (
	healthcheckTimeout int
	healthcheckURL     string
)

// errInvalidResponse marks a response body that could not be decoded.
var errInvalidResponse = errors.New("invalid readiness response")

func init() {
	flags := healthcheckCmd.Flags()
	flags.IntVar(&healthcheckTimeout, "timeout", 5, "probe timeout in seconds")
	flags.StringVar(&healthcheckURL, "url", "", "readiness URL (default http://localhost:$SERVER_PORT/readyz)")
}

// readyzPayload is the subset of the readiness body the probe needs.
type readyzPayload struct {
	Status string `json:"status"`
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	if err := checkReadiness(probeURL()); err != nil {
		fmt.Fprintf(os.Stderr, "Readiness check failed: %v\n", err)
		if errors.Is(err, errInvalidResponse) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	return nil
}

func probeURL() string {
	if healthcheckURL != "" {
		return healthcheckURL
	}
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port + "/readyz"
}

// checkReadiness calls the readiness endpoint and reports whether the
// server considers itself ready to serve traffic.
func checkReadiness(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(healthcheckTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var ready readyzPayload
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		return fmt.Errorf("%w: %v", errInvalidResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("not ready: status %d (%s)", resp.StatusCode, ready.Status)
	}
	if ready.Status != "healthy" {
		return fmt.Errorf("not ready: status=%s", ready.Status)
	}

	return nil
}
