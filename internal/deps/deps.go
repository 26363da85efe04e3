package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/theyoprst/pip-accel/internal/config"
)

// Requirement defines an external dependency the harness relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig builds the requirement set for a configured harness run.
// The fakes3 server is optional: when absent the run proceeds without the
// cache-backend service and the workload skips that coverage.
func ForConfig(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "fakes3",
			Command:     cfg.FakeS3.Binary,
			Description: "ephemeral S3-compatible server backing the cache tests",
			Optional:    true,
		},
		{
			Name:        "pip",
			Command:     cfg.Prepare.PipBinary,
			Description: "package installer driven by the preparation steps",
		},
	}
	if len(cfg.Workload.Command) > 0 {
		requirements = append(requirements, Requirement{
			Name:        "workload",
			Command:     cfg.Workload.Command[0],
			Description: "default test workload command",
		})
	}
	return requirements
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
