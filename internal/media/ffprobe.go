package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// FFProbe reports media durations by shelling out to the ffprobe CLI.
type FFProbe struct {
	Binary  string
	Run     CommandRunner
	Timeout time.Duration
}

// NewFFProbe constructs a DurationProber that shells out to ffprobe.
func NewFFProbe(binary string, timeout time.Duration) *FFProbe {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{
		Binary:  binary,
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

// Probe executes ffprobe for the provided file and parses the duration from
// its JSON output.
func (p *FFProbe) Probe(ctx context.Context, path string) (float64, error) {
	if p == nil {
		return 0, errors.New("ffprobe: prober not configured")
	}
	if p.Run == nil {
		p.Run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	out, err := p.Run(execCtx, p.Binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe run: %w", err)
	}

	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return 0, fmt.Errorf("parse ffprobe response: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(payload.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", payload.Format.Duration, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("ffprobe reported negative duration %f", duration)
	}

	return duration, nil
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}

var _ DurationProber = (*FFProbe)(nil)
