package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"tvscribe/internal/config"
	"tvscribe/internal/logging"
)

const admissionRetryInterval = time.Second

// Admission delays task dispatch while the accelerator is short on
// memory. The gate only applies to non-cpu devices with a configured
// floor; when the device cannot be queried at all the gate opens, so a
// missing nvidia-smi never wedges the pipeline.
type Admission struct {
	device    string
	minFreeMB int
	retry     time.Duration
	logger    *slog.Logger

	// probe returns free accelerator memory in MiB. Overridable in tests.
	probe func(ctx context.Context) (int, error)
}

// NewAdmission builds the gate from pipeline settings.
func NewAdmission(cfg config.Pipeline, logger *slog.Logger) *Admission {
	a := &Admission{
		device:    cfg.Device,
		minFreeMB: cfg.MinFreeMemoryMB,
		retry:     admissionRetryInterval,
		logger:    logging.NewComponentLogger(logger, "admission"),
	}
	a.probe = probeFreeMemory
	return a
}

func (a *Admission) enabled() bool {
	return a.device != "cpu" && a.minFreeMB > 0
}

// Wait blocks until the device has at least the configured headroom or
// the context is cancelled.
func (a *Admission) Wait(ctx context.Context) error {
	if !a.enabled() {
		return nil
	}

	for {
		free, err := a.probe(ctx)
		if err != nil {
			a.logger.Warn("device memory unqueryable, admitting task", logging.Error(err))
			return nil
		}
		if free >= a.minFreeMB {
			return nil
		}

		a.logger.Info("device memory low, holding dispatch",
			logging.Int("free_mb", free),
			logging.Int("required_mb", a.minFreeMB),
		)
		timer := time.NewTimer(a.retry)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// probeFreeMemory asks nvidia-smi for the free memory of the first GPU.
func probeFreeMemory(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.free", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi: %w", err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	free, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("parse nvidia-smi output %q: %w", line, err)
	}
	return free, nil
}
