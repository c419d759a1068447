package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"tvscribe/internal/config"
)

// Utterance is one recognized span with offsets relative to the start of
// the audio excerpt, in seconds.
type Utterance struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Engine is the stable transcription contract workers call. Implementations
// return utterances in monotonically increasing start order.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) ([]Utterance, error)
}

// Service shells out to a whisper-style CLI that writes a JSON transcript
// next to the audio file. Capability differences between CLI generations
// are negotiated once by Probe, not per call.
type Service struct {
	cfg           config.Transcriber
	outputFlag    string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg config.Transcriber) *Service {
	return &Service{cfg: cfg, outputFlag: "--output_format"}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Probe verifies the engine binary is callable and settles the argument
// shape for the rest of the process lifetime. Older CLI builds spell the
// output format flag with a hyphen; pick whichever the binary advertises.
func (s *Service) Probe(ctx context.Context) error {
	if s.commandRunner != nil {
		return nil
	}
	if _, err := exec.LookPath(s.cfg.Binary); err != nil {
		return fmt.Errorf("transcriber binary %q: %w", s.cfg.Binary, err)
	}

	out, err := exec.CommandContext(ctx, s.cfg.Binary, "--help").CombinedOutput() //nolint:gosec
	if err != nil {
		return fmt.Errorf("probe %s --help: %w", s.cfg.Binary, err)
	}
	help := string(out)
	switch {
	case strings.Contains(help, "--output_format"):
		s.outputFlag = "--output_format"
	case strings.Contains(help, "--output-format"):
		s.outputFlag = "--output-format"
	default:
		return fmt.Errorf("transcriber %q does not advertise a JSON output flag", s.cfg.Binary)
	}
	return nil
}

// Transcribe runs the engine on an audio file and returns the ordered
// utterances. The JSON sidecar the engine writes is removed before
// returning.
func (s *Service) Transcribe(ctx context.Context, audioPath string) ([]Utterance, error) {
	if audioPath == "" {
		return nil, fmt.Errorf("transcribe: audio path required")
	}

	outputDir := filepath.Dir(audioPath)
	args := s.buildArgs(audioPath, outputDir)

	runCtx := ctx
	if s.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	if err := s.run(runCtx, s.cfg.Binary, args...); err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, stem+".json")
	defer os.Remove(jsonPath)

	return parseTranscript(jsonPath)
}

func (s *Service) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		s.outputFlag, "json",
		"--beam_size", "4",
		"--best_of", "4",
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type transcriptFile struct {
	Segments []Utterance `json:"segments"`
}

func parseTranscript(jsonPath string) ([]Utterance, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", filepath.Base(jsonPath), err)
	}

	var parsed transcriptFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", filepath.Base(jsonPath), err)
	}

	utterances := make([]Utterance, 0, len(parsed.Segments))
	for _, segment := range parsed.Segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		utterances = append(utterances, Utterance{Start: segment.Start, End: segment.End, Text: text})
	}
	return utterances, nil
}
