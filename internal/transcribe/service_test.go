package transcribe_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvscribe/internal/config"
	"tvscribe/internal/transcribe"
)

func testConfig() config.Transcriber {
	return config.Transcriber{
		Binary:         "whisper-ctranslate2",
		Model:          "small",
		Language:       "az",
		TimeoutSeconds: 30,
	}
}

func TestTranscribeParsesEngineOutput(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "itv_20260825T120000.wav")
	if err := os.WriteFile(audioPath, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	service := transcribe.NewService(testConfig())
	service.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "--model small") {
			t.Fatalf("model flag missing from args: %v", args)
		}
		payload := `{"segments":[
            {"start":0.0,"end":3.2,"text":" Axsam xeberleri. "},
            {"start":3.2,"end":6.8,"text":"Hava proqnozu."},
            {"start":6.8,"end":7.0,"text":"   "}
        ]}`
		return os.WriteFile(filepath.Join(dir, "itv_20260825T120000.json"), []byte(payload), 0o644)
	})

	utterances, err := service.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(utterances) != 2 {
		t.Fatalf("expected 2 utterances (blank dropped), got %d", len(utterances))
	}
	if utterances[0].Text != "Axsam xeberleri." {
		t.Fatalf("expected trimmed text, got %q", utterances[0].Text)
	}
	if utterances[1].Start != 3.2 || utterances[1].End != 6.8 {
		t.Fatalf("unexpected offsets: %+v", utterances[1])
	}

	if _, err := os.Stat(filepath.Join(dir, "itv_20260825T120000.json")); !os.IsNotExist(err) {
		t.Fatal("transcript sidecar should be removed after parsing")
	}
}

func TestTranscribePropagatesEngineFailure(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "itv_20260825T120000.wav")

	service := transcribe.NewService(testConfig())
	service.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		return os.ErrPermission
	})

	if _, err := service.Transcribe(context.Background(), audioPath); err == nil {
		t.Fatal("expected engine failure to propagate")
	}
}

func TestTranscribeRejectsMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "itv_20260825T120000.wav")

	service := transcribe.NewService(testConfig())
	service.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		return nil
	})

	if _, err := service.Transcribe(context.Background(), audioPath); err == nil {
		t.Fatal("expected error when engine writes no transcript")
	}
}
