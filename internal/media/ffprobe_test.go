package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFFProbeParsesDuration(t *testing.T) {
	var gotBinary string
	var gotArgs []string

	prober := NewFFProbe("ffprobe", time.Second)
	prober.Run = func(_ context.Context, binary string, args ...string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return []byte(`{"format":{"duration":"42.500000"}}`), nil
	}

	duration, err := prober.Probe(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if duration != 42.5 {
		t.Fatalf("expected duration 42.5, got %v", duration)
	}
	if gotBinary != "ffprobe" {
		t.Fatalf("expected ffprobe binary, got %q", gotBinary)
	}
	if gotArgs[len(gotArgs)-1] != "/tmp/clip.mp4" {
		t.Fatalf("expected file path as last argument, got %v", gotArgs)
	}
}

func TestFFProbeRejectsMalformedOutput(t *testing.T) {
	prober := NewFFProbe("", 0)
	prober.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"format":{}}`), nil
	}

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mp4"); err == nil {
		t.Fatal("expected missing duration to be an error")
	}
}

func TestFFProbeSurfacesRunErrors(t *testing.T) {
	wantErr := errors.New("exec failed")
	prober := NewFFProbe("ffprobe", time.Second)
	prober.Run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, wantErr
	}

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mp4"); !errors.Is(err, wantErr) {
		t.Fatalf("expected run error to surface, got %v", err)
	}
}
