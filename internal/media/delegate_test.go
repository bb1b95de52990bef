package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type memStore struct {
	keys []string
}

func (s *memStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, name)
	return "https://cdn.example.com/" + name, nil
}

type fixedProber struct {
	duration float64
}

func (p fixedProber) Probe(context.Context, string) (float64, error) {
	return p.duration, nil
}

func stageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fixture-bytes"), 0o600); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return path
}

func TestDelegateUploadImage(t *testing.T) {
	store := &memStore{}
	delegate := NewDelegate(store, fixedProber{})

	url, err := delegate.UploadImage(context.Background(), stageFile(t, "avatar.PNG"))
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if len(store.keys) != 1 {
		t.Fatalf("expected one stored blob, got %d", len(store.keys))
	}
	if !strings.HasPrefix(store.keys[0], "images/") || !strings.HasSuffix(store.keys[0], ".png") {
		t.Fatalf("expected images/<uuid>.png key, got %q", store.keys[0])
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/images/") {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestDelegateUploadVideo(t *testing.T) {
	store := &memStore{}
	delegate := NewDelegate(store, fixedProber{duration: 12.25})

	asset, err := delegate.UploadVideo(context.Background(), stageFile(t, "clip.mp4"))
	if err != nil {
		t.Fatalf("upload video: %v", err)
	}
	if asset.Duration != 12.25 {
		t.Fatalf("expected probed duration 12.25, got %v", asset.Duration)
	}
	if !strings.HasPrefix(store.keys[0], "videos/") {
		t.Fatalf("expected videos/ key, got %q", store.keys[0])
	}
}

func TestDelegateUnconfigured(t *testing.T) {
	var delegate *Delegate
	if _, err := delegate.UploadImage(context.Background(), "x"); err == nil {
		t.Fatal("expected nil delegate to error")
	}
}
