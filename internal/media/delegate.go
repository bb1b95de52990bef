// Package media offloads binary assets to an external object store. Staged
// local files go in, durable public URLs come out; video files are
// additionally probed for their duration. Upload failures surface to the
// caller as-is: no retry, no local fallback.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
)

// ErrDelegateUnavailable indicates the media delegate was not configured.
var ErrDelegateUnavailable = errors.New("media delegate unavailable")

// Asset is the durable reference returned for an uploaded file.
type Asset struct {
	URL string
	// Duration is the media duration in seconds. Zero for images.
	Duration float64
}

// BlobStore persists a named blob and returns its durable public location.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// DurationProber reports the duration of a local media file in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Delegate uploads staged local files to the configured blob store.
type Delegate struct {
	store  BlobStore
	prober DurationProber
}

// NewDelegate constructs a Delegate over the provided store and prober.
func NewDelegate(store BlobStore, prober DurationProber) *Delegate {
	return &Delegate{store: store, prober: prober}
}

// UploadImage uploads a staged image file and returns its durable URL.
func (d *Delegate) UploadImage(ctx context.Context, localPath string) (string, error) {
	if d == nil || d.store == nil {
		return "", ErrDelegateUnavailable
	}
	return d.upload(ctx, localPath, "images")
}

// UploadVideo probes the staged video for its duration, uploads it, and
// returns the durable URL together with the duration.
func (d *Delegate) UploadVideo(ctx context.Context, localPath string) (Asset, error) {
	if d == nil || d.store == nil || d.prober == nil {
		return Asset{}, ErrDelegateUnavailable
	}

	probeCtx, span := logging.StartSpan(ctx, "media.probe")
	duration, err := d.prober.Probe(probeCtx, localPath)
	span.End()
	if err != nil {
		return Asset{}, fmt.Errorf("probe video duration: %w", err)
	}

	url, err := d.upload(ctx, localPath, "videos")
	if err != nil {
		return Asset{}, err
	}

	return Asset{URL: url, Duration: duration}, nil
}

func (d *Delegate) upload(ctx context.Context, localPath, prefix string) (string, error) {
	ctx, span := logging.StartSpan(ctx, "media.upload")
	defer span.End()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)

	url, err := d.store.Save(ctx, key, f)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return url, nil
}
