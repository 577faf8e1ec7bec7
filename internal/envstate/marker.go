package envstate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	markerPathRequiredMessageConstant   = "environment marker path must be provided"
	manifestPathRequiredMessageConstant = "dependency manifest path must be provided"
	markerDirectoryPermissionConstant   = 0o755
	markerFilePermissionConstant        = 0o644
)

var (
	// ErrMarkerPathRequired indicates the marker path option was empty.
	ErrMarkerPathRequired = errors.New(markerPathRequiredMessageConstant)
	// ErrManifestPathRequired indicates the manifest path option was empty.
	ErrManifestPathRequired = errors.New(manifestPathRequiredMessageConstant)
)

// Marker tracks whether the dependency environment has been materialized for
// the current state of the dependency manifest.
type Marker struct {
	markerPath   string
	manifestPath string
	clock        func() time.Time
}

// Options configure a Marker.
type Options struct {
	MarkerPath   string
	ManifestPath string
	Clock        func() time.Time
}

// NewMarker constructs a Marker for the provided sentinel and manifest paths.
func NewMarker(options Options) (*Marker, error) {
	markerPath := strings.TrimSpace(options.MarkerPath)
	if len(markerPath) == 0 {
		return nil, ErrMarkerPathRequired
	}
	manifestPath := strings.TrimSpace(options.ManifestPath)
	if len(manifestPath) == 0 {
		return nil, ErrManifestPathRequired
	}

	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Marker{markerPath: markerPath, manifestPath: manifestPath, clock: clock}, nil
}

// Satisfied reports whether the sentinel exists and is at least as recent as
// the dependency manifest. A missing manifest leaves an existing sentinel
// authoritative.
func (marker *Marker) Satisfied() bool {
	markerInfo, markerStatError := os.Stat(marker.markerPath)
	if markerStatError != nil {
		return false
	}

	manifestInfo, manifestStatError := os.Stat(marker.manifestPath)
	if manifestStatError != nil {
		return true
	}

	return !markerInfo.ModTime().Before(manifestInfo.ModTime())
}

// Record writes the sentinel, creating its directory when needed.
func (marker *Marker) Record() error {
	markerDirectory := filepath.Dir(marker.markerPath)
	if directoryError := os.MkdirAll(markerDirectory, markerDirectoryPermissionConstant); directoryError != nil {
		return directoryError
	}

	timestamp := marker.clock().UTC().Format(time.RFC3339)
	if writeError := os.WriteFile(marker.markerPath, []byte(timestamp+"\n"), markerFilePermissionConstant); writeError != nil {
		return writeError
	}

	now := marker.clock()
	return os.Chtimes(marker.markerPath, now, now)
}

// Invalidate removes the sentinel so the next task run re-materializes the
// environment.
func (marker *Marker) Invalidate() error {
	removeError := os.Remove(marker.markerPath)
	if removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return removeError
	}
	return nil
}
