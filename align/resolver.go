package align

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Asset represents a locally cached decoded video file for a source
// reference
type Asset struct {
	SourceRef string
	LocalPath string
}

// Resolver locates the locally cached video asset for a source reference.
// Implementations must be deterministic for a given cache state and report
// false for valid but not yet cached references, retry and backoff are not
// this layer's responsibility.
type Resolver interface {
	Resolve(sourceRef string) (*Asset, bool)
}

// CacheDirResolver resolves YouTube style URLs against a directory of
// downloaded video files named by video ID
type CacheDirResolver struct {
	// Dir is the video cache directory
	Dir string
	// Exts are the file extensions probed for each video ID
	Exts []string
}

// NewCacheDirResolver returns a resolver probing the given cache directory
// with common video container extensions
func NewCacheDirResolver(dir string) *CacheDirResolver {
	return &CacheDirResolver{
		Dir:  dir,
		Exts: []string{".mp4", ".mkv", ".webm"},
	}
}

// Resolve maps the source reference to a cached video file
func (r *CacheDirResolver) Resolve(sourceRef string) (*Asset, bool) {

	id := VideoID(sourceRef)

	if id == "" {
		return nil, false
	}

	for _, ext := range r.Exts {

		path := filepath.Join(r.Dir, id+ext)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return &Asset{
				SourceRef: sourceRef,
				LocalPath: path,
			}, true
		}
	}

	return nil, false
}

// VideoID extracts the video identifier from a YouTube style URL.  The
// watch, youtu.be, shorts and embed URL forms are recognised, any other
// reference returns its last path element so file style references still
// resolve.
func VideoID(sourceRef string) string {

	if sourceRef == "" {
		return ""
	}

	u, err := url.Parse(sourceRef)

	if err != nil {
		return ""
	}

	if v := u.Query().Get("v"); v != "" {
		return v
	}

	path := strings.Trim(u.Path, "/")

	if path == "" {
		return ""
	}

	parts := strings.Split(path, "/")
	last := parts[len(parts)-1]

	// strip any container extension from file style references
	return strings.TrimSuffix(last, filepath.Ext(last))
}
