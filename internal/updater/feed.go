package updater

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/kgatracker/kgatracker/internal/buildinfo"
)

// IndexFileName is the release index every feed location serves.
const IndexFileName = "RELEASES"

// FeedConfig is the current update feed location. Changes apply to the next
// check; a check already running keeps the location it started with.
type FeedConfig struct {
	mu  sync.RWMutex
	url string
}

// NewFeedConfig creates a feed config starting at location.
func NewFeedConfig(location string) *FeedConfig {
	return &FeedConfig{url: location}
}

// URL returns the current feed location.
func (f *FeedConfig) URL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.url
}

// Set replaces the feed location.
func (f *FeedConfig) Set(location string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = location
}

// Release is one full package listed in a feed's index.
type Release struct {
	Name    string
	Version *semver.Version
	File    string
	SHA1    string
	Size    int64
}

// packageName matches "<name>-<semver>-<full|delta>.<ext>".
var packageName = regexp.MustCompile(`^(.+?)-(\d+\.\d+\.\d+(?:-[0-9A-Za-z.]+)?)-(full|delta)(\..+)$`)

// ParseIndex parses a RELEASES index. Each non-empty line is
// "<sha1> <file> <size>". Delta packages are skipped.
func ParseIndex(r io.Reader) ([]Release, error) {
	var releases []Release
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", lineNo, len(fields))
		}
		sum, file, sizeStr := fields[0], fields[1], fields[2]

		if b, err := hex.DecodeString(sum); err != nil || len(b) != 20 {
			return nil, fmt.Errorf("line %d: invalid sha1 %q", lineNo, sum)
		}
		size, err := strconv.ParseInt(sizeStr, 10, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("line %d: invalid size %q", lineNo, sizeStr)
		}

		m := packageName.FindStringSubmatch(file)
		if m == nil {
			return nil, fmt.Errorf("line %d: unrecognized package name %q", lineNo, file)
		}
		if m[3] != "full" {
			continue
		}
		v, err := semver.NewVersion(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid version in %q: %w", lineNo, file, err)
		}

		releases = append(releases, Release{
			Name:    m[1],
			Version: v,
			File:    file,
			SHA1:    strings.ToLower(sum),
			Size:    size,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return releases, nil
}

// Feed is a location serving a release index and its packages.
type Feed interface {
	Location() string
	Releases(ctx context.Context) ([]Release, error)
	Open(ctx context.Context, file string) (io.ReadCloser, error)
}

// OpenFeed returns the feed for location: an http(s) URL, a file:// URL,
// or a folder path (local or UNC).
func OpenFeed(location string) (Feed, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("empty feed location")
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse feed url: %w", err)
		}
		return &httpFeed{base: u, client: &http.Client{Timeout: 2 * time.Minute}}, nil
	}

	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse feed url: %w", err)
		}
		location = filepath.FromSlash(u.Path)
	}
	return &folderFeed{dir: location}, nil
}

type folderFeed struct {
	dir string
}

func (f *folderFeed) Location() string { return f.dir }

func (f *folderFeed) Releases(ctx context.Context) ([]Release, error) {
	rc, err := f.Open(ctx, IndexFileName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseIndex(rc)
}

func (f *folderFeed) Open(_ context.Context, file string) (io.ReadCloser, error) {
	if file != filepath.Base(file) {
		return nil, fmt.Errorf("feed file %q must not contain a path", file)
	}
	rc, err := os.Open(filepath.Join(f.dir, file))
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	return rc, nil
}

type httpFeed struct {
	base   *url.URL
	client *http.Client
}

func (f *httpFeed) Location() string { return f.base.String() }

func (f *httpFeed) Releases(ctx context.Context) ([]Release, error) {
	rc, err := f.Open(ctx, IndexFileName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseIndex(rc)
}

func (f *httpFeed) Open(ctx context.Context, file string) (io.ReadCloser, error) {
	u := f.base.JoinPath(file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "kgatracker/"+buildinfo.Version)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", file, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: feed returned %d", file, resp.StatusCode)
	}
	return resp.Body, nil
}
