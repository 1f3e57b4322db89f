// Package updater checks a release feed for newer builds, stages them and
// replaces the running binary once the user agrees to restart.
package updater

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate/update"
	"github.com/klauspost/compress/gzip"
)

var (
	// ErrNoUpdate is returned when the feed has nothing newer than the running build.
	ErrNoUpdate = errors.New("no update available")
	// ErrChecksum is returned when a downloaded package does not match its index entry.
	ErrChecksum = errors.New("package checksum mismatch")
)

// Latest returns the newest release in feed that is newer than current.
// An unparseable current version (such as "dev") is treated as older than
// every release.
func Latest(ctx context.Context, feed Feed, current string) (Release, error) {
	releases, err := feed.Releases(ctx)
	if err != nil {
		return Release{}, err
	}

	cur, curErr := semver.NewVersion(strings.TrimPrefix(current, "v"))

	var best *Release
	for i := range releases {
		r := &releases[i]
		if curErr == nil && !r.Version.GreaterThan(cur) {
			continue
		}
		if best == nil || r.Version.GreaterThan(best.Version) {
			best = r
		}
	}
	if best == nil {
		return Release{}, ErrNoUpdate
	}
	return *best, nil
}

// Download copies the release package from feed into dir and verifies its
// size and SHA1. It returns the staged file path.
func Download(ctx context.Context, feed Feed, rel Release, dir string) (string, error) {
	rc, err := feed.Open(ctx, rel.File)
	if err != nil {
		return "", fmt.Errorf("download package: %w", err)
	}
	defer rc.Close()

	tmpFile, err := os.CreateTemp(dir, "kgatracker-update-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	h := sha1.New()
	n, err := io.Copy(tmpFile, io.TeeReader(rc, h))
	tmpFile.Close()
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if n != rel.Size {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: size %d, expected %d", ErrChecksum, n, rel.Size)
	}
	if sum := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(sum, rel.SHA1) {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: sha1 %s, expected %s", ErrChecksum, sum, rel.SHA1)
	}

	dest := filepath.Join(dir, rel.File)
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("stage package: %w", err)
	}
	return dest, nil
}

// BinaryInstaller replaces an executable with a staged package and can
// relaunch it.
type BinaryInstaller struct {
	// TargetPath is the executable to replace. Empty means the running binary.
	TargetPath string
	// Args are passed to the relaunched process.
	Args []string
}

func (b *BinaryInstaller) target() (string, error) {
	path := b.TargetPath
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("locate executable: %w", err)
		}
		path = exe
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolve symlink: %w", err)
	}
	return resolved, nil
}

// Install applies the package at path over the target binary. Packages
// ending in .gz are decompressed first.
func (b *BinaryInstaller) Install(_ context.Context, path string) error {
	target, err := b.target()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip package: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if err := update.Apply(r, update.Options{TargetPath: target}); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	return nil
}

// Relaunch starts a fresh copy of the target binary.
func (b *BinaryInstaller) Relaunch() error {
	target, err := b.target()
	if err != nil {
		return err
	}
	cmd := exec.Command(target, b.Args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("relaunch: %w", err)
	}
	return cmd.Process.Release()
}
