package desktop

import (
	"context"
	"log/slog"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/kgatracker/kgatracker/internal/export"
)

const (
	exportFolderTitle = "Select Folder for Auto-Export"
	updateFolderTitle = "Select Update Folder"

	reachableTimeout = 15 * time.Second
)

// FeedChecker reports whether an update feed location answers.
type FeedChecker interface {
	Reachable(ctx context.Context, location string) bool
}

// Bridge holds the renderer's request methods. Every exported method is
// bound into the page; none of them returns an error across the boundary.
type Bridge struct {
	app    *App
	feeds  FeedChecker
	logger *slog.Logger

	openDirectory func(ctx context.Context, title string) (string, error)
}

// NewBridge creates the bound request handlers.
func NewBridge(app *App, feeds FeedChecker, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		app:    app,
		feeds:  feeds,
		logger: logger,
		openDirectory: func(ctx context.Context, title string) (string, error) {
			return runtime.OpenDirectoryDialog(ctx, runtime.OpenDialogOptions{Title: title})
		},
	}
}

// SelectFolder asks for the auto-export folder. Nil means canceled.
func (b *Bridge) SelectFolder() *string {
	return b.selectFolder(exportFolderTitle)
}

// SelectUpdateFolder asks for an update feed folder. Nil means canceled.
func (b *Bridge) SelectUpdateFolder() *string {
	return b.selectFolder(updateFolderTitle)
}

func (b *Bridge) selectFolder(title string) *string {
	ctx := b.app.context()
	if ctx == nil {
		return nil
	}
	dir, err := b.openDirectory(ctx, title)
	if err != nil {
		b.logger.Warn("folder dialog failed", "title", title, "error", err)
		return nil
	}
	if dir == "" {
		return nil
	}
	return &dir
}

// CheckUpdateServer reports whether folder, or the current feed when
// folder is empty, serves a release index.
func (b *Bridge) CheckUpdateServer(folder string) bool {
	if b.feeds == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), reachableTimeout)
	defer cancel()
	return b.feeds.Reachable(ctx, folder)
}

// SaveCSVAuto writes an auto-export file and reports success.
func (b *Bridge) SaveCSVAuto(req export.Request) bool {
	path, err := export.Save(req)
	if err != nil {
		b.logger.Warn("auto-export failed", "folder", req.FolderPath, "file", req.FileName, "error", err)
		return false
	}
	b.logger.Info("auto-exported csv", "path", path)
	return true
}
