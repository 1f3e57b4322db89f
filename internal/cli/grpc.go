package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kgatracker/kgatracker/internal/control"
)

const rpcTimeout = 5 * time.Second

// connectHost dials the running host, or explains that none is running.
var connectHost = func() (hostClient, error) {
	client, err := control.Connect()
	if errors.Is(err, control.ErrNotRunning) {
		return nil, fmt.Errorf("%w; start KGA Tracker first", err)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// hostClient is the control client surface the commands use.
type hostClient interface {
	GetState(ctx context.Context) (control.Status, error)
	Restore(ctx context.Context) error
	Quit(ctx context.Context) error
	Show(ctx context.Context) error
	SetUpdateURL(ctx context.Context, location string) error
	CheckUpdateServer(ctx context.Context, location string) (bool, error)
	CheckForUpdates(ctx context.Context) error
	Close() error
}

// withHost runs fn against the running host with a call timeout.
func withHost(fn func(ctx context.Context, c hostClient) error) error {
	c, err := connectHost()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	return fn(ctx, c)
}
