package control

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/kgatracker/kgatracker/internal/config"
)

// ErrNotRunning is returned by Connect when no host instance is recorded.
var ErrNotRunning = errors.New("kgatracker is not running")

// Client calls the Control service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Dial connects to a host at addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Connect dials the running host recorded in the instance file.
func Connect() (*Client, error) {
	running, info, err := config.IsInstanceRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to load instance info: %w", err)
	}
	if !running {
		return nil, ErrNotRunning
	}
	return Dial(fmt.Sprintf("%s:%d", info.Host, info.Port))
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetState returns the host status.
func (c *Client) GetState(ctx context.Context) (Status, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod("GetState"), &emptypb.Empty{}, out); err != nil {
		return Status{}, err
	}
	return statusFromStruct(out)
}

// Restore leaves mini mode.
func (c *Client) Restore(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Restore"), &emptypb.Empty{}, new(emptypb.Empty))
}

// Quit asks the host to quit.
func (c *Client) Quit(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Quit"), &emptypb.Empty{}, new(emptypb.Empty))
}

// Show brings the host window forward.
func (c *Client) Show(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Show"), &emptypb.Empty{}, new(emptypb.Empty))
}

// SetUpdateURL replaces the host's update feed location.
func (c *Client) SetUpdateURL(ctx context.Context, location string) error {
	return c.conn.Invoke(ctx, fullMethod("SetUpdateURL"), wrapperspb.String(location), new(emptypb.Empty))
}

// CheckUpdateServer asks the host whether location (or its current feed
// when empty) is reachable.
func (c *Client) CheckUpdateServer(ctx context.Context, location string) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, fullMethod("CheckUpdateServer"), wrapperspb.String(location), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// CheckForUpdates starts an update check on the host.
func (c *Client) CheckForUpdates(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("CheckForUpdates"), &emptypb.Empty{}, new(emptypb.Empty))
}
