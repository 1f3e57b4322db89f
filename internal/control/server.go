package control

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/kgatracker/kgatracker/internal/buildinfo"
	"github.com/kgatracker/kgatracker/internal/lifecycle"
	"github.com/kgatracker/kgatracker/internal/updater"
)

// Host is the window side of the control service.
type Host interface {
	State(ctx context.Context) (lifecycle.State, error)
	Command(name string, payload any)
	Send(ev lifecycle.Event)
}

// Updates is the update side of the control service.
type Updates interface {
	Status() updater.Status
	Reachable(ctx context.Context, location string) bool
	CheckAsync(ctx context.Context)
}

// Server is the host's gRPC control server.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	port       int
	logger     *slog.Logger
}

// New creates a server on the loopback interface. Pass port 0 for dynamic
// allocation.
func New(port int, host Host, updates Updates, logger *slog.Logger) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return NewWithListener(listener, host, updates, logger), nil
}

// NewWithListener creates a server on an existing listener.
func NewWithListener(listener net.Listener, host Host, updates Updates, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	port := 0
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	grpcServer := grpc.NewServer()
	RegisterControlServer(grpcServer, &controlService{host: host, updates: updates, logger: logger})

	return &Server{
		grpcServer: grpcServer,
		listener:   listener,
		port:       port,
		logger:     logger,
	}
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	s.logger.Info("control service listening", "addr", s.listener.Addr().String())
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}

type controlService struct {
	host    Host
	updates Updates
	logger  *slog.Logger
}

func (s *controlService) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.host.State(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "host state: %v", err)
	}

	out := Status{
		Version:      buildinfo.Version,
		PID:          os.Getpid(),
		Mode:         st.Mode.String(),
		ShuttingDown: st.ShuttingDown,
		Quitting:     st.Quitting,
		Minimizing:   st.Minimizing,
	}
	for _, p := range st.Pending {
		out.Pending = append(out.Pending, string(p.Transition))
	}
	if s.updates != nil {
		u := s.updates.Status()
		out.Update = UpdateStatus{
			State:       string(u.State),
			FeedURL:     u.FeedURL,
			Latest:      u.Latest,
			LastChecked: u.LastChecked,
			LastError:   u.LastError,
		}
	}
	return out.toStruct()
}

func (s *controlService) Restore(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.host.Command(lifecycle.CmdRestoreWindow, nil)
	return &emptypb.Empty{}, nil
}

func (s *controlService) Quit(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.logger.Info("quit requested over control service")
	s.host.Command(lifecycle.CmdQuitApp, nil)
	return &emptypb.Empty{}, nil
}

func (s *controlService) Show(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.host.Send(lifecycle.ShowRequested{})
	return &emptypb.Empty{}, nil
}

func (s *controlService) SetUpdateURL(_ context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "update url must not be empty")
	}
	s.host.Command(lifecycle.CmdSetUpdateURL, req.GetValue())
	return &emptypb.Empty{}, nil
}

func (s *controlService) CheckUpdateServer(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if s.updates == nil {
		return wrapperspb.Bool(false), nil
	}
	return wrapperspb.Bool(s.updates.Reachable(ctx, req.GetValue())), nil
}

func (s *controlService) CheckForUpdates(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if s.updates == nil {
		return nil, status.Error(codes.Unimplemented, "updates disabled")
	}
	// The check outlives the request.
	s.updates.CheckAsync(context.Background())
	return &emptypb.Empty{}, nil
}
