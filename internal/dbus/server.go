package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// PopupHandler handles a Show request. A returned error is sent back to the
// caller.
type PopupHandler func(style string) error

// PopupServer exports org.devopts.Popup on the session bus.
type PopupServer struct {
	conn   *dbus.Conn
	logger *slog.Logger

	mu           sync.RWMutex
	showHandler  PopupHandler
	closeHandler func()
	state        string
	sessionID    string
	running      bool
}

// NewPopupServer creates a popup server.
func NewPopupServer(logger *slog.Logger) *PopupServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PopupServer{logger: logger, state: "idle"}
}

// SetShowHandler sets the handler for Show.
func (s *PopupServer) SetShowHandler(handler PopupHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHandler = handler
}

// SetCloseHandler sets the handler for Close.
func (s *PopupServer) SetCloseHandler(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeHandler = handler
}

// Start connects to the session bus and exports the popup service.
func (s *PopupServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, ServicePath, ServiceIface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: ServicePath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ServiceIface,
				Methods: popupMethods(),
				Signals: popupSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ServicePath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ServiceBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", ServiceBusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus popup server started", "interface", ServiceIface, "path", ServicePath)
	return nil
}

// Stop releases the bus name.
func (s *PopupServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(ServiceBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The connection is shared (SessionBus), so it stays open.
	}

	s.logger.Info("D-Bus popup server stopped")
	return nil
}

// Show opens the popup. style is "list", "confirm" or empty for the
// configured default.
// D-Bus method: Show(s) -> nothing
func (s *PopupServer) Show(style string) *dbus.Error {
	s.logger.Debug("Show called", "style", style)

	s.mu.RLock()
	handler := s.showHandler
	s.mu.RUnlock()

	if handler == nil {
		return dbus.MakeFailedError(fmt.Errorf("popup not available"))
	}
	if err := handler(style); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Close closes the popup if open.
// D-Bus method: Close() -> nothing
func (s *PopupServer) Close() *dbus.Error {
	s.logger.Debug("Close called")

	s.mu.RLock()
	handler := s.closeHandler
	s.mu.RUnlock()

	if handler != nil {
		handler()
	}
	return nil
}

// GetState returns the popup state and the open session id.
// D-Bus method: GetState() -> (ss)
func (s *PopupServer) GetState() (string, string, *dbus.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.sessionID, nil
}

// EmitOpened records the new session and emits the Opened signal.
func (s *PopupServer) EmitOpened(sessionID string) error {
	s.mu.Lock()
	s.state = "open"
	s.sessionID = sessionID
	s.mu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := s.conn.Emit(ServicePath, ServiceIface+".Opened", sessionID); err != nil {
		return fmt.Errorf("failed to emit Opened signal: %w", err)
	}
	s.logger.Debug("emitted Opened signal", "session", sessionID)
	return nil
}

// EmitClosed records the close and emits the Closed signal.
func (s *PopupServer) EmitClosed(sessionID, reason string) error {
	s.mu.Lock()
	s.state = "idle"
	s.sessionID = ""
	s.mu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := s.conn.Emit(ServicePath, ServiceIface+".Closed", sessionID, reason); err != nil {
		return fmt.Errorf("failed to emit Closed signal: %w", err)
	}
	s.logger.Debug("emitted Closed signal", "session", sessionID, "reason", reason)
	return nil
}

func popupMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Show",
			Args: []introspect.Arg{
				{Name: "style", Type: "s", Direction: "in"},
			},
		},
		{Name: "Close"},
		{
			Name: "GetState",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
				{Name: "session", Type: "s", Direction: "out"},
			},
		},
	}
}

func popupSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Opened",
			Args: []introspect.Arg{
				{Name: "session", Type: "s"},
			},
		},
		{
			Name: "Closed",
			Args: []introspect.Arg{
				{Name: "session", Type: "s"},
				{Name: "reason", Type: "s"},
			},
		},
	}
}

// PopupClient calls a running popup server.
type PopupClient struct {
	client *Client
}

// NewPopupClient creates a client for the popup service on client's bus.
func NewPopupClient(client *Client) *PopupClient {
	return &PopupClient{client: client}
}

func (p *PopupClient) object(ctx context.Context) (dbus.BusObject, error) {
	conn, err := p.client.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return conn.Object(ServiceBusName, ServicePath), nil
}

// Show asks the daemon to open the popup.
func (p *PopupClient) Show(ctx context.Context, style string) error {
	obj, err := p.object(ctx)
	if err != nil {
		return err
	}
	if err := obj.CallWithContext(ctx, ServiceIface+".Show", 0, style).Err; err != nil {
		return fmt.Errorf("failed to show popup: %w", err)
	}
	return nil
}

// Close asks the daemon to close the popup.
func (p *PopupClient) Close(ctx context.Context) error {
	obj, err := p.object(ctx)
	if err != nil {
		return err
	}
	if err := obj.CallWithContext(ctx, ServiceIface+".Close", 0).Err; err != nil {
		return fmt.Errorf("failed to close popup: %w", err)
	}
	return nil
}

// State returns the daemon's popup state and session id.
func (p *PopupClient) State(ctx context.Context) (string, string, error) {
	obj, err := p.object(ctx)
	if err != nil {
		return "", "", err
	}
	var state, session string
	if err := obj.CallWithContext(ctx, ServiceIface+".GetState", 0).Store(&state, &session); err != nil {
		return "", "", fmt.Errorf("failed to get popup state: %w", err)
	}
	return state, session, nil
}
