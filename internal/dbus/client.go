package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/devopts/internal/option"
)

// Client is a lazily connected bus client.
type Client struct {
	bus    Bus
	logger *slog.Logger

	mu         sync.Mutex
	conn       *dbus.Conn
	dial       func() (*dbus.Conn, error)
	retryMax   int
	retryDelay time.Duration
}

// NewClient creates a client for bus. No connection is made until first use.
func NewClient(bus Bus, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		bus:        bus,
		logger:     logger,
		retryMax:   RetryMax,
		retryDelay: 100 * time.Millisecond,
	}
	if bus == BusSession {
		c.dial = func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() }
	} else {
		c.dial = func() (*dbus.Conn, error) { return dbus.ConnectSystemBus() }
	}
	return c
}

// SetRetry changes how many times Conn retries and how long it waits between
// attempts.
func (c *Client) SetRetry(retries int, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if retries >= 0 {
		c.retryMax = retries
	}
	if delay > 0 {
		c.retryDelay = delay
	}
}

// Conn returns the connection, connecting with retries if needed.
func (c *Client) Conn(ctx context.Context) (*dbus.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.conn.Connected() {
		return c.conn, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		conn, err := c.dial()
		if err == nil {
			c.conn = conn
			if attempt > 0 {
				c.logger.Debug("connected to bus after retry", "bus", c.bus.String(), "attempts", attempt+1)
			}
			return conn, nil
		}
		lastErr = err
		if attempt == c.retryMax {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to %s bus after %d attempts: %w: %w",
		c.bus.String(), c.retryMax+1, option.ErrResourceExhausted, lastErr)
}

// CallSync implements Caller.
func (c *Client) CallSync(ctx context.Context, dest, path, iface, method string, params ...string) (int32, error) {
	conn, err := c.Conn(ctx)
	if err != nil {
		return 0, err
	}

	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}

	call := conn.Object(dest, dbus.ObjectPath(path)).CallWithContext(ctx, iface+"."+method, 0, args...)
	return checkResult(dest, method, call)
}

// checkResult extracts the integer result of a call.
func checkResult(dest, method string, call *dbus.Call) (int32, error) {
	if call.Err != nil {
		return 0, fmt.Errorf("failed to call %s.%s: %w: %w", dest, method, option.ErrCommunicationFailure, call.Err)
	}

	var ret int32
	if err := call.Store(&ret); err != nil {
		return 0, fmt.Errorf("invalid reply from %s.%s: %w: %w", dest, method, option.ErrCommunicationFailure, err)
	}
	return ret, resultError(dest, method, ret)
}

func resultError(dest, method string, ret int32) error {
	if ret < 0 {
		return fmt.Errorf("%s.%s returned %d: %w", dest, method, ret, option.ErrCommunicationFailure)
	}
	return nil
}

// ActivateApp implements Caller using org.freedesktop.Application.Activate.
// params are passed as platform data.
func (c *Client) ActivateApp(ctx context.Context, appID string, params map[string]string) error {
	conn, err := c.Conn(ctx)
	if err != nil {
		return err
	}

	platformData := make(map[string]dbus.Variant, len(params))
	for k, v := range params {
		platformData[k] = dbus.MakeVariant(v)
	}

	call := conn.Object(appID, dbus.ObjectPath(AppObjectPath(appID))).
		CallWithContext(ctx, ApplicationIface+".Activate", 0, platformData)
	if call.Err != nil {
		return fmt.Errorf("failed to activate %s: %w: %w", appID, option.ErrCommunicationFailure, call.Err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
