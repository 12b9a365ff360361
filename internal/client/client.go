// Package client implements the UI-side theme protocol: it issues requests
// to the privileged theme host over a wire.Channel, correlates the replies
// and reacts to activation outcomes.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/shade/internal/correlate"
	"github.com/jmylchreest/shade/internal/theme"
	"github.com/jmylchreest/shade/internal/wire"
)

// ErrClosed is the teardown reason used when the client is closed with
// requests still pending.
var ErrClosed = errors.New("client closed")

// HostError is a failure the host reported for a tracked request. It is
// distinguishable from the cancellation delivered on teardown.
type HostError struct {
	Cause string
}

func (e *HostError) Error() string {
	return "host error: " + e.Cause
}

// StyleLoader applies a stylesheet identified by a host-supplied theme file
// reference into the running UI, returning once application is complete.
type StyleLoader interface {
	Load(ctx context.Context, themeFile string) error
}

// Client talks to the theme host. All operations deliver failure through
// their return value after the exchange settles; none fail synchronously on
// transport problems.
type Client struct {
	ch     wire.Channel
	corr   *correlate.Correlator
	loader StyleLoader
	logger *slog.Logger

	closeOnce sync.Once
}

// New creates a client on ch and binds the inbound event handlers. The
// loader may be nil, in which case activation outcomes are not applied
// locally.
func New(ch wire.Channel, loader StyleLoader, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		ch:     ch,
		corr:   correlate.New(ch, logger),
		loader: loader,
		logger: logger,
	}
	ch.Bind(c.handle)
	return c
}

// handle routes inbound host events to the correlator.
func (c *Client) handle(msg wire.Message) {
	switch msg.Op {
	case wire.EvThemesList, wire.EvActiveThemeInfo, wire.EvThemeActivated:
		id, ok := wire.Uint64(msg.Arg(0))
		if !ok {
			c.logger.Warn("reply without request id", "op", msg.Op)
			return
		}
		c.corr.Resolve(id, msg.Arg(1))
	case wire.EvError:
		id, ok := wire.Uint64(msg.Arg(0))
		if !ok {
			c.logger.Warn("error event without request id")
			return
		}
		cause, _ := wire.String(msg.Arg(1))
		c.corr.Reject(id, &HostError{Cause: cause})
	default:
		c.logger.Debug("unhandled event", "op", msg.Op)
	}
}

// ListThemes asks the host for the installed themes.
func (c *Client) ListThemes(ctx context.Context) ([]theme.Info, error) {
	v, err := c.corr.Issue(wire.OpListThemes).Wait(ctx)
	if err != nil {
		return nil, err
	}
	var infos []theme.Info
	if err := wire.Remarshal(v, &infos); err != nil {
		return nil, fmt.Errorf("decode themes list: %w", err)
	}
	return infos, nil
}

// ActiveThemeInfo asks the host which theme is currently active.
func (c *Client) ActiveThemeInfo(ctx context.Context) (theme.Info, error) {
	v, err := c.corr.Issue(wire.OpActiveThemeInfo).Wait(ctx)
	if err != nil {
		return theme.Info{}, err
	}
	var info theme.Info
	if err := wire.Remarshal(v, &info); err != nil {
		return theme.Info{}, fmt.Errorf("decode theme info: %w", err)
	}
	return info, nil
}

// Activate asks the host to activate themeID and reacts to the outcome:
// either the host demands an application restart, in which case a
// reload-app-required signal is sent and no stylesheet is touched, or the
// host names a theme file, which is loaded through the StyleLoader with the
// reference exactly as supplied.
//
// A nil return means host-side activation succeeded. Local style
// application is best effort: loader failures are logged, never propagated.
// The exchange is correlated on the request id allocated by Issue; the
// caller-supplied theme id plays no part in correlation.
func (c *Client) Activate(ctx context.Context, themeID string) error {
	v, err := c.corr.Issue(wire.OpActivateTheme, themeID).Wait(ctx)
	if err != nil {
		return err
	}

	var out wire.Outcome
	if err := wire.Remarshal(v, &out); err != nil {
		return fmt.Errorf("decode activation outcome: %w", err)
	}

	if out.Reload {
		c.logger.Info("activation requires restart", "theme", themeID)
		if err := c.ch.Send(wire.OpReloadRequired, "theme switch requires restart: "+themeID); err != nil {
			c.logger.Warn("failed to send reload signal", "error", err)
		}
		return nil
	}

	if c.loader != nil {
		if err := c.loader.Load(ctx, out.ThemeFile); err != nil {
			c.logger.Warn("style load failed", "theme_file", out.ThemeFile, "error", err)
		}
	}
	return nil
}

// Pending returns the number of exchanges still awaiting a host reply.
func (c *Client) Pending() int {
	return c.corr.Pending()
}

// Close rejects every pending exchange with a cancellation error and closes
// the channel. Replies arriving after Close are treated as orphans.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.corr.CancelAll(ErrClosed)
		if err := c.ch.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	})
	return nil
}
