// Package host implements the privileged side of the theme protocol:
// answering list, info and activation requests arriving on a wire.Channel.
package host

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/shade/internal/theme"
	"github.com/jmylchreest/shade/internal/wire"
)

// Service owns the installed theme set and the active theme selection. One
// service can be attached to any number of client channels.
type Service struct {
	logger    *slog.Logger
	themesDir string
	state     *StateFile
	journal   *Journal

	mu     sync.Mutex
	active string
}

// NewService creates a host service over themesDir. defaultTheme is the
// active selection before any activation has happened; empty means the
// built-in default. The state file records the active selection across
// restarts; pass an empty path to keep the selection in memory only.
func NewService(themesDir, statePath, defaultTheme string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultTheme == "" {
		defaultTheme = theme.DefaultName
	}
	s := &Service{
		logger:    logger,
		themesDir: themesDir,
		journal:   NewJournal(0),
		active:    defaultTheme,
	}
	if statePath != "" {
		s.state = NewStateFile(statePath)
		if st, err := s.state.Load(); err != nil {
			logger.Warn("failed to load host state", "error", err)
		} else if st.Active != "" {
			s.active = st.Active
		}
	}
	return s
}

// Attach binds the service's request handler to a client channel. Each
// channel gets its replies on the same channel the request arrived on.
func (s *Service) Attach(ch wire.Channel) {
	ch.Bind(func(msg wire.Message) { s.handle(ch, msg) })
}

// Journal returns the activation journal.
func (s *Service) Journal() *Journal {
	return s.journal
}

// Active returns the currently active theme name.
func (s *Service) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Service) handle(ch wire.Channel, msg wire.Message) {
	switch msg.Op {
	case wire.OpListThemes:
		id, ok := wire.Uint64(msg.Arg(0))
		if !ok {
			s.logger.Warn("request without id", "op", msg.Op)
			return
		}
		infos, err := theme.Scan(s.themesDir)
		if err != nil {
			s.replyError(ch, id, fmt.Sprintf("scan themes: %v", err))
			return
		}
		s.reply(ch, wire.EvThemesList, id, infos)

	case wire.OpActiveThemeInfo:
		id, ok := wire.Uint64(msg.Arg(0))
		if !ok {
			s.logger.Warn("request without id", "op", msg.Op)
			return
		}
		info, err := s.activeInfo()
		if err != nil {
			s.replyError(ch, id, err.Error())
			return
		}
		s.reply(ch, wire.EvActiveThemeInfo, id, info)

	case wire.OpActivateTheme:
		id, ok := wire.Uint64(msg.Arg(0))
		if !ok {
			s.logger.Warn("request without id", "op", msg.Op)
			return
		}
		name, ok := wire.String(msg.Arg(1))
		if !ok || name == "" {
			s.replyError(ch, id, "activate-theme: missing theme id")
			return
		}
		outcome, err := s.activate(name)
		if err != nil {
			s.replyError(ch, id, err.Error())
			return
		}
		s.reply(ch, wire.EvThemeActivated, id, outcome)

	case wire.OpReloadRequired:
		reason, _ := wire.String(msg.Arg(0))
		s.logger.Info("client requests application reload", "reason", reason)

	default:
		s.logger.Debug("unknown operation", "op", msg.Op)
	}
}

// activate marks name active and decides whether the client can swap styles
// in place or has to restart.
func (s *Service) activate(name string) (wire.Outcome, error) {
	infos, err := theme.Scan(s.themesDir)
	if err != nil {
		return wire.Outcome{}, fmt.Errorf("scan themes: %w", err)
	}

	var found *theme.Info
	for i := range infos {
		if infos[i].Name == name {
			found = &infos[i]
			break
		}
	}
	if found == nil {
		return wire.Outcome{}, fmt.Errorf("unknown theme %q", name)
	}

	s.mu.Lock()
	s.active = name
	s.mu.Unlock()

	if s.state != nil {
		if err := s.state.Save(State{Active: name}); err != nil {
			s.logger.Warn("failed to persist active theme", "error", err)
		}
	}

	entry := s.journal.Record(name, found.Restart)
	s.logger.Info("theme activated", "theme", name, "restart", found.Restart, "entry", entry.ID)

	outcome := wire.Outcome{Reload: found.Restart}
	if !found.Restart {
		outcome.ThemeFile = found.File()
	}
	return outcome, nil
}

// activeInfo resolves the active selection to its Info. A selection whose
// theme has been removed falls back to the default theme.
func (s *Service) activeInfo() (theme.Info, error) {
	infos, err := theme.Scan(s.themesDir)
	if err != nil {
		return theme.Info{}, fmt.Errorf("scan themes: %w", err)
	}

	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	var fallback theme.Info
	for _, info := range infos {
		if info.Name == active {
			return info, nil
		}
		if info.Default {
			fallback = info
		}
	}
	if fallback.Name != "" {
		s.logger.Warn("active theme missing, falling back to default", "active", active)
		return fallback, nil
	}
	return theme.Info{}, fmt.Errorf("no themes installed")
}

func (s *Service) reply(ch wire.Channel, event string, id uint64, payload any) {
	if err := ch.Send(event, id, payload); err != nil {
		s.logger.Warn("failed to send reply", "event", event, "id", id, "error", err)
	}
}

func (s *Service) replyError(ch wire.Channel, id uint64, cause string) {
	if err := ch.Send(wire.EvError, id, cause); err != nil {
		s.logger.Warn("failed to send error reply", "id", id, "error", err)
	}
}
