package vault

import (
	"context"
	"fmt"
)

// SetAdministrator transfers the administrator role in one step. The
// administrator can never move project funds directly.
func (s *Service) SetAdministrator(ctx context.Context, caller, addr string) (err error) {
	defer func() { s.metrics.Operation("set_administrator", err) }()

	release, err := s.enter()
	if err != nil {
		return err
	}
	defer release()

	g, err := s.gate(ctx)
	if err != nil {
		return err
	}
	if caller != g.Administrator {
		return ErrUnauthorized
	}
	if addr == "" {
		return fmt.Errorf("%w: administrator address is required", ErrInvalidConfig)
	}

	evt := s.newEvent(0, EventAdministratorChanged, caller, RoleAdministrator, 0, map[string]any{"new_administrator": addr})
	if err := s.globals.SetAdministrator(ctx, addr, evt); err != nil {
		return fmt.Errorf("setting administrator: %w", err)
	}

	s.logger.Info("administrator transferred", "from", caller, "to", addr)
	return nil
}

// SetReporter transfers the reporter role in one step.
func (s *Service) SetReporter(ctx context.Context, caller, addr string) (err error) {
	defer func() { s.metrics.Operation("set_reporter", err) }()

	release, err := s.enter()
	if err != nil {
		return err
	}
	defer release()

	g, err := s.gate(ctx)
	if err != nil {
		return err
	}
	if caller != g.Administrator {
		return ErrUnauthorized
	}
	if addr == "" {
		return fmt.Errorf("%w: reporter address is required", ErrInvalidConfig)
	}

	evt := s.newEvent(0, EventReporterChanged, caller, RoleAdministrator, 0, map[string]any{"new_reporter": addr})
	if err := s.globals.SetReporter(ctx, addr, evt); err != nil {
		return fmt.Errorf("setting reporter: %w", err)
	}

	s.logger.Info("reporter transferred", "to", addr)
	return nil
}

// PauseGlobal sets the kill-switch: every operation except the two global
// toggles is rejected until UnpauseGlobal.
func (s *Service) PauseGlobal(ctx context.Context, caller string) error {
	return s.setGlobalPause(ctx, caller, true)
}

// UnpauseGlobal lifts the kill-switch.
func (s *Service) UnpauseGlobal(ctx context.Context, caller string) error {
	return s.setGlobalPause(ctx, caller, false)
}

func (s *Service) setGlobalPause(ctx context.Context, caller string, paused bool) (err error) {
	op, kind := "unpause_global", EventGlobalUnpaused
	if paused {
		op, kind = "pause_global", EventGlobalPaused
	}
	defer func() { s.metrics.Operation(op, err) }()

	release, err := s.enter()
	if err != nil {
		return err
	}
	defer release()

	// The toggles are exempt from the pause gate by definition.
	g, err := s.globals.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading globals: %w", err)
	}
	if caller != g.Administrator {
		return ErrUnauthorized
	}

	evt := s.newEvent(0, kind, caller, RoleAdministrator, 0, nil)
	if err := s.globals.SetPaused(ctx, paused, evt); err != nil {
		return fmt.Errorf("toggling global pause: %w", err)
	}

	s.logger.Warn("global pause toggled", "paused", paused, "actor", caller)
	return nil
}
