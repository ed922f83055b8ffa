package app

import (
	"errors"
	"fmt"

	"github.com/ayusman/airdraw/internal/engine"
	"github.com/ayusman/airdraw/internal/store"
)

// restore loads the persisted control state and mode. Missing settings keep
// the defaults.
func (a *App) restore() error {
	if a.config.Store == nil {
		return nil
	}
	settings := a.config.Store.Settings()

	state := a.engine.Panel().State()
	if err := settings.GetJSON(store.SettingControls, &state); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	mode := a.engine.Mode()
	var name string
	switch err := settings.GetJSON(store.SettingMode, &name); {
	case err == nil:
		parsed, perr := engine.ParseMode(name)
		if perr != nil {
			return fmt.Errorf("stored mode: %w", perr)
		}
		mode = parsed
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	a.engine.Restore(state, mode)
	a.logger.Debug("settings restored", "mode", mode.String(), "thickness", state.Thickness)
	return nil
}

// persist writes the control state and mode.
func (a *App) persist() error {
	if a.config.Store == nil {
		return nil
	}
	settings := a.config.Store.Settings()

	state := a.engine.Panel().State()
	if err := settings.SetJSON(store.SettingControls, state); err != nil {
		return err
	}
	return settings.SetJSON(store.SettingMode, a.engine.Mode().String())
}
