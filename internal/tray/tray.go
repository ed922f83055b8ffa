// Package tray provides a system tray menu that drives the drawing host with
// queued commands.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/airdraw/internal/engine"
)

// Commander queues host commands for the frame loop.
type Commander interface {
	Submit(cmd engine.Command) error
}

// Tray represents the system tray application.
type Tray struct {
	commands Commander
	onQuit   func()
	onError  func(err error)
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a Tray that submits to commands, enabled by default.
func New(commands Commander) *Tray {
	return &Tray{
		commands: commands,
		enabled:  true,
	}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// OnError sets the callback for commands the queue rejected.
func (t *Tray) OnError(fn func(err error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onError = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("AirDraw")
	systray.SetTooltip("AirDraw gesture drawing")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem("● Enabled", "Pause or resume drawing")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem("Mode: Freehand", "Current drawing mode")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear canvas", "Erase the drawing")
	menuSave := systray.AddMenuItem("Save drawing", "Save the canvas to disk")
	menuGrid := systray.AddMenuItem("Toggle grid", "Show or hide the grid overlay")
	menuMenu := systray.AddMenuItem("Toggle controls", "Show or hide the on-screen controls")
	menuMode := systray.AddMenuItem("Next mode", "Cycle the drawing mode")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit AirDraw")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.submit(engine.Command{Kind: engine.CmdClear})
			case <-menuSave.ClickedCh:
				t.submit(engine.Command{Kind: engine.CmdSave})
			case <-menuGrid.ClickedCh:
				t.submit(engine.Command{Kind: engine.CmdToggleGrid})
			case <-menuMenu.ClickedCh:
				t.submit(engine.Command{Kind: engine.CmdToggleMenu})
			case <-menuMode.ClickedCh:
				t.submit(engine.Command{Kind: engine.CmdNextMode})
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state and submits it.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.updateToggleTitle()
	t.mu.Unlock()

	value := 0
	if enabled {
		value = 1
	}
	t.submit(engine.Command{Kind: engine.CmdSetEnabled, Value: value})
}

// updateToggleTitle must be called with t.mu held.
func (t *Tray) updateToggleTitle() {
	if t.menuToggle == nil {
		return
	}
	if t.enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Paused")
	}
}

func (t *Tray) submit(cmd engine.Command) {
	if t.commands == nil {
		return
	}
	if err := t.commands.Submit(cmd); err != nil {
		t.mu.RLock()
		callback := t.onError
		t.mu.RUnlock()
		if callback != nil {
			callback(fmt.Errorf("tray command %s: %w", cmd.Kind, err))
		}
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus mirrors the engine status into the menu.
func (t *Tray) SetStatus(s engine.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = s.Enabled
	t.updateToggleTitle()
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(StatusTitle(s))
	}
}

// StatusTitle renders the one-line status shown in the menu.
func StatusTitle(s engine.Status) string {
	grid := "off"
	if s.GridEnabled {
		grid = "on"
	}
	return fmt.Sprintf("Mode: %s · %s · %dpx · grid %s", s.Mode, s.Color, s.Thickness, grid)
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
