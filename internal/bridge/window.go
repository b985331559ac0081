package bridge

import "sync"

// Window is the host window the window-* channels act on.
type Window interface {
	Minimize()
	// ToggleMaximize maximizes the window, or restores it when already maximized.
	ToggleMaximize()
	Close()
}

// HeadlessWindow tracks window state for front ends without a native window.
// Close runs the shutdown hook once.
type HeadlessWindow struct {
	mu        sync.Mutex
	minimized bool
	maximized bool
	closeOnce sync.Once
	onClose   func()
}

// NewHeadlessWindow returns a window whose Close calls onClose.
func NewHeadlessWindow(onClose func()) *HeadlessWindow {
	return &HeadlessWindow{onClose: onClose}
}

// Minimize marks the window minimized.
func (w *HeadlessWindow) Minimize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized = true
}

// ToggleMaximize flips the maximized flag and restores a minimized window.
func (w *HeadlessWindow) ToggleMaximize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maximized = !w.maximized
	w.minimized = false
}

// Close runs the close hook once.
func (w *HeadlessWindow) Close() {
	w.closeOnce.Do(func() {
		if w.onClose != nil {
			w.onClose()
		}
	})
}

// State reports the current minimized and maximized flags.
func (w *HeadlessWindow) State() (minimized, maximized bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized, w.maximized
}
