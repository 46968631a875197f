//go:build windows

package tui

// bestEffortResetTTY is a no-op; the Windows console restores its own mode.
func bestEffortResetTTY() {}
