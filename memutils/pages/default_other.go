//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package pages

import "golang.org/x/exp/slog"

// NewDefaultProvider returns the provider best suited to the current platform
func NewDefaultProvider(logger *slog.Logger) Provider {
	return NewHeapProvider(logger, 0)
}
