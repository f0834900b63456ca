// Package notifier provides desktop notifications for package results
package notifier

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/plugforge/plugforge/pkg/logger"
)

// PackageNotifier sends a desktop notification per packaged engine version
type PackageNotifier struct {
	enabled bool
	logger  logger.Logger
}

// New creates a new package notifier
func New(enabled bool, log logger.Logger) *PackageNotifier {
	return &PackageNotifier{enabled: enabled, logger: log}
}

// NotifyPackageSuccess notifies that packaging succeeded for a version
func (n *PackageNotifier) NotifyPackageSuccess(version string, duration time.Duration) {
	if !n.enabled {
		return
	}

	title := "✅ Package Succeeded"
	message := fmt.Sprintf("Engine %s packaged in %s", version, formatDuration(duration))
	n.send(title, message)
}

// NotifyPackageFailure notifies that packaging failed for a version
func (n *PackageNotifier) NotifyPackageFailure(version string, err error) {
	if !n.enabled {
		return
	}

	title := "❌ Package Failed"
	message := fmt.Sprintf("Engine %s: %v", version, err)
	n.send(title, message)
}

func (n *PackageNotifier) send(title, message string) {
	// beeep picks the native mechanism per platform (toast, notify-send,
	// notification center)
	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
