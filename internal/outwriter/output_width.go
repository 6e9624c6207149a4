package outwriter

import (
	"os"

	"github.com/huangsam/teamsmell/internal/contract"
	"golang.org/x/term"
)

// getMaxNameWidth returns how wide the metric name column of a batch table may
// be, based on the terminal width or the configured override.
func getMaxNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			termWidth = 80 // CI and pipes
		} else {
			termWidth = detected
		}
	}

	// Value column plus borders and padding
	available := termWidth - 30
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}
