package browser

import (
	"errors"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// waitForLoadState is best effort: pages that never go network-idle
// (long polling, analytics beacons) are still scanned.
func waitForLoadState(page playwright.Page, state string, timeout time.Duration) error {
	var loadState *playwright.LoadState
	switch strings.ToLower(state) {
	case "load":
		loadState = playwright.LoadStateLoad
	case "domcontentloaded":
		loadState = playwright.LoadStateDomcontentloaded
	case "networkidle":
		loadState = playwright.LoadStateNetworkidle
	default:
		loadState = playwright.LoadStateLoad
	}

	opts := playwright.PageWaitForLoadStateOptions{
		State:   loadState,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}

	if err := page.WaitForLoadState(opts); err != nil && !errors.Is(err, playwright.ErrTimeout) {
		return err
	}
	return nil
}
