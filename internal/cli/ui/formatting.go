package ui

import (
	"fmt"
	"io"
)

// FormatState returns the icon, colour and label for an agent state.
func FormatState(state string) (icon, color, text string) {
	switch state {
	case "reject_clicked":
		return IconCheckmark, ColorGreen, "rejected"
	case "confirm_clicked":
		return IconCheckmark, ColorGreen, "confirmed after opt-out"
	case "no_action":
		return IconPause, ColorGray, "nothing to click"
	case "no_dialog":
		return IconPause, ColorGray, "no consent dialog"
	case "already_processed":
		return IconPause, ColorGray, "already handled this session"
	case "disabled":
		return IconCross, ColorYellow, "agent disabled"
	case "busy":
		return IconClock, ColorYellow, "another pass is running"
	default:
		return IconClock, ColorYellow, state
	}
}

// FormatEnabled renders the enable flag.
func FormatEnabled(enabled bool) string {
	if enabled {
		return ColorGreen + IconPlay + " enabled" + ColorReset
	}
	return ColorYellow + IconPause + " disabled" + ColorReset
}

func Fail(w io.Writer, msg string, err error) {
	if err != nil {
		fmt.Fprintf(w, ColorRed+IconCross+" %s:"+ColorReset+" %v\n", msg, err)
		return
	}
	fmt.Fprintln(w, ColorRed+IconCross+" "+msg+ColorReset)
}

func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}
