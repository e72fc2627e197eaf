package ui

import (
	"fmt"
	"io"
)

func PrintWelcome(w io.Writer, version string) {
	fmt.Fprintln(w, ColorBold+IconCookie+" nocookies "+version+ColorReset)
	fmt.Fprintln(w, ColorGray+"Rejects non-essential cookies on every page it opens"+ColorReset)
	fmt.Fprintln(w)
	PrintHelp(w)
	fmt.Fprintln(w, ColorCyan+IconBulb+" Tip:"+ColorReset+" pages already handled this session are skipped; use "+ColorYellow+"clear-cache"+ColorReset+" to start over")
	fmt.Fprintln(w)
}

func PrintHelp(w io.Writer) {
	fmt.Fprintln(w, ColorYellow+IconList+" Commands:"+ColorReset)
	fmt.Fprintln(w, "  "+ColorGreen+"visit"+ColorReset+" <url>         - open a page and answer its cookie dialog")
	fmt.Fprintln(w, "  "+ColorGreen+"status"+ColorReset+"              - enable flag and processed sites")
	fmt.Fprintln(w, "  "+ColorGreen+"enable"+ColorReset+"              - turn the agent on")
	fmt.Fprintln(w, "  "+ColorGreen+"disable"+ColorReset+"             - turn the agent off")
	fmt.Fprintln(w, "  "+ColorGreen+"clear-cache"+ColorReset+"         - forget processed sites")
	fmt.Fprintln(w, "  "+ColorGreen+"runs"+ColorReset+" [n]            - recent consent runs")
	fmt.Fprintln(w, "  "+ColorGreen+"clear"+ColorReset+"               - clear the screen")
	fmt.Fprintln(w, "  "+ColorGreen+"exit"+ColorReset+"                - quit")
	fmt.Fprintln(w)
}
