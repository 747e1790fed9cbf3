package theme

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	Success = color.New(color.FgGreen).SprintFunc()
	Fail    = color.New(color.FgRed).SprintFunc()
	Info    = color.New(color.FgCyan).SprintFunc()
	Warn    = color.New(color.FgYellow).SprintFunc()
	Handle  = color.New(color.FgMagenta, color.Bold).SprintFunc()
	Faint   = color.New(color.Faint).SprintFunc()
)

// Banner returns the tweepydon banner: a bird that learned to toot.
func Banner() string {
	art := "" +
		Info("    __      ") + Handle("TWEEPYDON") + "\n" +
		Info("  <(o )___  ") + Faint("tweepy calls, mastodon answers") + "\n" +
		Info("   ( ._> /  ") + "\n" +
		Info("    `---'   ") + Warn("~~~~~~~~~~~~~~~~~~~~~~~~~~~") + "\n"
	return art
}

// PrintBanner writes the banner to w.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, Banner())
}
