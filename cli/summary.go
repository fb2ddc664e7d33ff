package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/khaledhikmat/vs-bgremove/model"
)

func printSummary(w io.Writer, stats model.RunStats, err error) {
	label := color.New(color.FgCyan).SprintFunc()

	status := color.New(color.FgGreen, color.Bold).Sprint("done")
	switch {
	case err != nil:
		status = color.New(color.FgRed, color.Bold).Sprint("failed")
	case stats.Cancelled:
		status = color.New(color.FgYellow, color.Bold).Sprint("stopped")
	}

	fmt.Fprintf(w, "%s %s\n", label("run:"), status)
	if stats.RunID != "" {
		fmt.Fprintf(w, "%s %s\n", label("id:"), stats.RunID)
	}
	if stats.Source != "" {
		fmt.Fprintf(w, "%s %s\n", label("source:"), stats.Source)
	}
	if stats.Output != "" {
		fmt.Fprintf(w, "%s %s\n", label("output:"), stats.Output)
	}
	fmt.Fprintf(w, "%s %d (%d skipped, %d failed)\n", label("frames:"), stats.Frames, stats.SkippedFrames, stats.Errors)
	fmt.Fprintf(w, "%s %d fps, %.1f ms/frame over %ds\n", label("speed:"), stats.FPS, stats.AvgProcTime*1000, stats.Uptime)
	if err != nil {
		fmt.Fprintf(w, "%s %v\n", label("error:"), err)
	}
}
