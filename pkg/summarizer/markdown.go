package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	version string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithVersion includes the tool version in the report footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a Markdown formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Encode Summary\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05"))

	sb.WriteString("## Input\n\n")
	fmt.Fprintf(&sb, "- Path: %s\n", summary.Input.Path)
	fmt.Fprintf(&sb, "- Size: %dx%d\n", summary.Input.Width, summary.Input.Height)
	fmt.Fprintf(&sb, "- Time base: %d/%d\n\n", summary.Input.TimebaseNum, summary.Input.TimebaseDen)

	sb.WriteString("## Settings\n\n")
	fmt.Fprintf(&sb, "- Pass: %s\n", summary.Settings.Pass)
	fmt.Fprintf(&sb, "- Rate control: %s, %d kbit/s\n", summary.Settings.EndUsage, summary.Settings.Bitrate)
	fmt.Fprintf(&sb, "- Quantizer range: %d..%d\n", summary.Settings.MinQuantizer, summary.Settings.MaxQuantizer)
	fmt.Fprintf(&sb, "- Keyframes: %s, max interval %d\n", summary.Settings.KeyframeMode, summary.Settings.KFMaxDist)
	fmt.Fprintf(&sb, "- Lag in frames: %d\n", summary.Settings.LagInFrames)
	fmt.Fprintf(&sb, "- Deadline: %d us\n\n", summary.Settings.DeadlineUs)

	sb.WriteString("## Output\n\n")
	fmt.Fprintf(&sb, "- Path: %s (%s)\n", summary.Output.Path, summary.Output.Container)
	fmt.Fprintf(&sb, "- Frames: %d in, %d out\n", summary.Output.FramesIn, summary.Output.FramesOut)
	fmt.Fprintf(&sb, "- Keyframes: %d\n", summary.Output.Keyframes)
	if summary.Output.Invisible > 0 {
		fmt.Fprintf(&sb, "- Invisible frames: %d\n", summary.Output.Invisible)
	}
	if summary.Output.Dropped > 0 {
		fmt.Fprintf(&sb, "- Dropped frames: %d\n", summary.Output.Dropped)
	}
	if summary.Output.StatsRecords > 0 {
		fmt.Fprintf(&sb, "- Stats records: %d\n", summary.Output.StatsRecords)
	}
	fmt.Fprintf(&sb, "- File size: %s\n", formatBytes(summary.Output.FileSize))

	if f.version != "" {
		fmt.Fprintf(&sb, "\n---\nvp8enc %s\n", f.version)
	}

	return sb.String()
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
