// Package summarizer provides summary generation for encode runs.
package summarizer

import "time"

// Summary contains all data collected during one encode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input information
	Input InputInfo

	// Encoder settings
	Settings Settings

	// Output details
	Output OutputInfo
}

// InputInfo describes the raw input stream.
type InputInfo struct {
	Path   string
	Width  int
	Height int

	TimebaseNum int
	TimebaseDen int
}

// Settings contains the encoding configuration.
type Settings struct {
	Pass     string
	EndUsage string
	Bitrate  int // kilobits per second

	MinQuantizer int
	MaxQuantizer int

	KeyframeMode string
	KFMaxDist    int

	LagInFrames int
	DeadlineUs  uint64
}

// OutputInfo describes the produced stream.
type OutputInfo struct {
	Path      string
	Container string

	FramesIn     int
	FramesOut    int
	Keyframes    int
	Invisible    int
	Dropped      int
	StatsRecords int

	FileSize int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithSettings sets encoder settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
