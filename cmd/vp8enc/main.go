// Package main provides the CLI entry point for vp8enc.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/vp8session/pkg/adapters/ivfsink"
	"github.com/user/vp8session/pkg/adapters/logger"
	"github.com/user/vp8session/pkg/adapters/mp4sink"
	"github.com/user/vp8session/pkg/adapters/stubengine"
	"github.com/user/vp8session/pkg/adapters/yuvreader"
	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/config"
	"github.com/user/vp8session/pkg/orchestrator"
	"github.com/user/vp8session/pkg/ports"
	"github.com/user/vp8session/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Encode  EncodeCmd  `cmd:"" help:"Encode raw I420 frames into an IVF or MP4 stream."`
	Stats   StatsCmd   `cmd:"" help:"Inspect and validate a first-pass statistics file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// EncodeCmd defines the encode subcommand.
type EncodeCmd struct {
	// Required arguments
	Input  string `arg:"" help:"Raw I420 input file path."`
	Output string `short:"o" required:"" help:"Output file path."`

	// Profile
	Config string `short:"c" help:"YAML encoding profile path."`

	// Picture geometry (override profile)
	Width       *int `short:"W" help:"Picture width (default: 320)."`
	Height      *int `short:"H" help:"Picture height (default: 240)."`
	TimebaseNum *int `help:"Time base numerator (default: 1)."`
	TimebaseDen *int `help:"Time base denominator (default: 30)."`

	// Rate control (override profile)
	Bitrate  *int    `short:"b" help:"Target bitrate in kbit/s (default: 256)."`
	EndUsage *string `enum:"vbr,cbr" help:"Rate control mode (vbr or cbr)."`
	MinQ     *int    `help:"Minimum quantizer (0-63)."`
	MaxQ     *int    `help:"Maximum quantizer (0-63)."`

	// Keyframes
	KFMaxDist *int `help:"Maximum keyframe interval in frames."`

	// Passes
	Pass      string `default:"one" enum:"one,first,last" help:"Encoding pass (one, first or last)."`
	StatsFile string `help:"Stats file: written on the first pass, read on the last."`

	// Output container
	Container *string `enum:"ivf,mp4" help:"Output container (ivf or mp4, default: ivf)."`

	// Tuning
	Lag        *int    `help:"Frames of look-ahead lag (0-25)."`
	CPUUsed    *int    `help:"Speed/quality trade-off (-16..16)."`
	AutoAltRef *bool   `help:"Enable automatic alternate reference frames."`
	DeadlineUs *uint64 `help:"Per-frame deadline in microseconds (0 = best quality)."`

	// Summary output
	Summary string `help:"Output encode summary to file (Markdown format)."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// StatsCmd defines the stats subcommand.
type StatsCmd struct {
	Input string `arg:"" help:"First-pass statistics file path."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("vp8enc"),
		kong.Description("Session-level VP8 encoding front end."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the encode command.
func (cmd *EncodeCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cmd.LogLevel))
	}

	global := cfg.ToGlobalConfig()
	extra := cfg.ToExtraConfig()

	// Two-pass plumbing
	var statsOut *os.File
	switch global.Pass {
	case codec.PassFirst:
		if cmd.StatsFile == "" {
			return fmt.Errorf("first pass requires --stats-file")
		}
		statsOut, err = os.Create(cmd.StatsFile)
		if err != nil {
			return fmt.Errorf("create stats file: %w", err)
		}
		defer statsOut.Close()
	case codec.PassLast:
		if cmd.StatsFile == "" {
			return fmt.Errorf("last pass requires --stats-file")
		}
		stats, err := os.ReadFile(cmd.StatsFile)
		if err != nil {
			return fmt.Errorf("read stats file: %w", err)
		}
		global.RCTwoPassStatsIn = stats
	}

	// Open input
	in, err := os.Open(cmd.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	source, err := yuvreader.New(in, global.Width, global.Height)
	if err != nil {
		return err
	}

	// Open output and pick the container
	out, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	var sink ports.PacketSink
	if cfg.Container == "mp4" {
		sink = mp4sink.New(out)
	} else {
		sink = ivfsink.New(out)
	}

	log.Info(l10n.F("Encoding %s (%s, %dx%d)...", cmd.Input, cfg.Container, global.Width, global.Height))
	log.Debug(l10n.F("Writing %s container", cfg.Container))

	runCfg := orchestrator.Config{
		Global:     global,
		Extra:      &extra,
		DeadlineUs: cfg.DeadlineUs,
	}
	if statsOut != nil {
		runCfg.StatsOut = statsOut
	}

	orch := orchestrator.New(stubengine.Factory, sink, log)
	result, err := orch.Run(source, runCfg)
	if err != nil {
		return err
	}

	log.Info(l10n.F("Output saved to %s", cmd.Output))

	if cmd.Summary != "" {
		if err := cmd.writeSummary(cfg, global, result); err != nil {
			log.Error(l10n.F("Failed to write summary: %s", err))
			return err
		}
		log.Info(l10n.F("Summary saved to %s", cmd.Summary))
	}

	return nil
}

// buildConfig loads the profile file and applies CLI overrides.
func (cmd *EncodeCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		var err error
		cfg, err = config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.InputPath = cmd.Input
	cfg.OutputPath = cmd.Output
	cfg.Pass = cmd.Pass
	cfg.StatsPath = cmd.StatsFile

	if cmd.Width != nil {
		cfg.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Height = *cmd.Height
	}
	if cmd.TimebaseNum != nil {
		cfg.TimebaseNum = *cmd.TimebaseNum
	}
	if cmd.TimebaseDen != nil {
		cfg.TimebaseDen = *cmd.TimebaseDen
	}
	if cmd.Bitrate != nil {
		cfg.Bitrate = *cmd.Bitrate
	}
	if cmd.EndUsage != nil {
		cfg.EndUsage = *cmd.EndUsage
	}
	if cmd.MinQ != nil {
		cfg.MinQuantizer = *cmd.MinQ
	}
	if cmd.MaxQ != nil {
		cfg.MaxQuantizer = *cmd.MaxQ
	}
	if cmd.KFMaxDist != nil {
		cfg.KFMaxDist = *cmd.KFMaxDist
	}
	if cmd.Container != nil {
		cfg.Container = *cmd.Container
	}
	if cmd.Lag != nil {
		cfg.LagInFrames = *cmd.Lag
	}
	if cmd.CPUUsed != nil {
		cfg.CPUUsed = *cmd.CPUUsed
	}
	if cmd.AutoAltRef != nil {
		cfg.EnableAutoAltRef = *cmd.AutoAltRef
	}
	if cmd.DeadlineUs != nil {
		cfg.DeadlineUs = *cmd.DeadlineUs
	}

	return cfg, nil
}

// writeSummary renders the run result as a Markdown report.
func (cmd *EncodeCmd) writeSummary(cfg config.Config, global codec.GlobalConfig, result orchestrator.RunResult) error {
	var fileSize int64
	if info, err := os.Stat(cmd.Output); err == nil {
		fileSize = info.Size()
	}

	summary := summarizer.NewBuilder().
		WithInput(summarizer.InputInfo{
			Path:        cmd.Input,
			Width:       global.Width,
			Height:      global.Height,
			TimebaseNum: global.Timebase.Num,
			TimebaseDen: global.Timebase.Den,
		}).
		WithSettings(summarizer.Settings{
			Pass:         cfg.Pass,
			EndUsage:     cfg.EndUsage,
			Bitrate:      global.RCTargetBitrate,
			MinQuantizer: global.RCMinQuantizer,
			MaxQuantizer: global.RCMaxQuantizer,
			KeyframeMode: cfg.KeyframeMode,
			KFMaxDist:    global.KFMaxDist,
			LagInFrames:  global.LagInFrames,
			DeadlineUs:   cfg.DeadlineUs,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:         cmd.Output,
			Container:    cfg.Container,
			FramesIn:     result.FramesIn,
			FramesOut:    result.FramesOut,
			Keyframes:    result.Keyframes,
			Invisible:    result.Invisible,
			Dropped:      result.Dropped,
			StatsRecords: result.StatsRecords,
			FileSize:     fileSize,
		}).
		Build()

	writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(summarizer.WithVersion(version)))
	return writer.Write(cmd.Summary, summary)
}

// Run executes the stats command.
func (cmd *StatsCmd) Run() error {
	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return fmt.Errorf("read stats file: %w", err)
	}

	if err := codec.ValidateStatsBuffer(data); err != nil {
		return fmt.Errorf("invalid stats file: %w", err)
	}

	n := len(data) / codec.StatsRecordSize
	fmt.Println(l10n.F("Stats file is valid: %d records", n))

	final := codec.DecodeStatsRecord(data[(n-1)*codec.StatsRecordSize:])
	fmt.Println(l10n.F("Frame records: %d", int(final.Count+0.5)))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("vp8enc (Go) version %s", version))
	return nil
}
