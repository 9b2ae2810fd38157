// Package ports defines the interfaces between the session-control
// layer and its collaborators.
package ports

// EngineMode is the compression quality/speed mode the engine runs in.
// The session layer finalizes it per frame; see session.pickCompressMode.
type EngineMode int

const (
	// ModeRealTime trades quality for encode speed.
	ModeRealTime EngineMode = iota
	// ModeGoodQuality is the balanced one-pass mode.
	ModeGoodQuality
	// ModeBestQuality is the slowest one-pass mode.
	ModeBestQuality
	// ModeFirstPass gathers statistics without producing displayable output.
	ModeFirstPass
	// ModeSecondPass consumes first-pass statistics.
	ModeSecondPass
	// ModeSecondPassBest is the second pass at best-quality settings.
	ModeSecondPassBest
)

// EndUsage is the engine-internal rate-control target.
type EndUsage int

const (
	// UsageLocalFilePlayback maps from variable-bitrate configurations.
	UsageLocalFilePlayback EndUsage = iota
	// UsageStreamFromServer maps from constant-bitrate configurations.
	UsageStreamFromServer
)

// RefMask selects reference-frame slots. Bits combine.
type RefMask int

const (
	// RefLast is the last-frame reference slot.
	RefLast RefMask = 1 << iota
	// RefGolden is the golden-frame reference slot.
	RefGolden
	// RefAltRef is the alternate-reference slot.
	RefAltRef

	// RefAll selects all three slots.
	RefAll = RefLast | RefGolden | RefAltRef
)

// ScalingMode controls spatial downscaling applied by the engine in one
// dimension.
type ScalingMode int

const (
	// ScaleNormal encodes at full size.
	ScaleNormal ScalingMode = iota
	// ScaleFourFifths encodes at 4/5 size.
	ScaleFourFifths
	// ScaleThreeFifths encodes at 3/5 size.
	ScaleThreeFifths
	// ScaleOneHalf encodes at 1/2 size.
	ScaleOneHalf
)

// SubmitFlags are the engine-facing per-frame flags passed with a raw
// frame submission.
type SubmitFlags int

const (
	// SubmitKeyframe forces the submitted frame to be encoded as a keyframe.
	SubmitKeyframe SubmitFlags = 1 << iota
	// SubmitGoldenUpdate marks the frame as a golden-frame update.
	SubmitGoldenUpdate
	// SubmitAltRefUpdate marks the frame as an alt-ref update.
	SubmitAltRefUpdate
)

// EngineConfig is the engine's internal configuration representation,
// produced by codec.ApplyConfig. The engine treats it as a value; the
// session layer rebuilds and resends it on every accepted change.
type EngineConfig struct {
	Width  int
	Height int

	// FrameRate is derived from the session time base, with a fallback
	// applied for badly specified time bases.
	FrameRate float64

	Version        int // bitstream profile
	MultiThreaded  int
	ErrorResilient bool

	Mode EngineMode

	AllowLag    bool
	LagInFrames int

	AllowDropFrames     bool
	DropFramesWaterMark int

	AllowSpatialResampling bool
	ResampleUpWaterMark    int
	ResampleDownWaterMark  int

	EndUsage        EndUsage
	TargetBandwidth int // kilobits per second

	BestAllowedQ  int
	WorstAllowedQ int
	FixedQ        int // -1 means rate control picks the quantizer

	UnderShootPct int
	OverShootPct  int

	MaximumBufferSize   int
	StartingBufferLevel int
	OptimalBufferLevel  int

	TwoPassVBRBias       int
	TwoPassVBRMinSection int
	TwoPassVBRMaxSection int
	TwoPassStatsIn       []byte

	AutoKeyframe bool
	KeyFrequency int

	CPUUsed          int
	EncodeBreakout   int
	PlayAlternate    bool
	NoiseSensitivity int
	Sharpness        int
	TokenPartitions  int

	ARNRMaxFrames int
	ARNRStrength  int
	ARNRType      int
}

// FrameBuffer is the engine-facing view of one raw picture: planar
// 4:2:0 with explicit strides. The session layer maps caller images
// into this shape; see codec.ToFrameBuffer.
type FrameBuffer struct {
	Y []byte
	U []byte
	V []byte

	YWidth   int
	YHeight  int
	UVWidth  int
	UVHeight int

	YStride  int
	UVStride int

	// Border is the reconstruction border width in pixels, derived from
	// the luma stride.
	Border int

	// AlternateColorSpace is set for the VPX color-space image variants.
	AlternateColorSpace bool
}

// CompressedUnit describes one unit of compressed output pulled from
// the engine. Timestamps are in engine ticks (TicksPerSecond).
type CompressedUnit struct {
	// Size is the number of payload bytes written into the caller's
	// scratch slice. A zero-size unit carries no frame.
	Size int

	Keyframe bool

	// Shown reports whether the frame is displayable. Frames encoded
	// purely as future references are not shown.
	Shown bool

	Dropped bool

	// Stats marks a first-pass statistics unit rather than a frame.
	Stats bool

	Timestamp    int64
	EndTimestamp int64
}

// PostProcFlags configure preview-frame post-processing.
type PostProcFlags struct {
	Enabled         bool
	DeblockingLevel int
	NoiseLevel      int
}

// ROIMap assigns per-macroblock segment indexes with per-segment
// quantizer and loop-filter deltas.
type ROIMap struct {
	Map  []byte // one segment index per macroblock, row-major
	Rows int
	Cols int

	DeltaQ          [4]int
	DeltaLF         [4]int
	StaticThreshold [4]uint
}

// ActiveMap marks macroblocks as active (1) or static (0).
type ActiveMap struct {
	Map  []byte
	Rows int
	Cols int
}

// CompressorEngine is the external compression collaborator. It owns
// bitstream writing, motion search, transforms and rate control; the
// session layer owns configuration, per-frame mode choice and output
// packetization. Implementations are not required to be safe for
// concurrent use; the session serializes all calls.
type CompressorEngine interface {
	// ChangeConfig applies a new internal configuration. Called on
	// reconfiguration and whenever the per-frame mode changes.
	ChangeConfig(cfg EngineConfig) error

	// ReceiveRawFrame submits one raw picture for compression.
	// Timestamps are in engine ticks.
	ReceiveRawFrame(flags SubmitFlags, frame *FrameBuffer, timestamp, endTimestamp int64) error

	// CompressedData writes the next available unit of compressed
	// output into dst and describes it. It returns nil when no more
	// output is currently available. flush requests draining of lagged
	// frames without new input.
	CompressedData(dst []byte, flush bool) (*CompressedUnit, error)

	// LastTimestampSeen returns the engine-tick timestamp of the most
	// recently submitted shown frame. Used to place invisible frames
	// directly after the prior visible one.
	LastTimestampSeen() int64

	// UseAsReference restricts which reference slots the next frame may
	// predict from.
	UseAsReference(mask RefMask) error

	// UpdateReference restricts which reference slots the next frame's
	// reconstruction updates.
	UpdateReference(mask RefMask) error

	// UpdateEntropy toggles entropy-context updates.
	UpdateEntropy(update bool) error

	// SetReference overwrites the contents of one reference slot.
	SetReference(slot RefMask, frame *FrameBuffer) error

	// CopyReference copies the contents of one reference slot into frame.
	CopyReference(slot RefMask, frame *FrameBuffer) error

	// SetROIMap installs a region-of-interest map.
	SetROIMap(roi ROIMap) error

	// SetActiveMap installs a static active-block map.
	SetActiveMap(active ActiveMap) error

	// SetInternalSize changes the spatial scaling mode.
	SetInternalSize(horizontal, vertical ScalingMode) error

	// Quantizer returns the quantizer index used by the last encoded frame.
	Quantizer() int

	// PreviewFrame returns the reconstruction of the last encoded frame
	// with the given post-processing applied, or nil when none exists.
	PreviewFrame(flags PostProcFlags) (*FrameBuffer, error)

	// Close releases engine resources.
	Close() error
}

// EngineFactory constructs a CompressorEngine from an initial
// configuration. A nil engine with a nil error is treated as a
// construction failure by the session layer.
type EngineFactory func(cfg EngineConfig) (CompressorEngine, error)
