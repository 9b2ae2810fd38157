// Package control implements the out-of-band control surface: a
// registry of typed commands dispatched against a session outside the
// main encode path, plus the deprecated single-call compatibility
// adapter.
package control

import (
	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/ports"
)

// ID identifies a control command. Zero is reserved as the registry
// wildcard.
type ID int

// The stable control-command enumeration.
const (
	// IDSetReference overwrites a reference-frame slot.
	IDSetReference ID = iota + 1
	// IDCopyReference reads back a reference-frame slot.
	IDCopyReference
	// IDSetPostProc configures preview post-processing.
	IDSetPostProc
	// IDUpdateEntropy toggles entropy-context updates.
	IDUpdateEntropy
	// IDUpdateReference sets the reference-update mask.
	IDUpdateReference
	// IDUseReference sets the reference-usage mask.
	IDUseReference
	// IDSetROIMap installs a region-of-interest map.
	IDSetROIMap
	// IDSetActiveMap installs a static active-block map.
	IDSetActiveMap
	// IDSetScaleMode changes the spatial scaling mode.
	IDSetScaleMode
	// IDSetEncodingMode sets the deprecated quality-mode override.
	IDSetEncodingMode
	// IDSetCPUUsed sets the cpu-usage/speed dial.
	IDSetCPUUsed
	// IDSetNoiseSensitivity sets the denoiser sensitivity.
	IDSetNoiseSensitivity
	// IDSetEnableAutoAltRef toggles automatic alt-ref frames.
	IDSetEnableAutoAltRef
	// IDSetSharpness sets the loop-filter sharpness.
	IDSetSharpness
	// IDSetStaticThreshold sets the static-region breakout threshold.
	IDSetStaticThreshold
	// IDSetTokenPartitions sets the token partition count.
	IDSetTokenPartitions
	// IDGetLastQuantizer reads the last quantizer in native units.
	IDGetLastQuantizer
	// IDGetLastQuantizer64 reads the last quantizer on the legacy scale.
	IDGetLastQuantizer64
	// IDSetARNRMaxFrames sets the alt-ref noise reduction frame count.
	IDSetARNRMaxFrames
	// IDSetARNRStrength sets the alt-ref noise reduction strength.
	IDSetARNRStrength
	// IDSetARNRType sets the alt-ref noise reduction filter type.
	IDSetARNRType
)

// Command is one control request: an identifier plus its typed payload.
type Command interface {
	// ControlID returns the command's identifier.
	ControlID() ID
}

// SetReference carries a picture to install into a reference slot.
type SetReference struct {
	Slot  ports.RefMask
	Image *codec.Image
}

// ControlID implements Command.
func (SetReference) ControlID() ID { return IDSetReference }

// CopyReference carries a picture to copy a reference slot into.
type CopyReference struct {
	Slot  ports.RefMask
	Image *codec.Image
}

// ControlID implements Command.
func (CopyReference) ControlID() ID { return IDCopyReference }

// SetPostProc carries preview post-processing settings.
type SetPostProc struct {
	Config *ports.PostProcFlags
}

// ControlID implements Command.
func (SetPostProc) ControlID() ID { return IDSetPostProc }

// UpdateEntropy toggles entropy-context updates.
type UpdateEntropy struct {
	Update bool
}

// ControlID implements Command.
func (UpdateEntropy) ControlID() ID { return IDUpdateEntropy }

// UpdateReference carries a reference-update mask.
type UpdateReference struct {
	Mask ports.RefMask
}

// ControlID implements Command.
func (UpdateReference) ControlID() ID { return IDUpdateReference }

// UseReference carries a reference-usage mask.
type UseReference struct {
	Mask ports.RefMask
}

// ControlID implements Command.
func (UseReference) ControlID() ID { return IDUseReference }

// SetROIMap carries a region-of-interest map.
type SetROIMap struct {
	Map *ports.ROIMap
}

// ControlID implements Command.
func (SetROIMap) ControlID() ID { return IDSetROIMap }

// SetActiveMap carries a static active-block map.
type SetActiveMap struct {
	Map *ports.ActiveMap
}

// ControlID implements Command.
func (SetActiveMap) ControlID() ID { return IDSetActiveMap }

// SetScaleMode carries a spatial scaling-mode change.
type SetScaleMode struct {
	Horizontal ports.ScalingMode
	Vertical   ports.ScalingMode
}

// ControlID implements Command.
func (SetScaleMode) ControlID() ID { return IDSetScaleMode }

// SetEncodingMode carries the deprecated quality-mode override.
type SetEncodingMode struct {
	Mode codec.EncodingMode
}

// ControlID implements Command.
func (SetEncodingMode) ControlID() ID { return IDSetEncodingMode }

// SetIntParam carries one integer tuning knob; its identifier selects
// the extra-configuration field it updates.
type SetIntParam struct {
	ID    ID
	Value int
}

// ControlID implements Command.
func (c SetIntParam) ControlID() ID { return c.ID }

// GetQuantizer reads back the last quantizer used. Result must point at
// the caller's destination.
type GetQuantizer struct {
	Legacy bool
	Result *int
}

// ControlID implements Command.
func (c GetQuantizer) ControlID() ID {
	if c.Legacy {
		return IDGetLastQuantizer64
	}
	return IDGetLastQuantizer
}
