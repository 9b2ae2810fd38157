package control

import (
	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/session"
)

// Handler executes one control command against a session.
type Handler func(s *session.Session, cmd Command) error

type entry struct {
	id ID
	fn Handler
}

// Dispatcher maps command identifiers to handlers. Dispatch scans the
// table in order; an entry with identifier zero is a wildcard matching
// any command not listed before it.
type Dispatcher struct {
	table []entry
}

// NewDispatcher returns a dispatcher with the full standard control
// table installed.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{table: []entry{
		{IDSetReference, handleSetReference},
		{IDCopyReference, handleCopyReference},
		{IDSetPostProc, handleSetPostProc},
		{IDUpdateEntropy, handleUpdateEntropy},
		{IDUpdateReference, handleUpdateReference},
		{IDUseReference, handleUseReference},
		{IDSetROIMap, handleSetROIMap},
		{IDSetActiveMap, handleSetActiveMap},
		{IDSetScaleMode, handleSetScaleMode},
		{IDSetEncodingMode, handleSetEncodingMode},
		{IDSetCPUUsed, handleSetIntParam},
		{IDSetNoiseSensitivity, handleSetIntParam},
		{IDSetEnableAutoAltRef, handleSetIntParam},
		{IDSetSharpness, handleSetIntParam},
		{IDSetStaticThreshold, handleSetIntParam},
		{IDSetTokenPartitions, handleSetIntParam},
		{IDSetARNRMaxFrames, handleSetIntParam},
		{IDSetARNRStrength, handleSetIntParam},
		{IDSetARNRType, handleSetIntParam},
		{IDGetLastQuantizer, handleGetQuantizer},
		{IDGetLastQuantizer64, handleGetQuantizer},
	}}
}

// Register appends an entry to the table. An id of zero registers a
// wildcard handler.
func (d *Dispatcher) Register(id ID, fn Handler) {
	d.table = append(d.table, entry{id, fn})
}

// Dispatch routes cmd to the first matching table entry. Commands with
// no matching entry and no wildcard yield ErrUnsupportedControl.
func (d *Dispatcher) Dispatch(s *session.Session, cmd Command) error {
	id := cmd.ControlID()
	for _, e := range d.table {
		if e.id == 0 || e.id == id {
			return e.fn(s, cmd)
		}
	}
	return codec.ErrUnsupportedControl
}

func handleSetReference(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetReference)
	if !ok || c.Image == nil {
		return codec.ErrInvalidParam
	}
	return s.SetReferenceFrame(c.Slot, c.Image)
}

func handleCopyReference(s *session.Session, cmd Command) error {
	c, ok := cmd.(CopyReference)
	if !ok || c.Image == nil {
		return codec.ErrInvalidParam
	}
	return s.CopyReferenceFrame(c.Slot, c.Image)
}

func handleSetPostProc(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetPostProc)
	if !ok || c.Config == nil {
		return codec.ErrInvalidParam
	}
	s.SetPreviewPostProc(*c.Config)
	return nil
}

func handleUpdateEntropy(s *session.Session, cmd Command) error {
	c, ok := cmd.(UpdateEntropy)
	if !ok {
		return codec.ErrInvalidParam
	}
	return s.UpdateEntropy(c.Update)
}

func handleUpdateReference(s *session.Session, cmd Command) error {
	c, ok := cmd.(UpdateReference)
	if !ok {
		return codec.ErrInvalidParam
	}
	return s.UpdateReference(c.Mask)
}

func handleUseReference(s *session.Session, cmd Command) error {
	c, ok := cmd.(UseReference)
	if !ok {
		return codec.ErrInvalidParam
	}
	return s.UseReference(c.Mask)
}

func handleSetROIMap(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetROIMap)
	if !ok || c.Map == nil {
		return codec.ErrInvalidParam
	}
	return s.SetROIMap(*c.Map)
}

func handleSetActiveMap(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetActiveMap)
	if !ok || c.Map == nil {
		return codec.ErrInvalidParam
	}
	return s.SetActiveMap(*c.Map)
}

func handleSetScaleMode(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetScaleMode)
	if !ok {
		return codec.ErrInvalidParam
	}
	return s.SetScaleMode(c.Horizontal, c.Vertical)
}

func handleSetEncodingMode(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetEncodingMode)
	if !ok {
		return codec.ErrInvalidParam
	}
	return s.SetDeprecatedMode(c.Mode)
}

// handleSetIntParam updates a single extra-configuration knob; the new
// configuration pair is validated holistically before taking effect.
func handleSetIntParam(s *session.Session, cmd Command) error {
	c, ok := cmd.(SetIntParam)
	if !ok {
		return codec.ErrInvalidParam
	}
	return s.UpdateExtraConfig(func(x *codec.ExtraConfig) {
		switch c.ID {
		case IDSetCPUUsed:
			x.CPUUsed = c.Value
		case IDSetNoiseSensitivity:
			x.NoiseSensitivity = c.Value
		case IDSetEnableAutoAltRef:
			x.EnableAutoAltRef = c.Value
		case IDSetSharpness:
			x.Sharpness = c.Value
		case IDSetStaticThreshold:
			x.StaticThresh = c.Value
		case IDSetTokenPartitions:
			x.TokenPartitions = c.Value
		case IDSetARNRMaxFrames:
			x.ARNRMaxFrames = c.Value
		case IDSetARNRStrength:
			x.ARNRStrength = c.Value
		case IDSetARNRType:
			x.ARNRType = c.Value
		}
	})
}

func handleGetQuantizer(s *session.Session, cmd Command) error {
	c, ok := cmd.(GetQuantizer)
	if !ok || c.Result == nil {
		return codec.ErrInvalidParam
	}
	if c.Legacy {
		*c.Result = s.LastQuantizer64()
	} else {
		*c.Result = s.LastQuantizer()
	}
	return nil
}
