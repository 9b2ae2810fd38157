// Package mocks provides mock implementations for testing.
package mocks

import (
	"github.com/user/vp8session/pkg/ports"
)

// CompressorEngine is a mock implementation of ports.CompressorEngine.
type CompressorEngine struct {
	ChangeConfigFunc      func(cfg ports.EngineConfig) error
	ReceiveRawFrameFunc   func(flags ports.SubmitFlags, frame *ports.FrameBuffer, timestamp, endTimestamp int64) error
	CompressedDataFunc    func(dst []byte, flush bool) (*ports.CompressedUnit, error)
	LastTimestampSeenFunc func() int64
	UseAsReferenceFunc    func(mask ports.RefMask) error
	UpdateReferenceFunc   func(mask ports.RefMask) error
	UpdateEntropyFunc     func(update bool) error
	SetReferenceFunc      func(slot ports.RefMask, frame *ports.FrameBuffer) error
	CopyReferenceFunc     func(slot ports.RefMask, frame *ports.FrameBuffer) error
	SetROIMapFunc         func(roi ports.ROIMap) error
	SetActiveMapFunc      func(active ports.ActiveMap) error
	SetInternalSizeFunc   func(horizontal, vertical ports.ScalingMode) error
	QuantizerFunc         func() int
	PreviewFrameFunc      func(flags ports.PostProcFlags) (*ports.FrameBuffer, error)
	CloseFunc             func() error
}

func (m *CompressorEngine) ChangeConfig(cfg ports.EngineConfig) error {
	if m.ChangeConfigFunc != nil {
		return m.ChangeConfigFunc(cfg)
	}
	return nil
}

func (m *CompressorEngine) ReceiveRawFrame(flags ports.SubmitFlags, frame *ports.FrameBuffer, timestamp, endTimestamp int64) error {
	if m.ReceiveRawFrameFunc != nil {
		return m.ReceiveRawFrameFunc(flags, frame, timestamp, endTimestamp)
	}
	return nil
}

func (m *CompressorEngine) CompressedData(dst []byte, flush bool) (*ports.CompressedUnit, error) {
	if m.CompressedDataFunc != nil {
		return m.CompressedDataFunc(dst, flush)
	}
	return nil, nil
}

func (m *CompressorEngine) LastTimestampSeen() int64 {
	if m.LastTimestampSeenFunc != nil {
		return m.LastTimestampSeenFunc()
	}
	return 0
}

func (m *CompressorEngine) UseAsReference(mask ports.RefMask) error {
	if m.UseAsReferenceFunc != nil {
		return m.UseAsReferenceFunc(mask)
	}
	return nil
}

func (m *CompressorEngine) UpdateReference(mask ports.RefMask) error {
	if m.UpdateReferenceFunc != nil {
		return m.UpdateReferenceFunc(mask)
	}
	return nil
}

func (m *CompressorEngine) UpdateEntropy(update bool) error {
	if m.UpdateEntropyFunc != nil {
		return m.UpdateEntropyFunc(update)
	}
	return nil
}

func (m *CompressorEngine) SetReference(slot ports.RefMask, frame *ports.FrameBuffer) error {
	if m.SetReferenceFunc != nil {
		return m.SetReferenceFunc(slot, frame)
	}
	return nil
}

func (m *CompressorEngine) CopyReference(slot ports.RefMask, frame *ports.FrameBuffer) error {
	if m.CopyReferenceFunc != nil {
		return m.CopyReferenceFunc(slot, frame)
	}
	return nil
}

func (m *CompressorEngine) SetROIMap(roi ports.ROIMap) error {
	if m.SetROIMapFunc != nil {
		return m.SetROIMapFunc(roi)
	}
	return nil
}

func (m *CompressorEngine) SetActiveMap(active ports.ActiveMap) error {
	if m.SetActiveMapFunc != nil {
		return m.SetActiveMapFunc(active)
	}
	return nil
}

func (m *CompressorEngine) SetInternalSize(horizontal, vertical ports.ScalingMode) error {
	if m.SetInternalSizeFunc != nil {
		return m.SetInternalSizeFunc(horizontal, vertical)
	}
	return nil
}

func (m *CompressorEngine) Quantizer() int {
	if m.QuantizerFunc != nil {
		return m.QuantizerFunc()
	}
	return 0
}

func (m *CompressorEngine) PreviewFrame(flags ports.PostProcFlags) (*ports.FrameBuffer, error) {
	if m.PreviewFrameFunc != nil {
		return m.PreviewFrameFunc(flags)
	}
	return nil, nil
}

func (m *CompressorEngine) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.CompressorEngine = (*CompressorEngine)(nil)
