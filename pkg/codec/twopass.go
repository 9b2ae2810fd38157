package codec

import (
	"encoding/binary"
	"math"
)

// FirstPassStats is one per-frame analysis record produced by a first
// encoding pass and consumed by the last pass for rate-control
// decisions. The buffer ends with an aggregate record whose Count field
// holds the number of frame records before it.
type FirstPassStats struct {
	Frame               float64
	IntraError          float64
	CodedError          float64
	SSIMWeightedPredErr float64
	PctInter            float64
	PctMotion           float64
	PctSecondRef        float64
	PctNeutral          float64
	MVr                 float64
	MVrAbs              float64
	MVc                 float64
	MVcAbs              float64
	MVrv                float64
	MVcv                float64
	MVInOutCount        float64
	Duration            float64
	Count               float64
}

// StatsRecordSize is the encoded size of one FirstPassStats record.
// The record layout does not depend on the picture size.
const StatsRecordSize = 17 * 8

// EncodeStatsRecord appends the little-endian encoding of s to dst.
func EncodeStatsRecord(dst []byte, s *FirstPassStats) []byte {
	for _, v := range []float64{
		s.Frame, s.IntraError, s.CodedError, s.SSIMWeightedPredErr,
		s.PctInter, s.PctMotion, s.PctSecondRef, s.PctNeutral,
		s.MVr, s.MVrAbs, s.MVc, s.MVcAbs, s.MVrv, s.MVcv,
		s.MVInOutCount, s.Duration, s.Count,
	} {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	}
	return dst
}

// DecodeStatsRecord decodes one record from the front of buf. buf must
// hold at least StatsRecordSize bytes.
func DecodeStatsRecord(buf []byte) FirstPassStats {
	f := make([]float64, 17)
	for i := range f {
		f[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return FirstPassStats{
		Frame: f[0], IntraError: f[1], CodedError: f[2], SSIMWeightedPredErr: f[3],
		PctInter: f[4], PctMotion: f[5], PctSecondRef: f[6], PctNeutral: f[7],
		MVr: f[8], MVrAbs: f[9], MVc: f[10], MVcAbs: f[11], MVrv: f[12], MVcv: f[13],
		MVInOutCount: f[14], Duration: f[15], Count: f[16],
	}
}

// ValidateStatsBuffer checks a statistics buffer without a surrounding
// configuration, for tooling that inspects stats files directly.
func ValidateStatsBuffer(buf []byte) error {
	return validateTwoPassStats(buf)
}

// validateTwoPassStats checks a last-pass statistics buffer: presence,
// exact record alignment, a minimum of two records, and a trailing
// aggregate record accounting for every frame record before it. Each
// violation is distinct; none is silently truncated.
func validateTwoPassStats(buf []byte) error {
	if len(buf) == 0 {
		return fieldErr("rc_twopass_stats_in.buf", "not set")
	}
	if len(buf)%StatsRecordSize != 0 {
		return fieldErr("rc_twopass_stats_in.sz", "indicates truncated packet")
	}
	n := len(buf) / StatsRecordSize
	if n < 2 {
		return fieldErr("rc_twopass_stats_in", "requires at least two packets")
	}
	final := DecodeStatsRecord(buf[(n-1)*StatsRecordSize:])
	if int(final.Count+0.5) != n-1 {
		return fieldErr("rc_twopass_stats_in", "missing EOS stats packet")
	}
	return nil
}
