package codec

import "fmt"

func rangeCheck(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fieldErr(field, fmt.Sprintf("out of range [%d..%d]", lo, hi))
	}
	return nil
}

func rangeCheckHi(field string, v, hi int) error {
	if v > hi {
		return fieldErr(field, fmt.Sprintf("out of range [..%d]", hi))
	}
	return nil
}

func rangeCheckBool(field string, v int) error {
	if v != 0 && v != 1 {
		return fieldErr(field, "expected boolean")
	}
	return nil
}

// Validate performs exhaustive range checks and the cross-field checks
// on a proposed configuration pair. Fields are checked in a fixed
// order and the first violation is returned; every violation is a
// *FieldError naming the field and the violated bound.
func Validate(g *GlobalConfig, x *ExtraConfig) error {
	checks := []error{
		rangeCheck("g_w", g.Width, 2, 16384),
		rangeCheck("g_h", g.Height, 2, 16384),
		rangeCheck("g_timebase.den", g.Timebase.Den, 1, 1000000000),
		rangeCheck("g_timebase.num", g.Timebase.Num, 1, g.Timebase.Den),
		rangeCheckHi("g_profile", g.Profile, 3),
		rangeCheckHi("rc_min_quantizer", g.RCMinQuantizer, 63),
		rangeCheckHi("rc_max_quantizer", g.RCMaxQuantizer, 63),
		rangeCheckHi("g_threads", g.Threads, 64),
		rangeCheckHi("g_lag_in_frames", g.LagInFrames, 25),
		rangeCheck("rc_end_usage", int(g.RCEndUsage), int(UsageVBR), int(UsageCBR)),
		rangeCheckHi("rc_undershoot_pct", g.RCUndershootPct, 100),
		rangeCheckHi("rc_2pass_vbr_bias_pct", g.RC2PassVBRBiasPct, 100),
		rangeCheck("kf_mode", int(g.KFMode), int(KeyframeDisabled), int(KeyframeAuto)),
		rangeCheckBool("rc_resize_allowed", g.RCResizeAllowed),
		rangeCheckHi("rc_dropframe_thresh", g.RCDropframeThresh, 100),
		rangeCheckHi("rc_resize_up_thresh", g.RCResizeUpThresh, 100),
		rangeCheckHi("rc_resize_down_thresh", g.RCResizeDownThresh, 100),
		rangeCheck("g_pass", int(g.Pass), int(PassOne), int(PassLast)),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	// There is no lower bound on the keyframe interval in automatic
	// placement mode: a nonzero minimum distinct from the maximum is
	// unsatisfiable.
	if g.KFMode != KeyframeDisabled && g.KFMinDist != g.KFMaxDist && g.KFMinDist > 0 {
		return fieldErr("kf_min_dist", "not supported in auto mode, use 0 or kf_max_dist instead")
	}

	checks = []error{
		rangeCheckBool("enable_auto_alt_ref", x.EnableAutoAltRef),
		rangeCheck("encoding_mode", int(x.EncodingMode), int(EncodingBestQuality), int(EncodingRealTime)),
		rangeCheck("cpu_used", x.CPUUsed, -16, 16),
		rangeCheckHi("noise_sensitivity", x.NoiseSensitivity, 6),
		rangeCheck("token_partitions", x.TokenPartitions, OneTokenPartition, EightTokenPartitions),
		rangeCheckHi("sharpness", x.Sharpness, 7),
		rangeCheck("arnr_max_frames", x.ARNRMaxFrames, 0, 15),
		rangeCheckHi("arnr_strength", x.ARNRStrength, 6),
		rangeCheck("arnr_type", x.ARNRType, 1, 3),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if g.Pass == PassLast {
		if err := validateTwoPassStats(g.RCTwoPassStatsIn); err != nil {
			return err
		}
	}

	return nil
}
