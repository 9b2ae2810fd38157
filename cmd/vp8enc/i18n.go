// Package main provides localization for the vp8enc CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Session-level VP8 encoding front end.": "セッションレベルのVP8エンコードフロントエンド。",

		// Encode command
		"Encode raw I420 frames into an IVF or MP4 stream.": "生のI420フレームをIVFまたはMP4ストリームにエンコード。",

		// Stats command
		"Inspect and validate a first-pass statistics file.": "ファーストパス統計ファイルを検査・検証。",

		// Version command
		"Show version information.": "バージョン情報を表示。",
		"vp8enc (Go) version %s":    "vp8enc (Go版) バージョン %s",

		// Flags
		"Raw I420 input file path.":                          "生I420入力ファイルパス。",
		"Output file path.":                                  "出力ファイルパス。",
		"YAML encoding profile path.":                        "YAMLエンコードプロファイルパス。",
		"Target bitrate in kbit/s (default: 256).":           "目標ビットレート（kbit/s、デフォルト: 256）。",
		"Encoding pass (one, first or last).":                "エンコードパス（one, first, last）。",
		"Output container (ivf or mp4, default: ivf).":       "出力コンテナ（ivfまたはmp4、デフォルト: ivf）。",
		"Output encode summary to file (Markdown format).":   "エンコードサマリーをファイルに出力（Markdown形式）。",
		"Per-frame deadline in microseconds (0 = best quality).": "フレームあたりのデッドライン（マイクロ秒、0 = 最高品質）。",
		"Log level (debug, info, warn, error).":              "ログレベル（debug, info, warn, error）。",
		"Suppress all log output.":                           "全てのログ出力を抑制。",

		// Runtime messages
		"Encoding %s (%s, %dx%d)...":  "%s をエンコード中（%s, %dx%d）...",
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Stats messages
		"Frame records: %d": "フレームレコード数: %d",
	})
}
