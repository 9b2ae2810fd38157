package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session lifecycle
		"Session opened: %dx%d, %d kbit/s": "セッションを開始: %dx%d, %d kbit/s",
		"Configuration updated":            "設定を更新しました",
		"Session closed":                   "セッションを終了しました",

		// Encoding
		"Compression mode changed to %d":  "圧縮モードを %d に変更しました",
		"Packet queue full, dropping packet": "パケットキューが満杯のためパケットを破棄します",
		"Encoding frame %d":               "フレーム %d をエンコード中",
		"Flushing lagged frames":          "遅延フレームをフラッシュ中",
		"Encoded %d frames, %d bytes":     "%d フレーム、%d バイトをエンコードしました",

		// Two-pass
		"First pass produced %d stats records": "ファーストパスで %d 件の統計レコードを生成しました",
		"Stats file is valid: %d records":      "統計ファイルは有効です: %d レコード",

		// Output
		"Output saved to %s":         "出力を %s に保存しました",
		"Writing %s container":       "%s コンテナを書き込み中",

		// Errors
		"Failed to open session: %s":  "セッションの開始に失敗しました: %s",
		"Failed to encode frame: %s":  "フレームのエンコードに失敗しました: %s",
		"Failed to write output: %s":  "出力の書き込みに失敗しました: %s",
	})
}
