package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// CLI progress (info)
		"Loaded configuration from %s":          "%s から設定を読み込みました",
		"Encoding %dx%d frames at quality %d":   "%dx%d のフレームを品質 %d でエンコード中",
		"Encoded %d frames, %d bytes":           "%d フレームをエンコードしました (%d バイト)",
		"Decoded %d frames":                     "%d フレームをデコードしました",
		"Rendering %d frames of %dx%d":          "%d フレーム (%dx%d) を描画中",
		"Output saved to %s":                    "出力を %s に保存しました",
		"Loaded statistics from %s":             "%s から統計を読み込みました",
		"Saved statistics to %s":                "統計を %s に保存しました",

		// Encoder and decoder components (debug)
		"Frame %d: %s qi=%d, %d/%d blocks coded, %d bytes": "フレーム %d: %s qi=%d, %d/%d ブロック符号化, %d バイト",
		"Frame %d: modes %s":                    "フレーム %d: モード %s",
		"Frame %d: tables sent (%d bits)":       "フレーム %d: テーブル送信 (%d ビット)",
		"Frame %d: %s qi=%d decoded":            "フレーム %d: %s qi=%d をデコードしました",

		// Warnings
		"Scaling %s from %dx%d to %dx%d":        "%s を %dx%d から %dx%d に拡大縮小します",
		"Frame size %dx%d rounded down to %dx%d": "フレームサイズ %dx%d を %dx%d に切り下げました",

		// Errors
		"Failed to encode frame %d: %s":         "フレーム %d のエンコードに失敗しました: %s",
		"Failed to decode frame %d: %s":         "フレーム %d のデコードに失敗しました: %s",
		"Failed to write output: %s":            "出力の書き込みに失敗しました: %s",
	})
}
