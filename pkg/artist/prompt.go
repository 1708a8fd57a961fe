// Package artist は、脚本のシーンをコマ画像へ変換する生成系を提供します。
package artist

import "fmt"

// NegativePanelPrompt はコマ内テキストの描き込みを禁止する共通の負例指示です。
// 吹き出しやレタリングは組版側で重ねるため、画像側には一切入れません。
const NegativePanelPrompt = "text, speech bubble, dialogue, writing, letters, font, signature, labels, words, " +
	"photorealistic, photography, 3d render, architecture sketch, pattern, ornament, " +
	"blurry, worst quality, low quality, deformed, ugly, " +
	"extra limbs, disfigured, poorly drawn hands, poorly drawn face, empty scene"

// DefaultStyleKeywords は未知のスタイル名に対する画風のフォールバックです。
const DefaultStyleKeywords = "comic book style"

// 画風プリセット名です。
const (
	StyleRetroComic = "retro-comic"
	StyleManga      = "manga"
	StyleNoir       = "noir"
	StyleChildrens  = "childrens"
)

// stylePresets はプリセット名と画像生成用キーワードの対応表なのだ。
var stylePresets = map[string]string{
	StyleRetroComic: "80s comic book art, character-focused, bold outlines, halftone shading",
	StyleManga:      "dynamic black and white manga art, clean sharp lines, screentone shading, character-focused",
	StyleNoir:       "cinematic noir comic art, high-contrast black and white, dramatic chiaroscuro lighting",
	StyleChildrens:  "charming children's book illustration, cute cartoon style, simple characters, pastel colors",
}

// StyleKeywords はスタイル名に対応する画風キーワードを返します。
// 未登録の名前にはフォールバックを返します。
func StyleKeywords(style string) string {
	if kw, ok := stylePresets[style]; ok {
		return kw
	}
	return DefaultStyleKeywords
}

// StyleNames は選択可能なプリセット名を返します。CLIのヘルプ表示用です。
func StyleNames() []string {
	return []string{StyleRetroComic, StyleManga, StyleNoir, StyleChildrens}
}

// BuildPanelPrompt は画風キーワードとシーンの描写を1本のプロンプトへ
// 合成します。
func BuildPanelPrompt(imagePrompt, styleKeywords string) string {
	return fmt.Sprintf("%s. An illustration of: %s. masterpiece, detailed, high quality.", styleKeywords, imagePrompt)
}
