package layout

import (
	"strings"

	"github.com/fogleman/gg"
)

// フォント合わせ込みの探索範囲です。
const (
	MaxTextFontSize = 22
	MinTextFontSize = 9
)

// fitText は、テキストがボックスの使用可能領域に収まる最大のフォント
// サイズを線形探索で求め、そのサイズで折り返した行を返します。
// サイズを1ポイントずつ下げながら、実測した行幅で貪欲に折り返し、行数 ×
// 行高がボックスの高さに収まった時点で確定します。下限サイズでも収まら
// ない場合は下限の結果をそのまま返します。はみ出しは許容される劣化で、
// エラーにはしません。
func (e *Engine) fitText(dc *gg.Context, text string, maxWidth, maxHeight float64) (float64, []string) {
	var lines []string
	for size := MaxTextFontSize; size >= MinTextFontSize; size-- {
		dc.SetFontFace(e.face(float64(size)))
		lines = wrapMeasured(dc, text, maxWidth)
		height := float64(len(lines)) * dc.FontHeight() * lineSpacing
		if height <= maxHeight {
			return float64(size), lines
		}
	}
	return MinTextFontSize, lines
}

// wrapMeasured は、現在のフォントフェイスでの実測幅を使ってテキストを
// 貪欲に折り返します。明示的な改行は段落区切りとして尊重します。
func wrapMeasured(dc *gg.Context, text string, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if w, _ := dc.MeasureString(candidate); w <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}

// wrapByRuneCount は文字数ベースの素朴な折り返しです。タイトルのように
// 実測を使わない近似モデルで十分な場面で使います。
func wrapByRuneCount(text string, maxChars int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		if current == "" {
			current = word
			continue
		}
		if len([]rune(current))+1+len([]rune(word)) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{text}
	}
	return lines
}
