// Package textnorm は、PDF抽出やOCRで得られた生テキストを台本生成に使える形へ
// 整形するのだ。対象言語以外の行とOCRの壊れた行を落とし、残りを連結します。
package textnorm

import (
	"strings"
	"unicode"
)

// PageBreakMarker は文書取り込み側がページ境界に挿入する目印です。
// 正規化の際は単なる改行として扱います。
const PageBreakMarker = "--- Page Break ---"

// デフォルトのしきい値。オリジナルのOCR後処理の実測に基づく値です。
const (
	DefaultScriptThreshold = 0.7
	DefaultGarbageRatio    = 0.6
	DefaultGarbageMinLen   = 5
	DefaultMinLineLen      = 2

	// DefaultMinUsableLength は、正規化後にこれを下回る文書を
	// 「使用不能」と判断するための下限です。判断は呼び出し側が行います。
	DefaultMinUsableLength = 200
)

// Options は正規化の挙動を制御します。ゼロ値フィールドにはデフォルトが適用されます。
type Options struct {
	// Scripts は「支配的であれば行を残す」対象の文字体系です。
	// 空の場合はキリル文字とラテン文字を対象にします。
	Scripts []*unicode.RangeTable

	// ScriptThreshold は、行内の英字のうち対象文字体系が占めるべき割合です。
	ScriptThreshold float64

	// GarbageRatio は、非空白文字に対する英字の最低割合です。
	// これを下回る行はOCRノイズとして破棄されます。
	GarbageRatio float64

	// GarbageMinLen は、ノイズ判定を適用する最小の非空白文字数です。
	GarbageMinLen int

	// MinLineLen は、これより短い行を無条件に落とす下限です。
	MinLineLen int
}

func (o Options) withDefaults() Options {
	if len(o.Scripts) == 0 {
		o.Scripts = []*unicode.RangeTable{unicode.Cyrillic, unicode.Latin}
	}
	if o.ScriptThreshold == 0 {
		o.ScriptThreshold = DefaultScriptThreshold
	}
	if o.GarbageRatio == 0 {
		o.GarbageRatio = DefaultGarbageRatio
	}
	if o.GarbageMinLen == 0 {
		o.GarbageMinLen = DefaultGarbageMinLen
	}
	if o.MinLineLen == 0 {
		o.MinLineLen = DefaultMinLineLen
	}
	return o
}

// Normalize はデフォルト設定で正規化を行います。純粋関数であり、
// 同じ入力には常に同じ出力を返します。
func Normalize(raw string) string {
	return NormalizeWith(raw, Options{})
}

// NormalizeWith は指定された設定で正規化を行います。
// ページ区切りを改行へ戻し、行単位でフィルタして改行で連結し直します。
func NormalizeWith(raw string, opts Options) string {
	opts = opts.withDefaults()

	text := strings.ReplaceAll(raw, PageBreakMarker, "\n")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if keepLine(line, opts) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// keepLine は1行を残すべきかを判定します。
func keepLine(line string, opts Options) bool {
	if len(strings.TrimSpace(line)) < opts.MinLineLen {
		return false
	}
	if !isPredominantScript(line, opts.Scripts, opts.ScriptThreshold) {
		return false
	}

	// OCRノイズ判定: 記号まみれの行を落とす
	letters, nonSpace := 0, 0
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if nonSpace > opts.GarbageMinLen && float64(letters)/float64(nonSpace) < opts.GarbageRatio {
		return false
	}
	return true
}

// isPredominantScript は、行内の英字のうちいずれかの対象文字体系が
// しきい値以上を占めるかを調べます。英字を1つも含まない行は常に false です。
func isPredominantScript(line string, scripts []*unicode.RangeTable, threshold float64) bool {
	totalLetters := 0
	counts := make([]int, len(scripts))
	for _, r := range line {
		if !unicode.IsLetter(r) {
			continue
		}
		totalLetters++
		for i, script := range scripts {
			if unicode.Is(script, r) {
				counts[i]++
			}
		}
	}
	if totalLetters == 0 {
		return false
	}
	for _, count := range counts {
		if float64(count)/float64(totalLetters) >= threshold {
			return true
		}
	}
	return false
}
