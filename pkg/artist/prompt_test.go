package artist

import (
	"strings"
	"testing"
)

func TestBuildPanelPrompt(t *testing.T) {
	got := BuildPanelPrompt("a robot waters a plant", StyleKeywords(StyleManga))

	if !strings.HasPrefix(got, "dynamic black and white manga art") {
		t.Errorf("画風キーワードが先頭に来る想定です: %q", got)
	}
	if !strings.Contains(got, "An illustration of: a robot waters a plant.") {
		t.Errorf("シーン描写が埋め込まれていません: %q", got)
	}
	if !strings.HasSuffix(got, "masterpiece, detailed, high quality.") {
		t.Errorf("品質サフィックスが末尾に来る想定です: %q", got)
	}
}

func TestStyleKeywords(t *testing.T) {
	t.Run("登録済みプリセットは対応表を引く", func(t *testing.T) {
		if got := StyleKeywords(StyleNoir); !strings.Contains(got, "noir") {
			t.Errorf("ノワール画風が返る想定です: %q", got)
		}
	})

	t.Run("未知のスタイルはフォールバックする", func(t *testing.T) {
		if got := StyleKeywords("does-not-exist"); got != DefaultStyleKeywords {
			t.Errorf("フォールバックが返る想定です: %q", got)
		}
	})
}

func TestNegativePanelPrompt_ForbidsLettering(t *testing.T) {
	for _, word := range []string{"text", "speech bubble", "letters", "words"} {
		if !strings.Contains(NegativePanelPrompt, word) {
			t.Errorf("負例指示に %q が含まれる想定です", word)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder()
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		t.Fatal("代替画像が空です")
	}
	r, g, bl, a := img.At(b.Dx()/2, b.Dy()/2).RGBA()
	if a != 0xffff || r != g || g != bl {
		t.Errorf("無地のグレーを想定しています: r=%d g=%d b=%d a=%d", r, g, bl, a)
	}
}
