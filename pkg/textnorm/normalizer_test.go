package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize_KeepsTargetLanguages(t *testing.T) {
	input := strings.Join([]string{
		"Это вполне обычная строка на русском языке.",
		"This is a perfectly normal English line.",
		"これは対象外の言語で書かれた行です。",
	}, "\n")

	got := Normalize(input)

	if !strings.Contains(got, "русском") {
		t.Error("キリル文字の行が残っていません")
	}
	if !strings.Contains(got, "English") {
		t.Error("ラテン文字の行が残っていません")
	}
	if strings.Contains(got, "対象外") {
		t.Error("対象外言語の行が除去されていません")
	}
}

func TestNormalize_DropsOCRGarbage(t *testing.T) {
	input := strings.Join([]string{
		"A normal sentence that should survive the cleanup.",
		"|#% -- ~~ 0,3 ##/=!",
		"x|1 y=2 z^3 (((",
	}, "\n")

	got := Normalize(input)

	if !strings.Contains(got, "survive") {
		t.Error("正常な行まで落ちてしまっています")
	}
	if strings.Contains(got, "##") || strings.Contains(got, "(((") {
		t.Errorf("ノイズ行が残っています: %q", got)
	}
}

func TestNormalize_PageBreakMarkerBecomesNewline(t *testing.T) {
	input := "First page of the document text here." +
		"\n\n" + PageBreakMarker + "\n\n" +
		"Second page of the document text here."
	got := Normalize(input)
	if strings.Contains(got, PageBreakMarker) {
		t.Error("ページ区切りの目印が残っています")
	}
	if !strings.Contains(got, "First page") || !strings.Contains(got, "Second page") {
		t.Errorf("ページ本文が失われています: %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Just one good line of English text.",
		"Хорошая строка.\n###$$$\nAnother good one here.",
		"short\nA meaningful line that survives filtering easily.",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("冪等ではないのだ。1回目: %q, 2回目: %q", once, twice)
		}
	}
}

func TestNormalize_AllFilteredReturnsEmpty(t *testing.T) {
	input := strings.Join([]string{
		"",
		"a", // 最小長未満
		"12345 67890 0-0-0",
		"#### ---- ++++ ====",
	}, "\n")
	if got := Normalize(input); got != "" {
		t.Errorf("全行がしきい値未満なら空文字が期待されます: %q", got)
	}
}
