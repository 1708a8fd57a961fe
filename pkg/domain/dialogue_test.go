package domain

import (
	"encoding/json"
	"testing"
)

func TestDialogue_UnmarshalJSON(t *testing.T) {
	t.Run("文字列のセリフをそのまま受け付けるのだ", func(t *testing.T) {
		var d Dialogue
		if err := json.Unmarshal([]byte(`"こんにちは！"`), &d); err != nil {
			t.Fatalf("パース失敗なのだ: %v", err)
		}
		if d.Kind != DialogueText || d.Text != "こんにちは！" {
			t.Errorf("文字列として解釈されていないのだ: %+v", d)
		}
	})

	t.Run("話者つきオブジェクトはキーの順序を保持すること", func(t *testing.T) {
		var d Dialogue
		input := `{"勇者": "行くぞ！", "魔王": "来るがいい"}`
		if err := json.Unmarshal([]byte(input), &d); err != nil {
			t.Fatalf("パース失敗: %v", err)
		}
		if d.Kind != DialogueKeyed || len(d.Entries) != 2 {
			t.Fatalf("マッピングとして解釈されていません: %+v", d)
		}
		if d.Entries[0].Key != "勇者" || d.Entries[1].Key != "魔王" {
			t.Errorf("キーの順序が保持されていません: %+v", d.Entries)
		}
	})

	t.Run("配列は要素を再帰的に解釈すること", func(t *testing.T) {
		var d Dialogue
		input := `["第一声", {"ナレーター": "そして夜が明けた"}]`
		if err := json.Unmarshal([]byte(input), &d); err != nil {
			t.Fatalf("パース失敗: %v", err)
		}
		if d.Kind != DialogueList || len(d.Items) != 2 {
			t.Fatalf("配列として解釈されていません: %+v", d)
		}
		if d.Items[1].Kind != DialogueKeyed {
			t.Errorf("入れ子のオブジェクトが解釈されていません: %+v", d.Items[1])
		}
	})

	t.Run("nullは空のセリフになること", func(t *testing.T) {
		var d Dialogue
		if err := json.Unmarshal([]byte(`null`), &d); err != nil {
			t.Fatalf("パース失敗: %v", err)
		}
		if !d.IsEmpty() {
			t.Errorf("空として扱われていません: %+v", d)
		}
	})
}

func TestDialogue_Flatten(t *testing.T) {
	t.Run("brタグは改行へ置換されるのだ", func(t *testing.T) {
		d := NewText("一行目<br>二行目")
		if got := d.Flatten(); got != "一行目\n二行目" {
			t.Errorf("期待と異なるのだ: %q", got)
		}
	})

	t.Run("マッピングは値をコロン区切りで1行に連結すること", func(t *testing.T) {
		d := Dialogue{Kind: DialogueKeyed, Entries: []DialogueEntry{
			{Key: "speaker", Value: NewText("勇者")},
			{Key: "line", Value: NewText("行くぞ！")},
		}}
		if got := d.Flatten(); got != "勇者: 行くぞ！" {
			t.Errorf("期待値 %q, 実際 %q", "勇者: 行くぞ！", got)
		}
	})

	t.Run("並びは改行で連結されること", func(t *testing.T) {
		d := Dialogue{Kind: DialogueList, Items: []Dialogue{
			NewText("上の吹き出し"),
			NewText("下の吹き出し"),
		}}
		if got := d.Flatten(); got != "上の吹き出し\n下の吹き出し" {
			t.Errorf("期待と異なります: %q", got)
		}
	})
}

func TestDialogue_RoundTrip(t *testing.T) {
	inputs := []string{
		`"ただの文字列"`,
		`["a","b"]`,
		`{"k1":"v1","k2":["v2","v3"]}`,
	}
	for _, input := range inputs {
		var d Dialogue
		if err := json.Unmarshal([]byte(input), &d); err != nil {
			t.Fatalf("Unmarshal失敗 (%s): %v", input, err)
		}
		out, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("Marshal失敗 (%s): %v", input, err)
		}
		if string(out) != input {
			t.Errorf("往復で形が変わったのだ。期待: %s, 実際: %s", input, out)
		}
	}
}

func TestScene_DisplayText(t *testing.T) {
	t.Run("セリフを優先すること", func(t *testing.T) {
		s := Scene{Dialogue: NewText("セリフ"), Caption: "キャプション"}
		if got := s.DisplayText(); got != "セリフ" {
			t.Errorf("期待値 'セリフ', 実際 %q", got)
		}
	})

	t.Run("セリフが空白のみならキャプションへフォールバックすること", func(t *testing.T) {
		s := Scene{Dialogue: NewText("   "), Caption: "ナレーション<br>続き"}
		if got := s.DisplayText(); got != "ナレーション\n続き" {
			t.Errorf("期待と異なります: %q", got)
		}
	})

	t.Run("両方空なら空文字になること", func(t *testing.T) {
		s := Scene{}
		if got := s.DisplayText(); got != "" {
			t.Errorf("空文字が期待されます: %q", got)
		}
	})
}

func TestScenario_Usable(t *testing.T) {
	empty := Scenario{Title: "シーンなし"}
	if empty.Usable() {
		t.Error("シーンを持たないシナリオは利用不可のはずです")
	}
	ok := Scenario{Scenes: []Scene{{ImagePrompt: "a forest"}}}
	if !ok.Usable() {
		t.Error("シーンを持つシナリオは利用可能のはずです")
	}
}
