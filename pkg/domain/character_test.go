package domain

import (
	"strings"
	"testing"
)

func TestRoster_PromptSection(t *testing.T) {
	t.Run("名簿ありなら全員が指示に含まれるのだ", func(t *testing.T) {
		r := Roster{
			{Name: "Dr. Ivanova", Description: "a stern physicist with silver hair"},
			{Name: "Max", Description: "an enthusiastic graduate student"},
		}
		section := r.PromptSection()
		for _, c := range r {
			if !strings.Contains(section, c.Name) || !strings.Contains(section, c.Description) {
				t.Errorf("キャラクター %q が指示ブロックに含まれていません", c.Name)
			}
		}
	})

	t.Run("名簿が空ならページ内で考案させる指示になること", func(t *testing.T) {
		section := Roster{}.PromptSection()
		if !strings.Contains(section, "Invent") {
			t.Errorf("フォールバック指示が含まれていません: %q", section)
		}
	})
}

func TestRoster_Names(t *testing.T) {
	r := Roster{{Name: "A"}, {Name: "B"}}
	names := r.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("登録順の名前一覧が期待されます: %v", names)
	}
}
