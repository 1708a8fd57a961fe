package domain

import (
	"fmt"
	"strings"
)

// Character は全ページで共有されるキャラクター設定（ストーリーバイブル）の1人分です。
// キャスティング工程で一度だけ生成され、以降は変更されません。
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// String はキャラクターの情報を文字列で返すのだ。
func (c Character) String() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Description)
}

// Roster は作品全体で一貫して登場するキャラクターの一覧です。
type Roster []Character

// Names は登録順のままキャラクター名を返します。
func (r Roster) Names() []string {
	names := make([]string, 0, len(r))
	for _, c := range r {
		names = append(names, c.Name)
	}
	return names
}

// PromptSection は、台本生成プロンプトに埋め込むキャラクター指示ブロックを構築します。
// 名簿が空の場合は、ページごとに登場人物を考案させる指示へフォールバックします。
func (r Roster) PromptSection() string {
	if len(r) == 0 {
		return "No fixed cast is defined. Invent the roles needed for this page yourself and keep them consistent within the page."
	}

	var sb strings.Builder
	sb.WriteString("Use ONLY the following established characters. Refer to them by name and keep their look and personality consistent:\n")
	for _, c := range r {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, c.Description))
	}
	return sb.String()
}
