package domain

import "strings"

// PlanItem は、構成案の段階で割り当てられた1ページ分のテーマ情報を保持します。
// Planner が一度だけ生成し、以降の工程は読み取り専用で参照します。
type PlanItem struct {
	PageTitle  string `json:"page_title"`
	SourceText string `json:"original_text_chunk"`
}

// Scene は漫画の1コマを表します。画像生成の指示と、コマ内に描画するテキストを持ちます。
type Scene struct {
	ImagePrompt string   `json:"image_prompt"`
	Dialogue    Dialogue `json:"dialogue"`
	Caption     string   `json:"caption"`
}

// DisplayText は、コマの吹き出しに描画すべきテキストを解決するのだ。
// セリフ（dialogue）を優先し、空ならキャプションへフォールバックします。
// どちらも空白のみの場合は空文字を返し、テキストボックスは描画されません。
func (s Scene) DisplayText() string {
	if text := strings.TrimSpace(s.Dialogue.Flatten()); text != "" {
		return text
	}
	return strings.TrimSpace(strings.ReplaceAll(s.Caption, "<br>", "\n"))
}

// Scenario は台本化された1ページ分の漫画を表します。
type Scenario struct {
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Scenes  []Scene `json:"scenes"`
}

// Usable は、このシナリオが後続工程で利用可能かを返します。
// シーンを1つも持たないシナリオは生成失敗として扱われ、ページごと破棄されます。
func (sc Scenario) Usable() bool {
	return len(sc.Scenes) > 0
}

// ComicScript は1回の生成で得られたシナリオ一式です。
// script コマンドの JSON 出力と compose コマンドの入力に使用します。
type ComicScript struct {
	Scenarios  []Scenario `json:"scenarios"`
	Characters Roster     `json:"characters,omitempty"`
	Style      string     `json:"style,omitempty"`
	Audience   string     `json:"audience,omitempty"`
}
