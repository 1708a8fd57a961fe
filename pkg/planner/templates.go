package planner

import (
	_ "embed"
)

const (
	ModePlan     = "plan"
	ModeCasting  = "casting"
	ModeScenario = "scenario"
)

// TemplateData はプロンプトのテンプレートに渡すデータ構造です。
// モードごとに使うフィールドが異なりますが、構造は1つに束ねています。
type TemplateData struct {
	DocumentText     string
	PageCount        int
	PageTitle        string
	SourceText       string
	CharacterSection string
	Style            string
	Audience         string
}

var (
	//go:embed plan.md
	PlanPrompt string
	//go:embed casting.md
	CastingPrompt string
	//go:embed scenario.md
	ScenarioPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModePlan:     PlanPrompt,
	ModeCasting:  CastingPrompt,
	ModeScenario: ScenarioPrompt,
}
