// Package planner は、整形済みテキストからコミックの台本一式を生成する
// ステートマシンを提供します。構成案の作成、キャスティング、ページ単位の
// 脚本化という3段階を順に進め、途中の失敗はページ単位の脱落に抑えます。
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/jsonx"
	"github.com/shouni/go-comic-kit/pkg/textnorm"
)

// scriptingAttempts はページ1枚あたりの脚本化の試行回数です。
const scriptingAttempts = 2

// PromptInvoker はプロンプトを送信して応答テキストを得る最小の契約です。
// 失敗時は空文字が返り、エラーは実行全体を中断すべき場合に限られます。
type PromptInvoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Config は Planner の生成パラメータです。
type Config struct {
	PageCount            int
	Style                string
	Audience             string
	ConsistentCharacters bool
	MinUsableLength      int
}

// Planner は文書テキストを台本へ変換します。
type Planner struct {
	invoker PromptInvoker
	builder PromptBuilder
	cfg     Config
}

// New は新しい Planner を生成します。
func New(invoker PromptInvoker, builder PromptBuilder, cfg Config) *Planner {
	if cfg.MinUsableLength <= 0 {
		cfg.MinUsableLength = textnorm.DefaultMinUsableLength
	}
	return &Planner{invoker: invoker, builder: builder, cfg: cfg}
}

// GenerateScripts は文書全体を台本へ変換する主経路です。
// テキストの整形 → 構成案の作成 → キャスティング（任意）→ ページごとの
// 脚本化、の順で進みます。構成案の段階で失敗した場合はシナリオが空の
// ComicScript を返し、エラーにはしません。個々のページの失敗はそのページの
// 脱落にとどめ、他のページの生成を続けます。
func (p *Planner) GenerateScripts(ctx context.Context, rawText string) (*domain.ComicScript, error) {
	script := &domain.ComicScript{
		Style:    p.cfg.Style,
		Audience: p.cfg.Audience,
	}

	cleaned := textnorm.Normalize(rawText)
	if len(cleaned) < p.cfg.MinUsableLength {
		slog.Warn("整形後のテキストが短すぎるため台本生成を中止します",
			"length", len(cleaned), "min", p.cfg.MinUsableLength)
		return script, nil
	}

	plan, err := p.buildPlan(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		slog.Warn("構成案が得られなかったため台本は空になります")
		return script, nil
	}
	slog.Info("構成案を作成したのだ", "pages", len(plan))

	if p.cfg.ConsistentCharacters {
		// キャスティングには整形前の原文を渡します。固有名詞などの
		// 手掛かりがフィルタで落ちるのを避けるためです。
		script.Characters = p.castCharacters(ctx, rawText)
	}

	for i, item := range plan {
		if strings.TrimSpace(item.SourceText) == "" {
			slog.Warn("本文が空のページをスキップします", "page", i+1, "title", item.PageTitle)
			continue
		}
		scenario, ok := p.scriptPage(ctx, item, script.Characters)
		if !ok {
			slog.Warn("ページの脚本化に失敗したため脱落させます", "page", i+1, "title", item.PageTitle)
			continue
		}
		script.Scenarios = append(script.Scenarios, scenario)
	}

	slog.Info("台本生成が完了しました",
		"planned", len(plan), "scripted", len(script.Scenarios))
	return script, nil
}

// buildPlan は文書を最大 PageCount 件のトピックに分割します。
// 抽出に失敗した場合は空の計画を返し、呼び出し側で空振りとして扱います。
func (p *Planner) buildPlan(ctx context.Context, cleaned string) ([]domain.PlanItem, error) {
	prompt, err := p.builder.Build(ModePlan, TemplateData{
		DocumentText: cleaned,
		PageCount:    p.cfg.PageCount,
	})
	if err != nil {
		return nil, fmt.Errorf("構成案プロンプトの構築に失敗したのだ: %w", err)
	}

	resp, err := p.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("構成案の生成に失敗したのだ: %w", err)
	}
	if resp == "" {
		return nil, nil
	}

	var plan []domain.PlanItem
	if err := jsonx.Unmarshal(resp, &plan); err != nil {
		slog.Warn("構成案のJSON抽出に失敗しました", "error", err)
		return nil, nil
	}
	return plan, nil
}

// castCharacters は作品全体で共有するキャラクター表を生成します。
// 失敗しても処理は続行され、各ページでその場限りの配役が使われます。
func (p *Planner) castCharacters(ctx context.Context, rawText string) domain.Roster {
	prompt, err := p.builder.Build(ModeCasting, TemplateData{
		DocumentText: rawText,
		Audience:     p.cfg.Audience,
	})
	if err != nil {
		slog.Warn("キャスティングプロンプトの構築に失敗しました", "error", err)
		return nil
	}

	resp, err := p.invoker.Invoke(ctx, prompt)
	if err != nil || resp == "" {
		slog.Warn("キャスティングに失敗したためページ毎の配役に切り替えます", "error", err)
		return nil
	}

	var roster domain.Roster
	if err := jsonx.Unmarshal(resp, &roster); err != nil {
		slog.Warn("キャラクター表のJSON抽出に失敗しました", "error", err)
		return nil
	}
	slog.Info("キャラクター表を確定したのだ", "characters", roster.Names())
	return roster
}

// scriptPage は1ページ分の脚本化を行います。scenes が空の応答は失敗と
// みなし、規定回数だけやり直します。
func (p *Planner) scriptPage(ctx context.Context, item domain.PlanItem, roster domain.Roster) (domain.Scenario, bool) {
	prompt, err := p.builder.Build(ModeScenario, TemplateData{
		PageTitle:        item.PageTitle,
		SourceText:       item.SourceText,
		CharacterSection: roster.PromptSection(),
		Style:            p.cfg.Style,
		Audience:         p.cfg.Audience,
	})
	if err != nil {
		slog.Warn("脚本プロンプトの構築に失敗しました", "title", item.PageTitle, "error", err)
		return domain.Scenario{}, false
	}

	for attempt := 1; attempt <= scriptingAttempts; attempt++ {
		resp, err := p.invoker.Invoke(ctx, prompt)
		if err != nil {
			slog.Warn("脚本化の呼び出しに失敗しました", "title", item.PageTitle, "error", err)
			return domain.Scenario{}, false
		}
		if resp == "" {
			continue
		}

		var scenario domain.Scenario
		if err := jsonx.Unmarshal(resp, &scenario); err != nil {
			slog.Warn("脚本のJSON抽出に失敗しました",
				"title", item.PageTitle, "attempt", attempt, "error", err)
			continue
		}
		if !scenario.Usable() {
			slog.Warn("scenes が空の脚本を破棄します", "title", item.PageTitle, "attempt", attempt)
			continue
		}

		// 構成案の見出しと本文を正とし、ページ側の題名を上書きします。
		if item.PageTitle != "" {
			scenario.Title = item.PageTitle
		}
		scenario.Summary = item.SourceText
		return scenario, true
	}
	return domain.Scenario{}, false
}
