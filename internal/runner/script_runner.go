package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/ingest"
	"github.com/shouni/go-comic-kit/pkg/planner"
)

// ScriptRunner は、PDFの取り込みから台本生成までを実行するインターフェース。
type ScriptRunner interface {
	// Run はPDFを読み取り、コミックの台本一式を生成して返す。
	Run(ctx context.Context, pdfPath string) (*domain.ComicScript, error)
}

// ComicScriptRunner は Ingestor と Planner を直列に束ねる実体なのだ。
type ComicScriptRunner struct {
	ingestor *ingest.Ingestor
	planner  *planner.Planner
}

// NewComicScriptRunner は ComicScriptRunner の新しいインスタンスを生成して返す。
func NewComicScriptRunner(ingestor *ingest.Ingestor, p *planner.Planner) *ComicScriptRunner {
	return &ComicScriptRunner{ingestor: ingestor, planner: p}
}

// Run はPDFからテキストを取り出し、台本へ変換するのだ。
func (sr *ComicScriptRunner) Run(ctx context.Context, pdfPath string) (*domain.ComicScript, error) {
	slog.Info("文書の取り込みを開始するのだ", "path", pdfPath)
	text, err := sr.ingestor.ProcessPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("文書の取り込みに失敗したのだ: %w", err)
	}

	script, err := sr.planner.GenerateScripts(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("台本の生成に失敗したのだ: %w", err)
	}
	if len(script.Scenarios) == 0 {
		slog.Warn("台本が1ページも得られませんでした")
	}
	return script, nil
}
