package runner

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/shouni/go-comic-kit/pkg/export"
	"github.com/shouni/go-comic-kit/pkg/session"
)

// PublisherRunner は、組版済みページの保存を行うインターフェース。
type PublisherRunner interface {
	Run(ctx context.Context, finals []session.FinalPage) error
}

// DefaultPublisherRunner はPNGの連番保存と、任意でPDFへの束ねを行う実体。
type DefaultPublisherRunner struct {
	publisher *export.Publisher
	pdfFile   string // 空なら PDF は作らない
}

// NewDefaultPublisherRunner は DefaultPublisherRunner の新しいインスタンスを生成して返す。
func NewDefaultPublisherRunner(publisher *export.Publisher, pdfFile string) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{publisher: publisher, pdfFile: pdfFile}
}

// Run は全ページをPNGとして保存し、指定があればPDFにも束ねるのだ。
func (pr *DefaultPublisherRunner) Run(ctx context.Context, finals []session.FinalPage) error {
	if len(finals) == 0 {
		return fmt.Errorf("保存するページがないのだ")
	}

	pages := make([]image.Image, 0, len(finals))
	for _, final := range finals {
		path, err := pr.publisher.WritePNG(ctx, final.Filename, final.Image)
		if err != nil {
			return fmt.Errorf("ページ '%s' の保存に失敗したのだ: %w", final.Filename, err)
		}
		slog.Info("ページを保存したのだ", "path", path)
		pages = append(pages, final.Image)
	}

	if pr.pdfFile != "" {
		path, err := pr.publisher.WritePDF(ctx, pr.pdfFile, pages)
		if err != nil {
			return fmt.Errorf("PDFの保存に失敗したのだ: %w", err)
		}
		slog.Info("PDFを保存したのだ", "path", path, "pages", len(pages))
	}
	return nil
}
