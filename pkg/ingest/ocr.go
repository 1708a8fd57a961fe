//go:build ocr

package ingest

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractReader は gosseract 経由で Tesseract を使う OCRReader の実体です。
// 利用にはシステムへの Tesseract のインストールが必要です。
type TesseractReader struct {
	client *gosseract.Client
}

// NewOCRReader は新しい TesseractReader を生成します。
// languages には "rus"、"eng" などの学習データ名を渡します。
func NewOCRReader(languages ...string) (OCRReader, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("OCR言語の設定に失敗したのだ: %w", err)
		}
	}
	return &TesseractReader{client: client}, nil
}

// RecognizeImage は画像データ上の文字を認識して返します。
func (t *TesseractReader) RecognizeImage(imageData []byte) (string, error) {
	if err := t.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("OCR対象画像の設定に失敗したのだ: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("文字認識に失敗したのだ: %w", err)
	}
	return text, nil
}

// Close はOCRエンジンのリソースを解放します。
func (t *TesseractReader) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
