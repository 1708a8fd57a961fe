//go:build !ocr

package ingest

// NewOCRReader は、OCRサポートなしでビルドされた場合のスタブです。
// 常に ErrOCRNotEnabled を返します。
func NewOCRReader(languages ...string) (OCRReader, error) {
	return nil, ErrOCRNotEnabled
}
