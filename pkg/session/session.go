// Package session は、1回の生成実行に対応するメモリ上の状態を保持します。
// 脚本とコマ画像の組をページ単位で管理し、個別コマの差し替えや
// キャプションの編集、最終的な組版のやり直しを提供します。
package session

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/export"
	"github.com/shouni/go-comic-kit/pkg/layout"
)

// PageState は1ページ分の脚本とコマ画像の組です。
type PageState struct {
	Scenario domain.Scenario
	Panels   []image.Image
}

// FinalPage は組版済みのページ画像と保存用ファイル名の組です。
type FinalPage struct {
	Filename string
	Image    image.Image
}

// Session は生成実行の進行状態です。全操作は排他制御されます。
type Session struct {
	mu    sync.RWMutex
	style string
	pages []PageState
}

// New は指定スタイルの空のセッションを生成します。
func New(style string) *Session {
	return &Session{style: style}
}

// Style はこのセッションの画風名を返します。
func (s *Session) Style() string {
	return s.style
}

// AddPage は生成済みの1ページ分の状態を末尾に追加します。
func (s *Session) AddPage(scenario domain.Scenario, panels []image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, PageState{Scenario: scenario, Panels: panels})
}

// PageCount は保持しているページ数を返します。
func (s *Session) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Page は指定ページの状態の複製を返します。スライスは共有しません。
func (s *Session) Page(pageIdx int) (PageState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pageIdx < 0 || pageIdx >= len(s.pages) {
		return PageState{}, fmt.Errorf("ページ %d は存在しません (全%dページ)", pageIdx, len(s.pages))
	}
	page := s.pages[pageIdx]
	cp := PageState{
		Scenario: page.Scenario,
		Panels:   make([]image.Image, len(page.Panels)),
	}
	copy(cp.Panels, page.Panels)
	cp.Scenario.Scenes = append([]domain.Scene(nil), page.Scenario.Scenes...)
	return cp, nil
}

// ReplacePanel は (ページ, コマ) の1枠だけを新しい画像で置き換えます。
// 枠の置き換えは丸ごと行い、部分更新は発生させません。
func (s *Session) ReplacePanel(pageIdx, panelIdx int, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageIdx < 0 || pageIdx >= len(s.pages) {
		return fmt.Errorf("ページ %d は存在しません (全%dページ)", pageIdx, len(s.pages))
	}
	panels := s.pages[pageIdx].Panels
	if panelIdx < 0 || panelIdx >= len(panels) {
		return fmt.Errorf("ページ %d にコマ %d は存在しません (全%dコマ)", pageIdx, panelIdx, len(panels))
	}
	panels[panelIdx] = img
	return nil
}

// SetCaption は指定コマの表示テキストをキャプションで上書きします。
// 台詞も同時に消去するため、以後はこのキャプションが表示されます。
func (s *Session) SetCaption(pageIdx, panelIdx int, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageIdx < 0 || pageIdx >= len(s.pages) {
		return fmt.Errorf("ページ %d は存在しません (全%dページ)", pageIdx, len(s.pages))
	}
	scenes := s.pages[pageIdx].Scenario.Scenes
	if panelIdx < 0 || panelIdx >= len(scenes) {
		return fmt.Errorf("ページ %d にシーン %d は存在しません (全%dシーン)", pageIdx, panelIdx, len(scenes))
	}
	scenes[panelIdx].Caption = caption
	scenes[panelIdx].Dialogue = domain.Dialogue{}
	return nil
}

// CommitFinalPages はその時点の状態で全ページを組版し直し、保存用の
// ファイル名を付けて返します。セッションの状態は変更しません。
func (s *Session) CommitFinalPages(ctx context.Context, engine *layout.Engine) ([]FinalPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	finals := make([]FinalPage, 0, len(s.pages))
	for i, page := range s.pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := engine.Compose(page.Scenario, page.Panels)
		if err != nil {
			return nil, fmt.Errorf("ページ %d の組版に失敗したのだ: %w", i+1, err)
		}
		finals = append(finals, FinalPage{
			Filename: export.PageFilename(i+1, s.style),
			Image:    img,
		})
	}
	return finals, nil
}
