package artist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// tinyPNG は 2x2 の赤いPNGをエンコードして返します。
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("PNGエンコードに失敗: %v", err)
	}
	return buf.Bytes()
}

// fakeBackend は投入1回と、任意の状態列を返すテスト用サーバです。
func fakeBackend(t *testing.T, statuses []statusResponse) (*httptest.Server, *int) {
	t.Helper()
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/panels":
			json.NewEncoder(w).Encode(submitResponse{TaskID: "task-1"})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/panels/"):
			i := polls
			polls++
			if i >= len(statuses) {
				i = len(statuses) - 1
			}
			json.NewEncoder(w).Encode(statuses[i])
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func testScene() domain.Scene {
	return domain.Scene{ImagePrompt: "a lighthouse at night"}
}

func TestRemotePanelGenerator_GeneratePanel(t *testing.T) {
	ctx := context.Background()

	t.Run("PENDINGを挟んでDONEになれば画像が返る", func(t *testing.T) {
		srv, polls := fakeBackend(t, []statusResponse{
			{Status: StatusPending},
			{Status: StatusPending},
			{Status: StatusDone, Image: tinyPNG(t)},
		})
		gen := NewRemotePanelGenerator(srv.Client(), srv.URL, WithPollDelay(0))

		img, err := gen.GeneratePanel(ctx, testScene(), StyleManga)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if img.Bounds().Dx() != 2 {
			t.Errorf("デコード結果の幅 = %d, want 2", img.Bounds().Dx())
		}
		if *polls != 3 {
			t.Errorf("照会回数 = %d, want 3", *polls)
		}
	})

	t.Run("FAILは即座に失敗理由つきのエラーになる", func(t *testing.T) {
		// 定数ではなくワイヤ上の文字列そのものを返し、プロトコルの値を固定する
		srv, _ := fakeBackend(t, []statusResponse{
			{Status: "FAIL", Error: "NSFW filter"},
		})
		gen := NewRemotePanelGenerator(srv.Client(), srv.URL, WithPollDelay(0))

		_, err := gen.GeneratePanel(ctx, testScene(), StyleManga)
		if err == nil || !strings.Contains(err.Error(), "NSFW filter") {
			t.Errorf("失敗理由を含むエラーが返る想定です: %v", err)
		}
	})

	t.Run("上限までPENDINGならErrBackendTimeout", func(t *testing.T) {
		srv, polls := fakeBackend(t, []statusResponse{
			{Status: StatusPending},
		})
		gen := NewRemotePanelGenerator(srv.Client(), srv.URL,
			WithPollDelay(0), WithPollAttempts(4))

		_, err := gen.GeneratePanel(ctx, testScene(), StyleManga)
		if !errors.Is(err, ErrBackendTimeout) {
			t.Fatalf("ErrBackendTimeout が返る想定です: %v", err)
		}
		if *polls != 4 {
			t.Errorf("照会回数 = %d, want 4", *polls)
		}
	})

	t.Run("HTTPエラーはステータスコード付きで返る", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)
		gen := NewRemotePanelGenerator(srv.Client(), srv.URL, WithPollDelay(0))

		_, err := gen.GeneratePanel(ctx, testScene(), StyleManga)
		if err == nil || !strings.Contains(err.Error(), "503") {
			t.Errorf("HTTPステータスを含むエラーが返る想定です: %v", err)
		}
	})
}
