package artist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// ErrBackendTimeout は、ポーリングの上限内に画像生成が完了しなかった
// ことを表します。呼び出し側は代替画像で劣化させます。
var ErrBackendTimeout = errors.New("artist: 画像バックエンドの完了待ちがタイムアウトしました")

// ジョブの状態値です。バックエンドのステータス応答と一致させています。
const (
	StatusPending = "PENDING"
	StatusDone    = "DONE"
	StatusFailed  = "FAIL"
)

const (
	defaultPollAttempts = 30
	defaultPollDelay    = 2 * time.Second
)

// RemotePanelGenerator は、非同期ジョブ方式の画像バックエンドに対する
// PanelGenerator の実体です。ジョブを投入し、完了まで一定間隔で状態を
// 照会します。
type RemotePanelGenerator struct {
	httpClient *http.Client
	baseURL    string
	attempts   int
	delay      time.Duration
}

// RemoteOption は RemotePanelGenerator の挙動を調整します。
type RemoteOption func(*RemotePanelGenerator)

// WithPollAttempts は状態照会の上限回数を変更します。
func WithPollAttempts(n int) RemoteOption {
	return func(r *RemotePanelGenerator) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithPollDelay は照会間隔を変更します。テストでは 0 を指定します。
func WithPollDelay(d time.Duration) RemoteOption {
	return func(r *RemotePanelGenerator) {
		r.delay = d
	}
}

// NewRemotePanelGenerator は新しい RemotePanelGenerator を生成します。
func NewRemotePanelGenerator(httpClient *http.Client, baseURL string, opts ...RemoteOption) *RemotePanelGenerator {
	r := &RemotePanelGenerator{
		httpClient: httpClient,
		baseURL:    baseURL,
		attempts:   defaultPollAttempts,
		delay:      defaultPollDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type submitRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

type statusResponse struct {
	Status string `json:"status"`
	Image  []byte `json:"image,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GeneratePanel は PanelGenerator を実装します。ジョブ投入後、DONE に
// なるまで上限回数だけ照会し、上限を超えたら ErrBackendTimeout を返します。
func (r *RemotePanelGenerator) GeneratePanel(ctx context.Context, scene domain.Scene, style string) (image.Image, error) {
	taskID, err := r.submit(ctx, scene, style)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= r.attempts; attempt++ {
		status, err := r.poll(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case StatusDone:
			img, _, err := image.Decode(bytes.NewReader(status.Image))
			if err != nil {
				return nil, fmt.Errorf("バックエンド応答のデコードに失敗したのだ: %w", err)
			}
			return img, nil
		case StatusFailed:
			return nil, fmt.Errorf("バックエンドがジョブを失敗させました: %s", status.Error)
		case StatusPending:
			// 継続して待つのだ
		default:
			return nil, fmt.Errorf("不明なジョブ状態です: %q", status.Status)
		}

		if attempt < r.attempts {
			timer := time.NewTimer(r.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return nil, fmt.Errorf("task %s: %w", taskID, ErrBackendTimeout)
}

func (r *RemotePanelGenerator) submit(ctx context.Context, scene domain.Scene, style string) (string, error) {
	body, err := json.Marshal(submitRequest{
		Prompt:         BuildPanelPrompt(scene.ImagePrompt, StyleKeywords(style)),
		NegativePrompt: NegativePanelPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("ジョブ投入リクエストの構築に失敗したのだ: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/panels", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ジョブ投入リクエストの構築に失敗したのだ: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp submitResponse
	if err := r.doJSON(req, &resp); err != nil {
		return "", fmt.Errorf("ジョブの投入に失敗したのだ: %w", err)
	}
	if resp.TaskID == "" {
		return "", errors.New("artist: バックエンドが task_id を返しませんでした")
	}
	return resp.TaskID, nil
}

func (r *RemotePanelGenerator) poll(ctx context.Context, taskID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/panels/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("状態照会リクエストの構築に失敗したのだ: %w", err)
	}

	var resp statusResponse
	if err := r.doJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("ジョブ状態の照会に失敗したのだ: %w", err)
	}
	return &resp, nil
}

func (r *RemotePanelGenerator) doJSON(req *http.Request, out any) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("予期しないHTTPステータス %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
