package gate

import (
	"context"
	"log/slog"

	"github.com/hitoshi/exportman/internal/model"
	"github.com/hitoshi/exportman/internal/repository"
)

// EffectRunner は判定が返した遅延副作用を実行する。
// 実行はベストエフォートであり、永続化の失敗はログに記録して握りつぶす。
// 既に許可されたダウンロードは副作用の失敗では妨げられない。
type EffectRunner struct {
	sessions repository.ScrapeSessionRepository
	logger   *slog.Logger
}

// NewEffectRunner はEffectRunnerを生成する。
func NewEffectRunner(sessions repository.ScrapeSessionRepository, logger *slog.Logger) *EffectRunner {
	return &EffectRunner{sessions: sessions, logger: logger}
}

// Run はエフェクトを順に実行する。
// presentedTokenはレガシートークン消去の比較対象として使用する。
// エクスポートバッファの生成成功後に呼び出すこと。
func (r *EffectRunner) Run(ctx context.Context, session *model.ScrapeSession, presentedToken string, effects []Effect) {
	for _, effect := range effects {
		switch effect {
		case EffectClearLegacyToken:
			cleared, err := r.sessions.CompareAndClearToken(ctx, session.ID, presentedToken)
			if err != nil {
				r.logger.Error("レガシートークンの消去に失敗しました",
					slog.String("session_id", session.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if !cleared {
				// 並行リクエストが先に消去した場合。原子的消去により二重消費はない。
				r.logger.Warn("レガシートークンは既に消去されています",
					slog.String("session_id", session.ID),
				)
			}
		case EffectConsumeTrial:
			if err := r.sessions.ConsumeTrial(ctx, session.ID); err != nil {
				r.logger.Error("トライアルフラグの消費に失敗しました",
					slog.String("session_id", session.ID),
					slog.String("error", err.Error()),
				)
			}
		default:
			r.logger.Warn("未知のエフェクトをスキップします",
				slog.String("effect", string(effect)),
			)
		}
	}
}
