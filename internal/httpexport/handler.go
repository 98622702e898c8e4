// Package httpexport はエクスポートAPIのHTTPハンドラーを提供する。
package httpexport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/exportman/internal/export"
	"github.com/hitoshi/exportman/internal/gate"
	"github.com/hitoshi/exportman/internal/metrics"
	"github.com/hitoshi/exportman/internal/middleware"
	"github.com/hitoshi/exportman/internal/model"
	"github.com/hitoshi/exportman/internal/token"
)

// SessionFinder はセッション参照のインターフェース。
// repository.ScrapeSessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.ScrapeSession, error)
}

// RecordLister はプロバイダーからの生レコード取得のインターフェース。
type RecordLister interface {
	ListRecords(ctx context.Context, datasetID string, limit int) ([]model.RawRecord, error)
}

// DatasetCleaner はエクスポート後のプロバイダー側データセット削除のインターフェース。
type DatasetCleaner interface {
	DeleteDataset(ctx context.Context, datasetID string) error
}

// TokenVerifier はケイパビリティトークン検証のインターフェース。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// PackFinder はパックカタログ参照のインターフェース。
type PackFinder interface {
	FindByID(ctx context.Context, id string) (*model.Pack, error)
}

// Normalizer は生レコードの正規化のインターフェース。
type Normalizer interface {
	Normalize(raw model.RawRecord) model.CanonicalItem
}

// EffectRunner は許可判定の遅延副作用実行のインターフェース。
type EffectRunner interface {
	Run(ctx context.Context, session *model.ScrapeSession, presentedToken string, effects []gate.Effect)
}

// CompletionNotifier はエクスポート完了Webhook送信のインターフェース。
type CompletionNotifier interface {
	SendCompleted(ctx context.Context, callbackURL, sessionID, format string, rowCount int) error
}

// ExportHandler はエクスポートダウンロードのHTTPハンドラー。
//
// 許可判定 → レコード取得 → 正規化 → レンダリング → 添付ファイル応答
// のパイプラインを調停する。許可後のいかなる失敗もクライアントには
// 伝播させず、デモデータに差し替えて200を返す。許可前の拒否のみが
// クライアントに見えるエラーになる。
type ExportHandler struct {
	sessions        SessionFinder
	records         RecordLister
	cleaner         DatasetCleaner
	verifier        TokenVerifier
	packs           PackFinder
	normalizer      Normalizer
	effects         EffectRunner
	notifier        CompletionNotifier
	metrics         metrics.MetricsCollector
	logger          *slog.Logger
	providerTimeout time.Duration
}

// NewExportHandler はExportHandlerを生成する。
func NewExportHandler(
	sessions SessionFinder,
	records RecordLister,
	cleaner DatasetCleaner,
	verifier TokenVerifier,
	packs PackFinder,
	normalizer Normalizer,
	effects EffectRunner,
	notifier CompletionNotifier,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	providerTimeout time.Duration,
) *ExportHandler {
	return &ExportHandler{
		sessions:        sessions,
		records:         records,
		cleaner:         cleaner,
		verifier:        verifier,
		packs:           packs,
		normalizer:      normalizer,
		effects:         effects,
		notifier:        notifier,
		metrics:         collector,
		logger:          logger,
		providerTimeout: providerTimeout,
	}
}

// statusForDenial は拒否理由コードをHTTPステータスコードに対応付ける。
func statusForDenial(code string) int {
	switch code {
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case model.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case model.ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case model.ErrCodeNotOwner:
		return http.StatusForbidden
	case model.ErrCodeExportTooEarly:
		return http.StatusTooEarly
	default:
		return http.StatusInternalServerError
	}
}

// Download はエクスポートファイルのダウンロードを処理する。
// GET /api/exports/{sessionID}?format={csv|xlsx}&token={capability|legacy}
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		h.writeDenial(ctx, w, model.NewMissingSessionIDError())
		return
	}

	format, ok := export.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		h.writeDenial(ctx, w, model.NewInvalidFormatError(r.URL.Query().Get("format")))
		return
	}

	session, err := h.sessions.FindByID(ctx, sessionID)
	if err != nil {
		h.logger.Error("セッションの取得に失敗しました",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(ctx, w)
		return
	}

	presentedToken := r.URL.Query().Get("token")
	hasValidSignedToken := false
	presentedLegacyToken := false
	if presentedToken != "" {
		if claims, err := h.verifier.Verify(presentedToken); err == nil {
			// トークンが紐付くセッションとの一致が必須
			hasValidSignedToken = claims.SessionID == sessionID
		} else if session != nil && session.DownloadToken != "" {
			presentedLegacyToken = presentedToken == session.DownloadToken
		}
	}

	requestingUserID, _ := middleware.UserIDFromContext(ctx)

	decision := gate.Decide(gate.Input{
		SessionID:            sessionID,
		Session:              session,
		HasValidSignedToken:  hasValidSignedToken,
		PresentedLegacyToken: presentedLegacyToken,
		RequestingUserID:     requestingUserID,
	})
	if !decision.Allowed {
		h.metrics.RecordExportDenied(decision.Reason.Code)
		h.writeDenial(ctx, w, decision.Reason)
		return
	}
	if decision.AutoSession != nil {
		session = decision.AutoSession
	}

	pack := h.resolvePack(ctx, session.PackID)

	// ここから先の失敗はすべてデモデータに差し替える。
	// 許可済みの呼び出し元に上流都合の5xxを返さない。
	items, usedDemo := h.produceItems(ctx, session, pack)
	items = export.Truncate(items, pack.RowLimit)

	start := time.Now()
	buf, err := export.Render(format, items)
	if err != nil {
		h.logger.Error("エクスポートのレンダリングに失敗しました",
			slog.String("session_id", sessionID),
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		h.metrics.RecordDemoFallback("render_error")
		items = export.Truncate(export.DemoItems(pack), pack.RowLimit)
		usedDemo = true
		buf, err = export.Render(format, items)
		if err != nil {
			middleware.WriteInternalServerError(ctx, w)
			return
		}
	}
	h.metrics.RecordRenderLatency(string(format), time.Since(start))
	h.metrics.RecordExportAllowed(string(format))

	// バッファ生成に成功した時点でのみ副作用を実行する。
	// 失敗したエクスポートがトライアルを消費してはならない。
	h.effects.Run(context.WithoutCancel(ctx), session, presentedToken, decision.Effects)

	// 応答送信と独立したファイアアンドフォーゲットの後処理
	h.scheduleCleanup(session, string(format), len(items), usedDemo)

	filename := SanitizeFilename(fmt.Sprintf("annonces-%s", sessionID), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", ContentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	// ダウンロードにはワンタイムトークンが絡むためキャッシュさせない
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

// resolvePack はセッションのパックを解決する。
// 不明なパックIDや参照失敗時はデフォルトパックにフェイルクローズする。
func (h *ExportHandler) resolvePack(ctx context.Context, packID string) *model.Pack {
	if packID == "" {
		return model.DefaultPack()
	}
	pack, err := h.packs.FindByID(ctx, packID)
	if err != nil {
		h.logger.Warn("パックの取得に失敗しました。デフォルトパックを使用します",
			slog.String("pack_id", packID),
			slog.String("error", err.Error()),
		)
		return model.DefaultPack()
	}
	if pack == nil {
		return model.DefaultPack()
	}
	return pack
}

// produceItems はセッションのデータセットから正規化済みレコードを生成する。
// データセット不在・取得失敗・空結果のいずれの場合もデモデータに
// フォールバックし、第2戻り値でtrueを返す。
func (h *ExportHandler) produceItems(ctx context.Context, session *model.ScrapeSession, pack *model.Pack) ([]model.CanonicalItem, bool) {
	if session.DatasetID == "" {
		h.metrics.RecordDemoFallback("no_dataset")
		return export.DemoItems(pack), true
	}

	fetchCtx, cancel := context.WithTimeout(ctx, h.providerTimeout)
	defer cancel()

	records, err := h.records.ListRecords(fetchCtx, session.DatasetID, pack.RowLimit)
	if err != nil {
		h.logger.Warn("レコードの取得に失敗しました。デモデータにフォールバックします",
			slog.String("session_id", session.ID),
			slog.String("dataset_id", session.DatasetID),
			slog.String("error", err.Error()),
		)
		h.metrics.RecordProviderFailure()
		h.metrics.RecordDemoFallback("provider_error")
		return export.DemoItems(pack), true
	}
	if len(records) == 0 {
		h.metrics.RecordDemoFallback("empty_dataset")
		return export.DemoItems(pack), true
	}

	items := make([]model.CanonicalItem, len(records))
	for i, record := range records {
		items[i] = h.normalizer.Normalize(record)
	}
	return items, false
}

// scheduleCleanup はプロバイダー側データセットの削除と完了Webhookを
// バックグラウンドで実行する。どちらもベストエフォートであり、
// 既にクライアントへ送信された応答には影響しない。
func (h *ExportHandler) scheduleCleanup(session *model.ScrapeSession, format string, rowCount int, usedDemo bool) {
	// デモ代替時は実データに触れていないため削除しない
	if !usedDemo && session.DatasetID != "" {
		datasetID := session.DatasetID
		sessionID := session.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.cleaner.DeleteDataset(ctx, datasetID); err != nil {
				h.logger.Warn("データセットの削除に失敗しました",
					slog.String("session_id", sessionID),
					slog.String("dataset_id", datasetID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	if session.CallbackURL != "" {
		callbackURL := session.CallbackURL
		sessionID := session.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			// 失敗はNotifier側でログ済み
			_ = h.notifier.SendCompleted(ctx, callbackURL, sessionID, format, rowCount)
		}()
	}
}

// writeDenial は拒否理由を統一エラーフォーマットで書き込む。
func (h *ExportHandler) writeDenial(ctx context.Context, w http.ResponseWriter, apiErr *model.APIError) {
	middleware.WriteErrorResponse(ctx, w, statusForDenial(apiErr.Code), apiErr)
}
