package httpexport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/exportman/internal/metrics"
	"github.com/hitoshi/exportman/internal/middleware"
	"github.com/hitoshi/exportman/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserSessionFinder  repository.UserSessionFinder
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter
	Logger             *slog.Logger

	// エクスポート
	ExportHandler *ExportHandler

	// メトリクス公開
	Gatherer prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Logging → Identity → RateLimit
//
// /healthzと/metricsはCORS・レート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 運用エンドポイント ---

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- エクスポートAPI ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		r.Use(middleware.NewIdentityMiddleware(deps.UserSessionFinder, deps.Logger))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/api/exports/{sessionID}", deps.ExportHandler.Download)
	})

	return r
}
