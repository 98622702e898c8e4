// Package gate はエクスポート可否の判定手続きを提供する。
//
// Decideは明示的な入力のみに依存する純粋な判定関数であり、
// セッションの取得とトークン署名の検証は呼び出し側が済ませてから渡す。
// 判定に伴うセッションの変更（レガシートークンの消去、トライアル消費）は
// 遅延エフェクトのリストとして返し、実行はEffectRunnerが担う。
// エクスポートが実際に成功した後にのみエフェクトを実行することで、
// 失敗したエクスポートがトライアルを消費することを防ぐ。
package gate

import (
	"github.com/hitoshi/exportman/internal/model"
)

// Effect は許可後に実行されるべき遅延副作用を表す。
type Effect string

const (
	// EffectClearLegacyToken はレガシー単回利用トークンの消去。
	EffectClearLegacyToken Effect = "clear_legacy_token"
	// EffectConsumeTrial はトライアルフラグの消費。
	// エクスポートバッファの生成成功後にのみ実行される。
	EffectConsumeTrial Effect = "consume_trial"
)

// Input は判定に必要な入力の集合。
type Input struct {
	// SessionID はリクエストされたセッションID。
	SessionID string
	// Session は取得済みのセッション。存在しない場合はnil。
	Session *model.ScrapeSession
	// HasValidSignedToken は署名付きケイパビリティトークンが暗号的に検証され、
	// かつ埋め込まれたセッションIDがSessionIDと一致する場合のみtrue。
	HasValidSignedToken bool
	// PresentedLegacyToken はリクエストのトークンがセッションの
	// レガシーダウンロードトークンと一致する場合にtrue。
	PresentedLegacyToken bool
	// RequestingUserID は認証済み呼び出し元のユーザーID。匿名なら空文字列。
	RequestingUserID string
}

// Decision は判定結果を表す。
type Decision struct {
	// Allowed はエクスポートが許可されたかどうか。
	Allowed bool
	// Reason は拒否理由。許可時はnil。
	Reason *model.APIError
	// Effects は許可後に実行されるべき遅延副作用。
	Effects []Effect
	// AutoSession は一時セッションIDに対してオンザフライで生成した
	// プレースホルダーセッション。通常はnil。
	AutoSession *model.ScrapeSession
}

// deny は拒否判定を生成する。
func deny(reason *model.APIError) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide はエクスポートの許可判定を行う。最初に一致した規則が結果を決める。
//
// 規則の順序は意図的で、先に失敗する条件ほど要求が強く、クライアントへの
// 対処方法がより具体的になる（支払う → 正しいユーザーでログインする → 待つ）。
// 支払い確認前の呼び出し元に所有者情報を漏らさない効果もある。
func Decide(in Input) Decision {
	isTemp := model.IsTemporaryID(in.SessionID)

	// 1-2. セッション不在: 一時IDなら許可用プレースホルダーを生成、それ以外は未検出
	if in.Session == nil {
		if !isTemp {
			return deny(model.NewSessionNotFoundError(in.SessionID))
		}
		return Decision{
			Allowed:     true,
			AutoSession: model.NewTemporarySession(in.SessionID),
		}
	}

	session := in.Session
	tokenOK := in.HasValidSignedToken || in.PresentedLegacyToken

	// 3. 支払いシグナル: 支払い済み / 一時 / 有効トークン / トライアルのいずれか
	isPaid := session.IsPaid || isTemp || tokenOK || session.IsTrial
	if !isPaid {
		return deny(model.NewPaymentRequiredError())
	}

	// 4. トークンも一時でもない場合は所有者の証明が必要
	if !tokenOK && !isTemp {
		isOwner := in.RequestingUserID != "" && in.RequestingUserID == session.OwnerUserID
		if !isOwner {
			return deny(model.NewNotOwnerError())
		}
	}

	// 5. 収集ジョブの完了待ち。一時セッションは常に完了扱い。
	if !isTemp && session.Status != model.SessionStatusFinished {
		return deny(model.NewExportTooEarlyError(session.Status))
	}

	// 6. 許可。遅延副作用を添付する。
	var effects []Effect
	if in.PresentedLegacyToken && session.DownloadToken != "" {
		effects = append(effects, EffectClearLegacyToken)
	}
	// トライアルで通過した場合のみ消費する（支払い済み等なら温存）
	if !session.IsPaid && !isTemp && !tokenOK && session.IsTrial {
		effects = append(effects, EffectConsumeTrial)
	}

	return Decision{Allowed: true, Effects: effects}
}
