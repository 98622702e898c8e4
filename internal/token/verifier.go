// Package token は署名付きケイパビリティトークンの検証を提供する。
//
// ケイパビリティトークンは特定のセッションIDに紐付く短命のHS256署名付き
// クレデンシャルで、所有者証明の代替として使用される。ステートレスであり、
// レガシーの単回利用ダウンロードトークンと異なり永続化を伴わない。
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はケイパビリティトークンに埋め込まれるクレーム。
type Claims struct {
	// SessionID はトークンが紐付くセッションID。
	// 呼び出し側がリクエストされたセッションIDとの完全一致を検証すること。
	SessionID string `json:"sid"`
	// UserID はトークン発行時のユーザーID。匿名発行の場合は空。
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Verifier はケイパビリティトークンの検証器。
type Verifier struct {
	secret []byte
}

// NewVerifier はVerifierを生成する。
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 署名アルゴリズムはHS256に固定する。検証に失敗した場合はエラーを返す。
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify capability token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid capability token")
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("capability token has no session id")
	}

	return claims, nil
}
