// Package security はアウトバウンドHTTPのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// CallbackGuard は顧客指定のコールバックURLへ安全にWebhookを送るための
// SSRF防止インターフェース。エクスポート完了通知はユーザーが自由に
// 入力したURLへのPOSTであり、内部ネットワークへの到達を許してはならない。
type CallbackGuard interface {
	// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
	// safeurlがnet.DialerレベルでDNS解決後のIPアドレスを検証するため、
	// プライベートIP、ループバック、リンクローカル、メタデータIPへの
	// リクエストとDNS再バインディング攻撃がブロックされる。
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL はコールバックURL登録・送信前の静的な事前検証を行う。
	// スキーム、ホスト、IPアドレスを検証し、危険なURLにはエラーを返す。
	ValidateURL(rawURL string) error
}

// allowedSchemes はコールバックURLで許可されるスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedNetworks はブロック対象のネットワーク範囲。
// ValidateURLの静的チェックで使用する。DNS解決後の検証はsafeurl側が行う。
var blockedNetworks = mustParseCIDRs([]string{
	// プライベートIPアドレス (RFC 1918)
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// ループバック (RFC 1122)
	"127.0.0.0/8",
	// リンクローカル (RFC 3927) - クラウドメタデータIP (169.254.169.254) を含む
	"169.254.0.0/16",
	// カレントネットワーク
	"0.0.0.0/8",
	// IPv6ループバック / リンクローカル / ユニークローカル
	"::1/128",
	"fe80::/10",
	"fc00::/7",
})

func mustParseCIDRs(cidrs []string) []net.IPNet {
	networks := make([]net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		networks = append(networks, *network)
	}
	return networks
}

// callbackGuard はCallbackGuardの実装。
type callbackGuard struct{}

// NewCallbackGuard はCallbackGuardの新しいインスタンスを生成する。
func NewCallbackGuard() *callbackGuard {
	return &callbackGuard{}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlのデフォルト設定により以下がブロックされる:
//   - プライベートIPアドレス (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - ループバックアドレス (127.0.0.0/8, ::1)
//   - リンクローカルアドレス (169.254.0.0/16, fe80::/10)
//   - メタデータIPアドレス (169.254.169.254)
//
// 検証はnet.DialerのControlフックでDNS解決後に行われる。
func (g *callbackGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// ValidateURL はコールバックURLの静的な事前検証を行う。DNS解決は行わない。
// DNS再バインディング攻撃はNewSafeClientが生成するクライアント側の
// Dialer検証で防止される。
func (g *callbackGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// IPリテラルはブロック対象CIDRと照合する
	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames はIPリテラル以外でブロック対象のホスト名。
var blockedHostnames = []string{
	"localhost",
}

func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
