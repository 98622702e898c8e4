package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はエクスポートAPIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中サーバーの/healthzを叩いて終了する。
	// distrolessイメージにはシェルがないため、Dockerのヘルスチェックは
	// バイナリ自身のこのサブコマンドで行う。
	CommandHealthcheck Command = "healthcheck"
)

var commands = map[string]Command{
	"serve":       CommandServe,
	"migrate":     CommandMigrate,
	"healthcheck": CommandHealthcheck,
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外の場合はCommandServeにフォールバックする。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := commands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}
