// Package protocol defines the wire dialect spoken between the nuri client
// and the nurid daemon. The transport is plain TCP carrying newline-terminated
// UTF-8 text lines; there is no framing and no structured serialization.
// The command tokens and server notices are a localized detail, not part of
// the algorithmic contract, so they live in a Dialect value that can be
// overridden through configuration.
package protocol

import (
	"fmt"
	"strings"
)

// Dialect holds every client-visible token and notice format.
// Formats are fmt verbs over the documented arguments; all notices are
// emitted with a trailing newline by the Format* helpers.
type Dialect struct {
	// Prompt is written to a new connection before the nickname is read.
	// It carries no trailing newline.
	Prompt string `mapstructure:"prompt" yaml:"prompt"`

	// QuitToken terminates a session when received as an exact line.
	QuitToken string `mapstructure:"quit_token" yaml:"quit_token"`

	// WhisperToken starts a private-message line: "<token> <target> <body>".
	WhisperToken string `mapstructure:"whisper_token" yaml:"whisper_token"`

	// ServerPrefix prefixes notices originated by the server itself.
	ServerPrefix string `mapstructure:"server_prefix" yaml:"server_prefix"`

	InvalidNickname string `mapstructure:"invalid_nickname" yaml:"invalid_nickname"` // no args
	Welcome         string `mapstructure:"welcome" yaml:"welcome"`                   // %s = nickname, %s = quit token
	Joined          string `mapstructure:"joined" yaml:"joined"`                     // %s = nickname
	Left            string `mapstructure:"left" yaml:"left"`                         // %s = nickname
	QuitAck         string `mapstructure:"quit_ack" yaml:"quit_ack"`                 // no args
	WhisperUsage    string `mapstructure:"whisper_usage" yaml:"whisper_usage"`       // %s = whisper token
	TargetNotFound  string `mapstructure:"target_not_found" yaml:"target_not_found"` // %s = target nickname
	Whisper         string `mapstructure:"whisper" yaml:"whisper"`                   // %s = sender, %s = body
	Chat            string `mapstructure:"chat" yaml:"chat"`                         // %s = sender, %s = text
}

// Default returns the stock Korean dialect. The strings must stay
// byte-for-byte stable; deployed clients match on them.
func Default() Dialect {
	return Dialect{
		Prompt:          "닉네임을 입력하세요: ",
		QuitToken:       "/종료",
		WhisperToken:    "/귓속말",
		ServerPrefix:    "서버> ",
		InvalidNickname: "유효한 닉네임이 아닙니다. 연결을 종료합니다.",
		Welcome:         "환영합니다, %s 님. %s 로 나가실 수 있습니다.",
		Joined:          "%s님이 입장하셨습니다.",
		Left:            "%s님이 나가셨습니다.",
		QuitAck:         "연결을 종료합니다.",
		WhisperUsage:    "귓속말 사용법: %s 받는사람닉네임 메시지",
		TargetNotFound:  "해당 닉네임을 찾을 수 없습니다: %s",
		Whisper:         "%s(귓속말)> %s",
		Chat:            "%s> %s",
	}
}

// notice renders a server-originated line: prefix + body + newline.
func (d Dialect) notice(format string, args ...interface{}) string {
	return d.ServerPrefix + fmt.Sprintf(format, args...) + "\n"
}

// FormatInvalidNickname is sent before closing a failed handshake.
func (d Dialect) FormatInvalidNickname() string {
	return d.notice(d.InvalidNickname)
}

// FormatWelcome is sent privately to a freshly registered session.
func (d Dialect) FormatWelcome(nickname string) string {
	return d.notice(d.Welcome, nickname, d.QuitToken)
}

// FormatJoined is broadcast when a session registers.
func (d Dialect) FormatJoined(nickname string) string {
	return fmt.Sprintf(d.Joined, nickname) + "\n"
}

// FormatLeft is broadcast to the remaining sessions on teardown.
func (d Dialect) FormatLeft(nickname string) string {
	return fmt.Sprintf(d.Left, nickname) + "\n"
}

// FormatQuitAck acknowledges the quit token before the connection closes.
func (d Dialect) FormatQuitAck() string {
	return d.notice(d.QuitAck)
}

// FormatWhisperUsage reports a malformed whisper line back to its author.
func (d Dialect) FormatWhisperUsage() string {
	return d.notice(d.WhisperUsage, d.WhisperToken)
}

// FormatTargetNotFound reports an unknown whisper target back to the sender.
func (d Dialect) FormatTargetNotFound(target string) string {
	return d.notice(d.TargetNotFound, target)
}

// FormatWhisper renders a private line as seen by the target.
func (d Dialect) FormatWhisper(sender, body string) string {
	return fmt.Sprintf(d.Whisper, sender, body) + "\n"
}

// FormatChat renders an ordinary chat line as relayed to every session.
func (d Dialect) FormatChat(sender, text string) string {
	return fmt.Sprintf(d.Chat, sender, text) + "\n"
}

// IsQuit reports whether the line is exactly the quit token.
func (d Dialect) IsQuit(line string) bool {
	return line == d.QuitToken
}

// IsWhisper reports whether the line starts a whisper command.
// The token must be followed by a space; the bare token alone is not a
// whisper and falls through to ordinary chat.
func (d Dialect) IsWhisper(line string) bool {
	return strings.HasPrefix(line, d.WhisperToken+" ")
}

// ParseWhisper splits a whisper line into target and body on the first two
// space boundaries. It reports ok=false when either part is empty after
// trimming, in which case the caller should answer with the usage notice.
func (d Dialect) ParseWhisper(line string) (target, body string, ok bool) {
	if !d.IsWhisper(line) {
		return "", "", false
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	target = strings.TrimSpace(parts[1])
	body = strings.TrimSpace(parts[2])
	if target == "" || body == "" {
		return "", "", false
	}
	return target, body, true
}
