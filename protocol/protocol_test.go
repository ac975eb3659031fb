package protocol

import "testing"

func TestParseWhisper(test *testing.T) {
	d := Default()
	cases := []struct {
		line         string
		target, body string
		ok           bool
	}{
		{"/귓속말 bob secret", "bob", "secret", true},
		{"/귓속말 bob secret with spaces", "bob", "secret with spaces", true},
		{"/귓속말 bob  padded body ", "bob", "padded body", true},
		{"/귓속말 bob", "", "", false},
		{"/귓속말 bob ", "", "", false},
		{"/귓속말  ", "", "", false},
		{"/귓속말", "", "", false},
		{"hello room", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		target, body, ok := d.ParseWhisper(c.line)
		if target != c.target || body != c.body || ok != c.ok {
			test.Errorf("ParseWhisper(%q) = %q, %q, %v; expected %q, %q, %v",
				c.line, target, body, ok, c.target, c.body, c.ok)
		}
	}
}

func TestClassification(test *testing.T) {
	d := Default()
	if !d.IsQuit("/종료") {
		test.Error("exact quit token not recognized")
	}
	if d.IsQuit("/종료 now") {
		test.Error("quit token with trailing text must not be a quit")
	}
	if !d.IsWhisper("/귓속말 bob hi") {
		test.Error("whisper line not recognized")
	}
	if d.IsWhisper("/귓속말") {
		test.Error("bare whisper token must not be a whisper")
	}
}

func TestFormats(test *testing.T) {
	d := Default()
	cases := []struct {
		name     string
		actual   string
		expected string
	}{
		{"chat", d.FormatChat("bob", "hello room"), "bob> hello room\n"},
		{"whisper", d.FormatWhisper("bob", "secret"), "bob(귓속말)> secret\n"},
		{"joined", d.FormatJoined("bob"), "bob님이 입장하셨습니다.\n"},
		{"left", d.FormatLeft("bob"), "bob님이 나가셨습니다.\n"},
		{"not found", d.FormatTargetNotFound("carol"), "서버> 해당 닉네임을 찾을 수 없습니다: carol\n"},
		{"quit ack", d.FormatQuitAck(), "서버> 연결을 종료합니다.\n"},
		{"welcome", d.FormatWelcome("bob"), "서버> 환영합니다, bob 님. /종료 로 나가실 수 있습니다.\n"},
		{"usage", d.FormatWhisperUsage(), "서버> 귓속말 사용법: /귓속말 받는사람닉네임 메시지\n"},
	}
	for _, c := range cases {
		if c.actual != c.expected {
			test.Errorf("%s: expected %q, actual %q", c.name, c.expected, c.actual)
		}
	}
}
