package bot

import (
	"testing"

	"winnerbot/internal/config"
	"winnerbot/internal/logger"
	"winnerbot/internal/store/stubs"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the slice of tele.Context the handlers touch.
// Calling anything else panics on the embedded nil interface, which is
// exactly what a test should do.
type fakeContext struct {
	tele.Context

	sender *tele.User
	chat   *tele.Chat
	text   string
	args   []string

	sent []string
	kv   map[string]interface{}
}

func (f *fakeContext) Sender() *tele.User { return f.sender }

func (f *fakeContext) Chat() *tele.Chat {
	if f.chat != nil {
		return f.chat
	}
	if f.sender != nil {
		return &tele.Chat{ID: f.sender.ID, Type: tele.ChatPrivate}
	}
	return nil
}

func (f *fakeContext) Text() string { return f.text }

func (f *fakeContext) Args() []string { return f.args }

func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeContext) Get(key string) interface{} { return f.kv[key] }

func (f *fakeContext) Set(key string, val interface{}) {
	if f.kv == nil {
		f.kv = make(map[string]interface{})
	}
	f.kv[key] = val
}

func (f *fakeContext) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func newTestApp(t *testing.T) (*App, *stubs.Memory) {
	t.Helper()
	_ = logger.Init(logger.Options{Level: "error", Format: "text"})

	cfg := &config.Config{}
	cfg.Telegram.AdminIDs = []int64{1}
	cfg.Bot.StateTTLMinutes = 30

	mem := stubs.NewMemory()
	return NewApp(cfg, mem.Bundle()), mem
}

func adminContext() *fakeContext {
	return &fakeContext{sender: &tele.User{ID: 1, Username: "operator"}}
}
