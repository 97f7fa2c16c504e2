package bot

import (
	"log/slog"
)

// SendMessageWithLevel forwards a message to every admin chat. Errors go out
// at once, lower levels through the digest when one is running.
func (t *TgBot) SendMessageWithLevel(msg string, level slog.Level) {
	if level < t.logLevel() {
		return
	}
	for _, id := range t.adminIds {
		if level < slog.LevelError && t.digest != nil {
			t.digest.Add(id, msg, level)
			continue
		}
		t.plainResponse(id, msg)
	}
}
