package bot

import (
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type sent struct {
	mu    sync.Mutex
	chats map[int64][]string
}

func (s *sent) send(chatId int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chats == nil {
		s.chats = map[int64][]string{}
	}
	s.chats[chatId] = append(s.chats[chatId], text)
}

func TestDigestFlush(t *testing.T) {
	out := &sent{}
	d := NewDigestBuffer(out.send, time.Hour)

	d.Add(1, "first", slog.LevelInfo)
	d.Add(1, "second", slog.LevelWarn)
	d.Add(2, "other", slog.LevelDebug)
	if d.Len(1) != 2 {
		t.Fatalf("Len(1) = %d, want 2", d.Len(1))
	}

	d.Flush()

	if len(out.chats[1]) != 1 || len(out.chats[2]) != 1 {
		t.Fatalf("sent = %v", out.chats)
	}
	msg := out.chats[1][0]
	if !strings.Contains(msg, "\\(2 messages\\)") {
		t.Fatalf("digest header missing: %q", msg)
	}
	if strings.Index(msg, "WARN") > strings.Index(msg, "INFO") {
		t.Fatalf("higher levels must come first: %q", msg)
	}
	if d.Len(1) != 0 {
		t.Fatalf("buffer not emptied")
	}

	d.Flush()
	if len(out.chats[1]) != 1 {
		t.Fatalf("empty flush sent messages: %v", out.chats)
	}
}

func TestDigestStopFlushes(t *testing.T) {
	out := &sent{}
	d := NewDigestBuffer(out.send, time.Hour)
	d.StartTicker()
	d.Add(7, "pending", slog.LevelInfo)

	d.Stop()
	d.Stop()

	out.mu.Lock()
	defer out.mu.Unlock()
	if len(out.chats[7]) != 1 || !strings.Contains(out.chats[7][0], "pending") {
		t.Fatalf("sent = %v", out.chats)
	}
}

func TestBucket(t *testing.T) {
	cases := map[slog.Level]slog.Level{
		slog.LevelDebug - 2: slog.LevelDebug,
		slog.LevelInfo + 1:  slog.LevelInfo,
		slog.LevelWarn + 2:  slog.LevelWarn,
		slog.LevelError + 4: slog.LevelError,
	}
	for in, want := range cases {
		if got := bucket(in); got != want {
			t.Fatalf("bucket(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestDigestStopWithoutTicker(t *testing.T) {
	out := &sent{}
	d := NewDigestBuffer(out.send, time.Hour)
	d.Add(3, "queued before start", slog.LevelWarn)

	d.Stop()
	d.StartTicker()

	out.mu.Lock()
	defer out.mu.Unlock()
	if len(out.chats[3]) != 1 {
		t.Fatalf("sent = %v", out.chats)
	}
}
