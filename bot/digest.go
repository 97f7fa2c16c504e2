package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const maxTelegramMessageLen = 4096

type DigestEntry struct {
	Message   string
	Level     slog.Level
	Timestamp time.Time
}

// DigestBuffer collects messages per chat and sends them in one batch per interval.
type DigestBuffer struct {
	mu       sync.Mutex
	entries  map[int64][]DigestEntry
	interval time.Duration
	send     func(chatId int64, text string)
	stopCh   chan struct{}
	done     chan struct{}
	start    sync.Once
	stop     sync.Once
	started  bool
	stopped  bool
}

func NewDigestBuffer(send func(chatId int64, text string), interval time.Duration) *DigestBuffer {
	return &DigestBuffer{
		entries:  make(map[int64][]DigestEntry),
		interval: interval,
		send:     send,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *DigestBuffer) Add(chatId int64, msg string, level slog.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[chatId] = append(d.entries[chatId], DigestEntry{
		Message:   msg,
		Level:     level,
		Timestamp: time.Now(),
	})
}

// Len returns the number of buffered messages of a chat.
func (d *DigestBuffer) Len(chatId int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries[chatId])
}

func (d *DigestBuffer) StartTicker() {
	d.start.Do(d.run)
}

func (d *DigestBuffer) run() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.started = true
	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.Flush()
			case <-d.stopCh:
				d.Flush() // final flush
				return
			}
		}
	}()
}

func (d *DigestBuffer) Flush() {
	d.mu.Lock()
	snapshot := d.entries
	d.entries = make(map[int64][]DigestEntry)
	d.mu.Unlock()

	for chatId, entries := range snapshot {
		if len(entries) == 0 {
			continue
		}
		for _, part := range splitMessage(formatDigest(entries), maxTelegramMessageLen) {
			d.send(chatId, part)
		}
	}
}

// Stop ends the ticker and flushes what is left.
func (d *DigestBuffer) Stop() {
	d.stop.Do(func() {
		d.mu.Lock()
		started := d.started
		d.stopped = true
		d.mu.Unlock()
		if !started {
			d.Flush()
			return
		}
		close(d.stopCh)
		<-d.done
	})
}

// formatDigest groups entries by level, highest first. Messages are already
// MarkdownV2 formatted by the log handler.
func formatDigest(entries []DigestEntry) string {
	grouped := make(map[slog.Level][]DigestEntry)
	for _, e := range entries {
		grouped[bucket(e.Level)] = append(grouped[bucket(e.Level)], e)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Digest* \\(%d messages\\)\n\n", len(entries)))

	for _, level := range []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug} {
		levelEntries := grouped[level]
		if len(levelEntries) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("*%s* \\(%d\\):\n", level.String(), len(levelEntries)))
		for _, e := range levelEntries {
			sb.WriteString(fmt.Sprintf("`%s` %s\n", e.Timestamp.Format("15:04"), e.Message))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func bucket(level slog.Level) slog.Level {
	switch {
	case level >= slog.LevelError:
		return slog.LevelError
	case level >= slog.LevelWarn:
		return slog.LevelWarn
	case level >= slog.LevelInfo:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
