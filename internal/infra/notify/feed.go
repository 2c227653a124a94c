package notify

import (
	"context"
	"sync"

	"storefront/internal/domain/model"
)

// Feed は直近 size 件の通知をリングで持つ。
// 描画側は Recent で取りに来る。
type Feed struct {
	mu    sync.RWMutex
	buf   []model.Notice
	next  int
	count int
}

func NewFeed(size int) *Feed {
	if size < 1 {
		size = 1
	}
	return &Feed{buf: make([]model.Notice, size)}
}

func (f *Feed) Notify(ctx context.Context, notice model.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buf[f.next] = notice
	f.next = (f.next + 1) % len(f.buf)
	if f.count < len(f.buf) {
		f.count++
	}
}

// 古い順
func (f *Feed) Recent() []model.Notice {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]model.Notice, 0, f.count)
	start := (f.next - f.count + len(f.buf)) % len(f.buf)
	for i := 0; i < f.count; i++ {
		out = append(out, f.buf[(start+i)%len(f.buf)])
	}
	return out
}
