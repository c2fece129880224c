package polling

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Query 每次輪詢要執行的完整讀取。
type Query[T any] func(ctx context.Context) (T, error)

// Stats 輪詢計數。
type Stats struct {
	Ticks    int64 // 包含啟動時的第一次
	Polls    int64
	Skipped  int64
	Failures int64
	Dropped  int64 // stop 之後才回來而被丟棄的結果
}

// Poller 定期執行 query 並把成功結果推給訂閱者。
// 同一時間最多一個請求在途；上一輪未完成時的 tick 直接略過，不排隊。
// 失敗只記錄不推送，訂閱者看到的仍是上一次成功的值。
type Poller[T any] struct {
	name     string
	query    Query[T]
	interval time.Duration
	metrics  *Metrics

	inFlight atomic.Bool
	ticks    atomic.Int64
	polls    atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64
	dropped  atomic.Int64

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	latest  T
	hasLast bool
	subs    map[int]chan T
	nextSub int
}

// NewPoller 建立輪詢器；interval <= 0 時使用 10 秒。
func NewPoller[T any](name string, query Query[T], interval time.Duration, metrics *Metrics) *Poller[T] {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller[T]{
		name:     name,
		query:    query,
		interval: interval,
		metrics:  metrics,
		done:     make(chan struct{}),
		subs:     make(map[int]chan T),
	}
}

// Subscribe 回傳接收結果的 channel 與取消訂閱函式。
// channel 容量為 1，讀得慢的訂閱者只會拿到最新值。Stop 之後 channel 會被關閉。
func (p *Poller[T]) Subscribe() (<-chan T, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan T, 1)
	if p.stopped {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	if p.hasLast {
		ch <- p.latest
	}
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
}

// Latest 回傳最後一次成功的結果。
func (p *Poller[T]) Latest() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLast
}

// Start 啟動迴圈，立即輪詢一次。ctx 結束時等同 Stop。重複呼叫無效。
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	log.Printf("[Poller] %s starting with interval: %v", p.name, p.interval)
	go p.loop(runCtx)
}

// Stop 停止輪詢並關閉所有訂閱 channel；可在任何時間、重複呼叫。
// 回傳後不會再有新的輪詢，在途請求的結果也不會送出。
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	if !p.started {
		close(p.done)
	}
	for id, ch := range p.subs {
		close(ch)
		delete(p.subs, id)
	}
	p.mu.Unlock()
	log.Printf("[Poller] %s stopped", p.name)
}

// Done 迴圈結束後關閉；未 Start 就 Stop 時立即關閉。
func (p *Poller[T]) Done() <-chan struct{} {
	return p.done
}

// Stats 回傳目前計數。
func (p *Poller[T]) Stats() Stats {
	return Stats{
		Ticks:    p.ticks.Load(),
		Polls:    p.polls.Load(),
		Skipped:  p.skipped.Load(),
		Failures: p.failures.Load(),
		Dropped:  p.dropped.Load(),
	}
}

func (p *Poller[T]) loop(ctx context.Context) {
	defer close(p.done)
	defer p.Stop()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// tick 在新的 goroutine 執行查詢，讓慢查詢不會擋住 ticker；在途時略過。
func (p *Poller[T]) tick(ctx context.Context) {
	p.ticks.Add(1)
	p.metrics.tick(p.name)
	if ctx.Err() != nil {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.metrics.skip(p.name)
		return
	}
	go func() {
		defer p.inFlight.Store(false)
		p.pollOnce(ctx)
	}()
}

func (p *Poller[T]) pollOnce(ctx context.Context) {
	p.polls.Add(1)
	val, err := p.query(ctx)
	if err != nil {
		if ctx.Err() != nil {
			p.dropped.Add(1)
			return
		}
		p.failures.Add(1)
		p.metrics.failure(p.name)
		log.Printf("[Poller] %s poll failed, keeping last value: %v", p.name, err)
		return
	}
	p.publish(ctx, val)
}

// publish 在 ctx 已結束或已 Stop 時丟棄結果。
func (p *Poller[T]) publish(ctx context.Context, val T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || ctx.Err() != nil {
		p.dropped.Add(1)
		return
	}
	p.latest = val
	p.hasLast = true
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- val
	}
}
