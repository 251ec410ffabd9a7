package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/nutrikit/core"
)

const defaultBufferSize = 1024

// PromSink 把反馈事件异步转成 Prometheus 指标。
//
// 事件先进缓冲通道，由单个 worker 消费并累加指标；
// 缓冲满时直接丢弃事件并累加丢弃计数，绝不阻塞排序主链路。
type PromSink struct {
	ch   chan Event
	done chan struct{}
	log  zerolog.Logger

	// mu 保护 closed 与入口通道的关闭：
	// enqueue 持读锁发送，Close 持写锁关闭，已关闭后的事件直接丢弃。
	mu     sync.RWMutex
	closed bool

	eventsTotal  *prometheus.CounterVec
	droppedTotal prometheus.Counter
	positionHist *prometheus.HistogramVec
	scoreHist    prometheus.Histogram
}

// PromSinkOption 配置 PromSink。
type PromSinkOption func(*PromSink)

// WithPromLogger 注入日志。
func WithPromLogger(log zerolog.Logger) PromSinkOption {
	return func(s *PromSink) { s.log = log }
}

// WithBufferSize 覆盖事件缓冲大小。
func WithBufferSize(n int) PromSinkOption {
	return func(s *PromSink) {
		if n > 0 {
			s.ch = make(chan Event, n)
		}
	}
}

// NewPromSink 创建并启动 PromSink，指标注册到 reg（nil 时用默认 Registerer）。
func NewPromSink(reg prometheus.Registerer, opts ...PromSinkOption) *PromSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		ch:   make(chan Event, defaultBufferSize),
		done: make(chan struct{}),
		log:  zerolog.Nop(),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrikit_feedback_events_total",
			Help: "Total feedback events by type and goal",
		}, []string{"type", "goal"}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrikit_feedback_dropped_total",
			Help: "Feedback events dropped due to full buffer",
		}),
		positionHist: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutrikit_feedback_position",
			Help:    "1-based ranking position of feedback events",
			Buckets: []float64{1, 3, 5, 10, 20, 50, 100},
		}, []string{"type"}),
		scoreHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutrikit_shown_score",
			Help:    "Ranking score of shown items",
			Buckets: prometheus.DefBuckets,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	reg.MustRegister(s.eventsTotal, s.droppedTotal, s.positionHist, s.scoreHist)
	go s.loop()
	return s
}

// Handler 返回 /metrics 的 HTTP handler（默认 Registry 时使用）。
func Handler() http.Handler { return promhttp.Handler() }

func (s *PromSink) loop() {
	defer close(s.done)
	for ev := range s.ch {
		s.eventsTotal.WithLabelValues(string(ev.Type), ev.Goal).Inc()
		if ev.Position > 0 {
			s.positionHist.WithLabelValues(string(ev.Type)).Observe(float64(ev.Position))
		}
		if ev.Type == EventTypeShown {
			s.scoreHist.Observe(ev.Score)
		}
	}
}

// enqueue 非阻塞入队；缓冲满或已关闭时丢弃并记录。
func (s *PromSink) enqueue(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.droppedTotal.Inc()
		return
	}
	select {
	case s.ch <- ev:
	default:
		s.droppedTotal.Inc()
		s.log.Warn().Str("type", string(ev.Type)).Int64("item_id", ev.ItemID).
			Msg("feedback buffer full, event dropped")
	}
}

// RecordShown 记录一批曝光。len(positions) 与 items 不齐时按 1-based 下标兜底。
func (s *PromSink) RecordShown(ctx context.Context, rctx *core.RecommendContext, items []*core.Item, positions []int) {
	for i, it := range items {
		if it == nil {
			continue
		}
		pos := i + 1
		if i < len(positions) {
			pos = positions[i]
		}
		s.enqueue(newEvent(rctx, EventTypeShown, it.ID(), pos, it.Score))
	}
}

func (s *PromSink) RecordClick(ctx context.Context, rctx *core.RecommendContext, itemID int64, position int) {
	s.enqueue(newEvent(rctx, EventTypeClick, itemID, position, 0))
}

func (s *PromSink) RecordConsumed(ctx context.Context, rctx *core.RecommendContext, itemID int64) {
	s.enqueue(newEvent(rctx, EventTypeConsumed, itemID, 0, 0))
}

// Close 关闭入口通道并等待 worker 把缓冲消费完。
// Close 之后（或与 Close 并发）的 Record* 调用安全：事件计入丢弃，不会 panic。
func (s *PromSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}
