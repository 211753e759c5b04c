package hotcache

import (
	"time"

	"go.uber.org/zap"
)

// config holds everything an Option can tune, for both direct TieredCache
// construction and Registry.Build. Functional options are the teacher's own
// configuration idiom (see the teacher's options.go), generalized here
// across a generic value type.
type config[T any] struct {
	minHardSize int
	maxHardSize int // 0 means unbounded, the spec's base behavior
	expiry      Expiry
	sizeOf      func(*T) int
	logger      *zap.Logger
	scheduler   Scheduler
	metrics     *PrometheusRecorder
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		minHardSize: 64,
		expiry:      ExpireAfter(5 * time.Minute),
		logger:      zap.NewNop(),
		scheduler:   timerScheduler{},
	}
}

// Option configures a TieredCache at construction time, via either New or
// Registry.Build.
type Option[T any] func(*config[T])

// WithMinHardSize sets the hard tier's initial capacity H0. The weak tier
// starts at 8*H0, per the spec. Defaults to 64.
func WithMinHardSize[T any](n int) Option[T] {
	return func(c *config[T]) { c.minHardSize = n }
}

// WithMaxHardSize caps how large the hard tier's 1.5x growth is allowed to
// go, resolving the spec's "a cap on maximum hard size is a reasonable
// hardening" open question. 0 (the default) leaves it uncapped, matching
// the base spec exactly.
func WithMaxHardSize[T any](n int) Option[T] {
	return func(c *config[T]) { c.maxHardSize = n }
}

// WithExpiry sets the refresh-trigger window. Defaults to 5 minutes,
// matching the spec's Registry default; pass NeverExpire() to disable it.
func WithExpiry[T any](e Expiry) Option[T] {
	return func(c *config[T]) { c.expiry = e }
}

// WithSizeHook sets the per-value size unit hook. Defaults to "always 1".
func WithSizeHook[T any](f func(*T) int) Option[T] {
	return func(c *config[T]) { c.sizeOf = f }
}

// WithLogger sets the logger used for background-task failures (a failed
// OnNeedRefresh or CanValueBeTrimmed hook). Defaults to a no-op logger.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *config[T]) { c.logger = l }
}

// WithScheduler overrides the default timer-based Scheduler, letting a
// caller route trim tasks onto their own bus.
func WithScheduler[T any](s Scheduler) Option[T] {
	return func(c *config[T]) { c.scheduler = s }
}

// WithPrometheus attaches a PrometheusRecorder so the cache's counters are
// also exported as Prometheus metrics.
func WithPrometheus[T any](m *PrometheusRecorder) Option[T] {
	return func(c *config[T]) { c.metrics = m }
}
