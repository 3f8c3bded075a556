package engine

// Option configures an Engine. Use With* functions to create Options.
type Option func(*engineOptions)

// engineOptions holds all optional configuration.
type engineOptions struct {
	clock        Clock
	logger       *DebugLogger
	eventBuffer  int
	strictSkills bool
}

// WithClock sets the clock used for overdue evaluation and event timestamps.
func WithClock(c Clock) Option {
	return func(o *engineOptions) { o.clock = c }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithEvents enables event emission with the given buffer size.
func WithEvents(buffer int) Option {
	return func(o *engineOptions) { o.eventBuffer = buffer }
}

// WithStrictSkills makes required skills a hard eligibility filter instead
// of an advisory ranking signal.
func WithStrictSkills(strict bool) Option {
	return func(o *engineOptions) { o.strictSkills = strict }
}
