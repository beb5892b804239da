package dice

import "go.uber.org/zap"

// loggedSource wraps a Source and logs every draw at debug level. Useful when
// diagnosing a surprising simulation result: wrap the seeded source and rerun
// with the same seed.
type loggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource returns a Source that delegates to src and logs each draw.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) Source {
	if src == nil {
		panic("dice: NewLoggedSource called with nil src")
	}
	if logger == nil {
		panic("dice: NewLoggedSource called with nil logger")
	}
	return &loggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and result.
//
// Precondition: n > 0 (enforced by the wrapped source).
func (l *loggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("dice draw",
		zap.Int("bound", n),
		zap.Int("value", v),
	)
	return v
}
