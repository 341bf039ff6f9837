package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level with the die
// size and the face rolled.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a Source that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result as a 1-based face.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("dice roll",
		zap.Int("sides", n),
		zap.Int("face", v+1),
	)
	return v
}

// Roll evaluates v against the wrapped source and logs the expression and total.
//
// Postcondition: the logged total equals the returned value.
func (l *LoggedSource) Roll(v Value) int {
	total := v.Eval(l)
	l.logger.Debug("dice expression",
		zap.String("expression", v.String()),
		zap.Int("max", v.Max()),
		zap.Int("total", total),
	)
	return total
}
