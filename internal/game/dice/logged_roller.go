package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger. Every random decision the combat rules
// make goes through a Roller so it is logged at debug level with its purpose.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced with zap.NewNop().
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Intn returns a value in [0, n), so a Roller can itself serve as a Source.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// IntRange returns a uniform int in the inclusive range [lo, hi].
// When hi < lo the bounds are swapped.
//
// Postcondition: lo <= result <= hi.
func (r *Roller) IntRange(purpose string, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	v := lo + r.src.Intn(hi-lo+1)
	r.logger.Debug("dice range",
		zap.String("purpose", purpose),
		zap.Int("lo", lo),
		zap.Int("hi", hi),
		zap.Int("value", v),
	)
	return v
}

// Percent reports whether a pct% check succeeds.
//
// Postcondition: pct <= 0 always fails; pct >= 100 always succeeds.
func (r *Roller) Percent(purpose string, pct int) bool {
	roll := r.src.Intn(100)
	ok := roll < pct
	r.logger.Debug("dice percent",
		zap.String("purpose", purpose),
		zap.Int("chance", pct),
		zap.Int("roll", roll),
		zap.Bool("success", ok),
	)
	return ok
}

// CoinFlip reports a fair 50% outcome.
func (r *Roller) CoinFlip(purpose string) bool {
	return r.Percent(purpose, 50)
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}
