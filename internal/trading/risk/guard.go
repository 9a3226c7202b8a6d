package risk

// Block names the guard that rejected an entry.
type Block string

const (
	Allowed         Block = ""
	BlockCooldown   Block = "cooldown"
	BlockLossPause  Block = "loss_pause"
	BlockDailyLimit Block = "daily_limit"
	BlockDrawdown   Block = "drawdown"
	BlockMinCapital Block = "min_capital"
)

const secondsPerDay = 86400

// Guard tracks the state behind the entry rules for one simulation run.
// It is not safe for concurrent use.
type Guard struct {
	cfg Config

	cooldownUntil int
	pauseUntil    int
	losses        int

	day       int64
	dayTrades int

	peaks    peakWindow
	drawdown float64
}

// NewGuard returns a guard with no active restrictions.
func NewGuard(cfg Config) *Guard {
	return &Guard{
		cfg:           cfg,
		cooldownUntil: -1,
		pauseUntil:    -1,
		day:           -1,
		peaks:         peakWindow{size: cfg.DrawdownLookback},
	}
}

// Observe records the capital at period i and updates the current drawdown.
func (g *Guard) Observe(i int, capital float64) {
	peak := g.peaks.push(i, capital)
	g.drawdown = 0
	if peak > 0 {
		g.drawdown = (peak - capital) / peak * 100
	}
}

// Drawdown is the current drawdown from the tracked peak, in percent.
func (g *Guard) Drawdown() float64 {
	return g.drawdown
}

// ConsecutiveLosses is the current run of losing trades.
func (g *Guard) ConsecutiveLosses() int {
	return g.losses
}

// CanEnter reports whether a new position may open at period i.
func (g *Guard) CanEnter(i int, unix int64, capital float64) Block {
	switch {
	case i <= g.cooldownUntil:
		return BlockCooldown
	case i <= g.pauseUntil:
		return BlockLossPause
	case g.cfg.MaxDailyTrades > 0 && g.tradesOn(unix) >= g.cfg.MaxDailyTrades:
		return BlockDailyLimit
	case g.cfg.MaxDrawdownLimit > 0 && g.drawdown >= g.cfg.MaxDrawdownLimit:
		return BlockDrawdown
	case capital <= g.cfg.MinCapital:
		return BlockMinCapital
	}
	return Allowed
}

// Entered counts an entry against the daily cap.
func (g *Guard) Entered(unix int64) {
	g.tradesOn(unix)
	g.dayTrades++
}

// Closed applies cooldown and the consecutive-loss pause after a trade closes
// at period i.
func (g *Guard) Closed(i int, win bool) {
	g.cooldownUntil = i + g.cfg.CooldownPeriods
	if win {
		g.losses = 0
		return
	}
	g.losses++
	if g.cfg.MaxConsecutiveLosses > 0 && g.losses >= g.cfg.MaxConsecutiveLosses {
		g.pauseUntil = i + g.cfg.PauseAfterLosses
		g.losses = 0
	}
}

func (g *Guard) tradesOn(unix int64) int {
	day := unix / secondsPerDay
	if unix < 0 && unix%secondsPerDay != 0 {
		day--
	}
	if day != g.day {
		g.day = day
		g.dayTrades = 0
	}
	return g.dayTrades
}

// peakWindow keeps the maximum of the last size values (all values when size
// is 0) using a monotonic deque.
type peakWindow struct {
	size  int
	max   float64
	seen  bool
	idx   []int
	value []float64
}

func (w *peakWindow) push(i int, v float64) float64 {
	if w.size <= 0 {
		if !w.seen || v > w.max {
			w.max, w.seen = v, true
		}
		return w.max
	}
	for n := len(w.value); n > 0 && w.value[n-1] <= v; n = len(w.value) {
		w.idx, w.value = w.idx[:n-1], w.value[:n-1]
	}
	w.idx = append(w.idx, i)
	w.value = append(w.value, v)
	for w.idx[0] <= i-w.size {
		w.idx, w.value = w.idx[1:], w.value[1:]
	}
	return w.value[0]
}
