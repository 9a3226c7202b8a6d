package risk

import (
	"math"
	"testing"
)

func baseConfig() Config {
	return Config{
		StopLossPct:          0.05,
		TakeProfitPct:        0.10,
		CooldownPeriods:      2,
		MaxDailyTrades:       2,
		MaxConsecutiveLosses: 2,
		PauseAfterLosses:     5,
		MaxDrawdownLimit:     20,
		MinCapital:           10,
		Dynamic: DynamicConfig{
			Lookback:     5,
			SLMultiplier: 2,
			TPMultiplier: 3,
			SLClamp:      Range{Min: 0.01, Max: 0.08},
			TPClamp:      Range{Min: 0.02, Max: 0.30},
		},
	}
}

func TestVolatility(t *testing.T) {
	closes := []float64{100, 101, 99, 102, 100, 103}

	vol, ok := Volatility(closes, 5, 5)
	if !ok {
		t.Fatal("Volatility() ok = false, want true")
	}

	var rets []float64
	for i := 1; i < len(closes); i++ {
		rets = append(rets, (closes[i]-closes[i-1])/closes[i-1])
	}
	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var sq float64
	for _, r := range rets {
		sq += (r - mean) * (r - mean)
	}
	want := math.Sqrt(sq / float64(len(rets)-1))

	if math.Abs(vol-want) > 1e-15 {
		t.Errorf("Volatility() = %v, want %v", vol, want)
	}

	if _, ok := Volatility(closes, 1, 5); ok {
		t.Error("Volatility() with a single return should not be ok")
	}
}

func TestThresholds(t *testing.T) {
	cfg := baseConfig()
	closes := []float64{100, 101, 99, 102, 100, 103}

	sl, tp := cfg.Thresholds(closes, 5)
	if sl != -0.05 || tp != 0.10 {
		t.Errorf("static Thresholds() = %v,%v, want -0.05,0.10", sl, tp)
	}

	cfg.Dynamic.Enabled = true
	vol, _ := Volatility(closes, 5, cfg.Dynamic.Lookback)
	sl, tp = cfg.Thresholds(closes, 5)

	wantSL := -math.Min(math.Max(2*vol, 0.01), 0.08)
	wantTP := math.Max(math.Min(math.Max(3*vol, 0.02), 0.30), 0.10)
	if sl != wantSL {
		t.Errorf("dynamic stop-loss = %v, want %v", sl, wantSL)
	}
	if tp != wantTP {
		t.Errorf("dynamic take-profit = %v, want %v", tp, wantTP)
	}
	if tp < cfg.TakeProfitPct {
		t.Errorf("dynamic take-profit %v below static base %v", tp, cfg.TakeProfitPct)
	}

	// not enough history falls back to the static levels
	sl, tp = cfg.Thresholds(closes, 1)
	if sl != -0.05 || tp != 0.10 {
		t.Errorf("fallback Thresholds() = %v,%v, want -0.05,0.10", sl, tp)
	}
}

func TestThresholdsClampLargeVolatility(t *testing.T) {
	cfg := baseConfig()
	cfg.Dynamic.Enabled = true
	closes := []float64{100, 150, 80, 160, 70, 170}

	sl, tp := cfg.Thresholds(closes, 5)
	if sl != -0.08 {
		t.Errorf("stop-loss = %v, want clamp max -0.08", sl)
	}
	if tp != 0.30 {
		t.Errorf("take-profit = %v, want clamp max 0.30", tp)
	}
}

func TestGuardCooldownAndPause(t *testing.T) {
	g := NewGuard(baseConfig())
	g.Observe(0, 1000)

	g.Closed(10, true)
	for i, want := range map[int]Block{10: BlockCooldown, 12: BlockCooldown, 13: Allowed} {
		if got := g.CanEnter(i, int64(i)*3600, 1000); got != want {
			t.Errorf("after win CanEnter(%d) = %q, want %q", i, got, want)
		}
	}

	g.Closed(20, false)
	if g.ConsecutiveLosses() != 1 {
		t.Fatalf("ConsecutiveLosses() = %d, want 1", g.ConsecutiveLosses())
	}
	g.Closed(30, false)
	if g.ConsecutiveLosses() != 0 {
		t.Errorf("counter should reset once the pause triggers, got %d", g.ConsecutiveLosses())
	}
	if got := g.CanEnter(35, 35*3600, 1000); got != BlockLossPause {
		t.Errorf("CanEnter(35) = %q, want %q", got, BlockLossPause)
	}
	if got := g.CanEnter(36, 36*3600, 1000); got != Allowed {
		t.Errorf("CanEnter(36) = %q, want allowed", got)
	}
}

func TestGuardDailyLimit(t *testing.T) {
	g := NewGuard(baseConfig())
	g.Observe(0, 1000)
	const day = int64(1700000000 / 86400 * 86400)

	g.Entered(day + 60)
	g.Entered(day + 120)
	if got := g.CanEnter(5, day+180, 1000); got != BlockDailyLimit {
		t.Errorf("CanEnter() = %q, want %q", got, BlockDailyLimit)
	}
	if got := g.CanEnter(6, day+86400, 1000); got != Allowed {
		t.Errorf("next day CanEnter() = %q, want allowed", got)
	}
}

func TestGuardDrawdownRecovers(t *testing.T) {
	cfg := baseConfig()
	cfg.DrawdownLookback = 3
	g := NewGuard(cfg)

	g.Observe(0, 1000)
	g.Observe(1, 750)
	if got := g.CanEnter(1, 3600, 750); got != BlockDrawdown {
		t.Fatalf("CanEnter() = %q, want %q (drawdown %.1f%%)", got, BlockDrawdown, g.Drawdown())
	}
	g.Observe(2, 750)
	g.Observe(3, 750)
	if got := g.CanEnter(3, 3*3600, 750); got != Allowed {
		t.Errorf("CanEnter() after peak left window = %q, want allowed", got)
	}
}

func TestGuardMinCapital(t *testing.T) {
	g := NewGuard(baseConfig())
	g.Observe(0, 5)
	if got := g.CanEnter(0, 0, 5); got != BlockMinCapital {
		t.Errorf("CanEnter() = %q, want %q", got, BlockMinCapital)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := baseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	cfg.Dynamic.Enabled = true
	cfg.Dynamic.SLClamp = Range{Min: 0.2, Max: 0.1}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted an inverted clamp")
	}
}
