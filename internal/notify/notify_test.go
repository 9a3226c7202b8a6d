package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
	"github.com/Alias1177/SignalLab/models"
)

type fakeBot struct {
	sent []string
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig).Text)
	return tgbotapi.Message{}, nil
}

func batch() []optimizer.SymbolResult {
	return []optimizer.SymbolResult{
		{Symbol: "EUR/USD", Result: &models.OptimizationResult{
			BestComboLabel: "trend+momentum",
			Performance:    models.BacktestResult{ROI: 4.25, WinRate: 60, MaxDrawdown: 1.5, TradeCount: 10},
		}},
		{Symbol: "XAU/USD", Error: "loading data: empty data returned"},
	}
}

func TestFormatBatch(t *testing.T) {
	out := FormatBatch("1h", batch())
	for _, want := range []string{"2 symbols, 1 failed", "EUR/USD [trend+momentum] ROI 4.25%", "XAU/USD: loading data"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatBatch() missing %q in %q", want, out)
		}
	}
}

func TestTelegramNotifyBatch(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(bot, 42)
	if err := tg.NotifyBatch(context.Background(), "1h", batch()); err != nil {
		t.Fatalf("NotifyBatch() error = %v", err)
	}
	if len(bot.sent) != 1 || !strings.Contains(bot.sent[0], "EUR/USD") {
		t.Errorf("sent = %v", bot.sent)
	}

	bot.err = errors.New("forbidden")
	if err := tg.NotifyBatch(context.Background(), "1h", batch()); err == nil {
		t.Error("NotifyBatch() swallowed a send error")
	}
}

func TestSplit(t *testing.T) {
	text := strings.Repeat("line\n", 10)
	parts := split(text, 12)
	if strings.Join(parts, "") != text {
		t.Error("split() lost text")
	}
	for _, p := range parts {
		if len(p) > 12 {
			t.Errorf("part %q longer than limit", p)
		}
	}
	if got := split("short", 100); len(got) != 1 {
		t.Errorf("split(short) = %v", got)
	}
}
