package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stx-trader/internal/domain"
	"stx-trader/internal/present"
	"stx-trader/pkg/logger"

	tele "gopkg.in/telebot.v3"
)

// Telegram messages are capped at 4096 characters.
const maxMessageLen = 4000

type Analyzer interface {
	Analyze(ctx context.Context, address string) (*domain.Report, error)
}

type PriceSource interface {
	Latest(ctx context.Context) domain.MarketSnapshot
}

var newBot = tele.NewBot

// StartTelegramBot starts long polling in the background. An empty token
// disables the bot.
func StartTelegramBot(ctx context.Context, token string, analyzer Analyzer, prices PriceSource) error {
	if token == "" {
		logger.Infof("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		return c.Send(priceReply(ctx, prices))
	})

	b.Handle("/analyze", func(c tele.Context) error {
		_ = c.Notify(tele.Typing)
		return c.Send(analyzeReply(ctx, analyzer, c.Args()))
	})

	logger.Infof("Telegram bot started")
	go b.Start()
	go func() {
		<-ctx.Done()
		b.Stop()
	}()
	return nil
}

func priceReply(ctx context.Context, prices PriceSource) string {
	s := prices.Latest(ctx)
	if s.IsEmpty() {
		return "Market data is unavailable right now."
	}
	return fmt.Sprintf(
		"%s (%s)\nPrice: $%s\n24h Change: %s%%\n24h Volume: $%s\nMarket Cap: $%s",
		s.Name, s.Symbol, s.Price, s.PercentChange24h, s.Volume24h, s.MarketCap,
	)
}

func analyzeReply(ctx context.Context, analyzer Analyzer, args []string) string {
	if len(args) == 0 {
		return "Usage: /analyze <STX address>"
	}
	report, err := analyzer.Analyze(ctx, args[0])
	if errors.Is(err, domain.ErrEmptyAddress) {
		return "Usage: /analyze <STX address>"
	}
	if err != nil {
		return fmt.Sprintf("An error occurred: %v\nPlease check your inputs and try again.", err)
	}
	return truncate(present.RenderPlain(present.Build(report)), maxMessageLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "\n…"
}
