// Package telegram runs the optional Telegram channel: forwarded scammer
// messages flow into the honeypot engine, and anyone chatting with the bot
// can get one-shot scam analysis. Each chat toggles between the two modes.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avee-h/scambait/internal/domain"
	"github.com/avee-h/scambait/internal/engine"
	"github.com/avee-h/scambait/internal/generator"
	"github.com/avee-h/scambait/internal/registry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the slice of the bot API we use to reply. Separated so handlers
// can be exercised without the network.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot bridges Telegram chats to the honeypot engine and analyzer.
type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	engine   *engine.Engine
	analyzer generator.Analyzer

	mu            sync.Mutex
	honeypotChats map[int64]struct{}
}

// New connects to the Telegram Bot API with token.
func New(token string, eng *engine.Engine, analyzer generator.Analyzer) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	b := newBot(api, eng, analyzer)
	b.api = api
	return b, nil
}

func newBot(out sender, eng *engine.Engine, analyzer generator.Analyzer) *Bot {
	return &Bot{
		out:           out,
		engine:        eng,
		analyzer:      analyzer,
		honeypotChats: make(map[int64]struct{}),
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	slog.Info("Telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	chatID := msg.Chat.ID
	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, chatID, text)
		return
	}

	if b.inHoneypotMode(chatID) {
		b.handleHoneypotMessage(ctx, chatID, text)
	} else {
		b.handleDetectMessage(ctx, chatID, text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	cmd := strings.ToLower(strings.Fields(text)[0])
	// Group chats address commands as /cmd@botname.
	cmd, _, _ = strings.Cut(cmd, "@")

	switch cmd {
	case "/start", "/help":
		b.reply(chatID, helpText)
	case "/honeypot":
		b.setHoneypotMode(chatID, true)
		b.reply(chatID, "Honeypot mode on. Forward scammer messages here and I will answer as Ramesh while collecting their details. /detect switches back.")
	case "/detect":
		b.setHoneypotMode(chatID, false)
		b.reply(chatID, "Detection mode on. Send any message and I will analyze it for scam markers.")
	case "/reset":
		err := b.engine.ResetSession(ctx, sessionID(chatID))
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			slog.Error("Failed to reset telegram session", "chat_id", chatID, "error", err)
			b.reply(chatID, "Could not reset the conversation, please try again.")
			return
		}
		b.reply(chatID, "Conversation reset.")
	default:
		b.reply(chatID, "Unknown command. /help lists what I can do.")
	}
}

// handleHoneypotMessage runs one forwarded scammer message through the engine
// and replies with the in-persona answer plus an intelligence summary.
func (b *Bot) handleHoneypotMessage(ctx context.Context, chatID int64, text string) {
	id := sessionID(chatID)
	reply, err := b.engine.HandleMessage(ctx, domain.InboundEvent{
		SessionID: id,
		Message: domain.Message{
			Sender:    domain.SenderScammer,
			Text:      text,
			Timestamp: time.Now().Unix(),
		},
		Metadata: &domain.Metadata{Channel: "Telegram"},
	})
	if err != nil {
		slog.Error("Failed to process telegram honeypot message", "chat_id", chatID, "error", err)
		reply = generator.FallbackReply
	}

	var sb strings.Builder
	sb.WriteString("Reply as Ramesh:\n")
	sb.WriteString(reply)

	if sess, err := b.engine.GetSession(ctx, id); err == nil {
		fmt.Fprintf(&sb, "\n\nTurn %d", sess.TurnCount)
		if sess.ScamDetected {
			fmt.Fprintf(&sb, " | Scam: %s", scamLabel(sess.ScamType))
		}
		sb.WriteString("\n")
		sb.WriteString(intelSummary(sess.Intelligence))
		if sess.ReportSent {
			sb.WriteString("\nReport delivered.")
		}
	}

	b.reply(chatID, sb.String())
}

// handleDetectMessage classifies a single message outside any session.
func (b *Bot) handleDetectMessage(ctx context.Context, chatID int64, text string) {
	analysis, err := b.analyzer.Analyze(ctx, text)
	if err != nil {
		slog.Warn("Analysis via model failed, using heuristic fallback", "chat_id", chatID, "error", err)
		analysis, _ = generator.NewRuleResponder().Analyze(ctx, text)
	}

	var sb strings.Builder
	if analysis.IsScam {
		fmt.Fprintf(&sb, "SCAM DETECTED (%d%% confidence)\n", analysis.Confidence)
		fmt.Fprintf(&sb, "Type: %s\n", scamLabel(analysis.ScamType))
	} else {
		fmt.Fprintf(&sb, "Looks safe (%d%% confidence)\n", analysis.Confidence)
	}
	if len(analysis.RedFlags) > 0 {
		sb.WriteString("Red flags: ")
		sb.WriteString(strings.Join(analysis.RedFlags, ", "))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Advice: %s", analysis.Advice)

	b.reply(chatID, sb.String())
}

func (b *Bot) inHoneypotMode(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.honeypotChats[chatID]
	return ok
}

func (b *Bot) setHoneypotMode(chatID int64, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on {
		b.honeypotChats[chatID] = struct{}{}
	} else {
		delete(b.honeypotChats, chatID)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.out.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Warn("Failed to send telegram reply", "chat_id", chatID, "error", err)
	}
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

func scamLabel(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

func intelSummary(rec domain.IntelligenceRecord) string {
	var lines []string
	if len(rec.UPIIDs) > 0 {
		lines = append(lines, "UPI: "+strings.Join(rec.UPIIDs, ", "))
	}
	if len(rec.BankAccounts) > 0 {
		lines = append(lines, "Bank: "+strings.Join(rec.BankAccounts, ", "))
	}
	if len(rec.PhoneNumbers) > 0 {
		lines = append(lines, "Phones: "+strings.Join(rec.PhoneNumbers, ", "))
	}
	if len(rec.PhishingLinks) > 0 {
		lines = append(lines, "Links: "+strings.Join(rec.PhishingLinks, ", "))
	}
	if len(lines) == 0 {
		return "Intel: none yet"
	}
	return "Intel:\n" + strings.Join(lines, "\n")
}

const helpText = `Scam Detection & Honeypot Bot

Commands:
/honeypot - honeypot mode: I answer scammers as Ramesh and collect their details
/detect - detection mode: I analyze any message for scam markers
/reset - start the conversation over
/help - this message

Forward a suspicious message to get started.`
