// internal/infra/telegram/payday_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"isitpayday/internal/app"
	"isitpayday/internal/domain/payday"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StateProvider exposes the latest tracker states.
type StateProvider interface {
	States() []app.State
}

// RegisterPaydayHandlers registers /start and /payday.
func RegisterPaydayHandlers(b *telebot.Bot, states StateProvider, baseLogger *logrus.Entry) {
	handlerLogger := baseLogger.WithField("handler_group", "payday")

	b.Handle("/start", func(c telebot.Context) error {
		handlerLogger.WithFields(logrus.Fields{
			"command":   "/start",
			"sender_id": c.Sender().ID,
		}).Info("Processing /start command")
		return c.Send("Hi! I keep track of paydays. Use /payday to see when the next one is.")
	})

	b.Handle("/payday", func(c telebot.Context) error {
		handlerLogger.WithFields(logrus.Fields{
			"command":   "/payday",
			"sender_id": c.Sender().ID,
		}).Info("Processing /payday command")
		return c.Send(FormatStates(states.States()), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

// FormatStates renders one line per profile.
func FormatStates(states []app.State) string {
	if len(states) == 0 {
		return "No payday profiles are configured yet."
	}

	var b strings.Builder
	b.WriteString("*Next paydays*\n")
	for _, st := range states {
		switch {
		case st.NextPayday == nil:
			fmt.Fprintf(&b, "\n%s: %s", EscapeMarkdown(st.Name), app.UnknownPayday)
		case st.IsPayday:
			fmt.Fprintf(&b, "\n%s: today! 🎉", EscapeMarkdown(st.Name))
		default:
			fmt.Fprintf(&b, "\n%s: %s (%s)", EscapeMarkdown(st.Name), st.NextPaydayString(), payday.WeekdayOf(*st.NextPayday))
		}
		if st.Degraded {
			b.WriteString(" _without holiday data_")
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown makes user-supplied text safe outside entities in ModeMarkdown messages.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// PaydayNotifier announces paydays in a single chat.
type PaydayNotifier struct {
	sender Sender
	chatID int64
	logger *logrus.Entry
}

func NewPaydayNotifier(sender Sender, chatID int64, logger *logrus.Entry) *PaydayNotifier {
	return &PaydayNotifier{sender: sender, chatID: chatID, logger: logger}
}

func (n *PaydayNotifier) NotifyPayday(ctx context.Context, st app.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Legacy Markdown does not allow escapes inside an entity, so the name is not bolded.
	text := fmt.Sprintf("💰 It's payday for %s!", EscapeMarkdown(st.Name))
	if err := n.sender.SendMessage(n.chatID, text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}); err != nil {
		return err
	}
	n.logger.WithFields(logrus.Fields{
		"profile_id": st.ProfileID,
		"chat_id":    n.chatID,
	}).Info("Payday notice sent")
	return nil
}
