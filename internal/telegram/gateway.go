// Package telegram connects the dialog to the Telegram Bot API: Gateway
// sends replies and voice notes, Receiver long-polls for updates and hands
// text messages to the per-chat dispatcher.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/notify"
)

// Sender is the subset of *tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Gateway struct {
	api Sender
}

var (
	_ bot.Gateway   = (*Gateway)(nil)
	_ notify.Sender = (*Gateway)(nil)
)

func NewGateway(api Sender) *Gateway {
	return &Gateway{api: api}
}

func (g *Gateway) SendText(ctx context.Context, chatID int64, text string, kb bot.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = replyKeyboard(kb)
	}
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

func (g *Gateway) SendAudio(ctx context.Context, chatID int64, audio []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "total.ogg", Bytes: audio})
	if _, err := g.api.Send(voice); err != nil {
		return fmt.Errorf("send voice to chat %d: %w", chatID, err)
	}
	return nil
}

// SendBroadcast posts a notification without touching the chat's keyboard.
func (g *Gateway) SendBroadcast(ctx context.Context, chatID int64, text string) error {
	return g.SendText(ctx, chatID, text, nil)
}

func replyKeyboard(kb bot.Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, labels := range kb {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, l := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(l))
		}
		rows = append(rows, row)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}
