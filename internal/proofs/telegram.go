// Package proofs stores payment-proof files in a Telegram channel and
// resolves them back to download URLs on demand.
package proofs

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ms-raffles/internal/logger"
)

// FileIDPrefix marks a stored proof reference as a Telegram file id
// rather than a plain URL. Telegram download URLs expire, so rows keep
// the stable file id and callers resolve it when they need a link.
const FileIDPrefix = "tg_file_id:"

type Telegram struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
	Logger *logger.Logger
}

func NewTelegram(token string, chatID int64, log *logger.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	log.Info("TELEGRAM", fmt.Sprintf("proof storage bot authorized as %s", bot.Self.UserName))
	return &Telegram{Bot: bot, ChatID: chatID, Logger: log}, nil
}

// Upload sends the proof file to the storage chat and returns its
// prefixed file id reference.
func (t *Telegram) Upload(ctx context.Context, name string, data []byte, caption string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty proof file %q", name)
	}

	doc := tgbotapi.NewDocument(t.ChatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption

	msg, err := t.Bot.Send(doc)
	if err != nil {
		return "", fmt.Errorf("failed to upload proof %q: %w", name, err)
	}
	if msg.Document == nil {
		return "", fmt.Errorf("telegram returned no document for proof %q", name)
	}

	t.Logger.Info("TELEGRAM", fmt.Sprintf("stored proof %q as %s", name, msg.Document.FileID))
	return FileIDPrefix + msg.Document.FileID, nil
}

// ResolveURL turns a stored proof reference into a downloadable URL.
// Plain URLs pass through unchanged.
func (t *Telegram) ResolveURL(ref string) (string, error) {
	if !strings.HasPrefix(ref, FileIDPrefix) {
		return ref, nil
	}
	fileID := strings.TrimPrefix(ref, FileIDPrefix)

	file, err := t.Bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to resolve proof file %s: %w", fileID, err)
	}
	return file.Link(t.Bot.Token), nil
}
