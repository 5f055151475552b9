// Package tg runs the HadirMu Telegram bot. Its one real job is redeeming
// the /start v_<token> deep link that binds a student account to a chat.
package tg

import (
	"context"
	"database/sql"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hadirmu/hadirmu-server/internal/db"
	"go.uber.org/zap"
)

const startPrefix = "/start v_"

type Linker struct {
	bot         *tgbotapi.BotAPI
	db          *sql.DB
	adminChatID int64
	log         *zap.Logger
}

func NewLinker(bot *tgbotapi.BotAPI, database *sql.DB, adminChatID int64, log *zap.Logger) *Linker {
	return &Linker{bot: bot, db: database, adminChatID: adminChatID, log: log}
}

// Run consumes updates until ctx is done. Non-text updates are ignored.
func (l *Linker) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := l.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			l.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			l.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes a single update. Exported so the HTTP webhook endpoint
// can feed updates through the same path as long polling.
func (l *Linker) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	switch {
	case len(msg.Text) > len(startPrefix) && msg.Text[:len(startPrefix)] == startPrefix:
		l.handleLink(ctx, chatID, msg.Chat.UserName, msg.Text[len(startPrefix):])
	case msg.Text == "/start":
		name := msg.Chat.FirstName
		if name == "" {
			name = "Siswa"
		}
		l.reply(chatID, fmt.Sprintf("👋 *Halo %s!*\n\nUntuk menghubungkan akun, silakan klik tombol *Verifikasi* di aplikasi HadirMu.", name))
	default:
		l.reply(chatID, "🤖 Saya bot HadirMu. Gunakan website untuk interaksi.")
	}
}

func (l *Linker) handleLink(ctx context.Context, chatID int64, username, token string) {
	student, err := db.ConsumeLinkToken(ctx, l.db, token, chatID, username)
	if err != nil {
		l.log.Error("consume link token", zap.Error(err))
		l.reply(chatID, "⚠️ *Gagal Menghubungkan*\nTerjadi kesalahan sistem.")
		return
	}
	if student == nil {
		l.reply(chatID, "❌ *Token Tidak Valid*\nToken mungkin sudah kadaluarsa atau salah.")
		return
	}
	l.log.Info("telegram linked", zap.String("student_id", student.ID), zap.Int64("chat_id", chatID))
	l.reply(chatID, fmt.Sprintf("✅ *Berhasil Terhubung!*\n\nHalo %s, akun HadirMu kamu sudah aktif.\nSekarang kamu bisa menggunakan fitur Scan QR di website.", student.FullName))
}

// NotifyAdmin pushes an operational message to the configured admin chat.
func (l *Linker) NotifyAdmin(text string) {
	if l.adminChatID == 0 {
		return
	}
	l.reply(l.adminChatID, text)
}

func (l *Linker) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := Send(l.bot, msg); err != nil {
		l.log.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
