package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hadirmu/hadirmu-server/internal/db"
)

// issueLinkToken mints a Telegram deep link for a student. A fresh request
// replaces any earlier unredeemed token.
func (s *Server) issueLinkToken(c *gin.Context) {
	var req struct {
		NIS string `json:"nis" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "NIS wajib diisi."})
		return
	}

	student, err := db.GetStudentByNIS(c.Request.Context(), s.db, req.NIS)
	if err != nil {
		s.fail(c, "issue link token", err)
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Siswa tidak ditemukan"})
		return
	}
	if student.TelegramChatID != nil {
		c.JSON(http.StatusOK, gin.H{"verified": true, "link": nil})
		return
	}

	token, err := randomToken()
	if err != nil {
		s.fail(c, "generate link token", err)
		return
	}
	if err := db.SetLinkToken(c.Request.Context(), s.db, student.ID, token); err != nil {
		s.fail(c, "store link token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified": false,
		"link":     "https://t.me/" + s.cfg.BotUsername + "?start=v_" + token,
	})
}

func (s *Server) pollLinkStatus(c *gin.Context) {
	nis := c.Query("nis")
	if nis == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "NIS wajib diisi."})
		return
	}
	student, err := db.GetStudentByNIS(c.Request.Context(), s.db, nis)
	if err != nil {
		s.fail(c, "poll link status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": student != nil && student.TelegramChatID != nil})
}

// telegramWebhook feeds webhook updates through the same handler as long
// polling, so deployments can choose either without behavioral drift.
func (s *Server) telegramWebhook(c *gin.Context) {
	if s.linker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Bot tidak dikonfigurasi."})
		return
	}
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		// Telegram retries on non-2xx; malformed updates are dropped instead.
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	s.linker.HandleUpdate(c.Request.Context(), update)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func randomToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
