package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hadirmu/hadirmu-server/internal/auth"
	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/identity"
	"github.com/hadirmu/hadirmu-server/internal/models"
	"github.com/hadirmu/hadirmu-server/internal/otp"
	"go.uber.org/zap"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data tidak lengkap."})
		return
	}

	p, err := s.resolver.ResolveLogin(c.Request.Context(), req.Identifier)
	if errors.Is(err, identity.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Akun tidak ditemukan."})
		return
	}
	if err != nil {
		s.fail(c, "login resolve", err)
		return
	}
	if !auth.CredentialsMatch(p.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Password salah!"})
		return
	}

	token, exp, err := auth.Issue(p.ID, p.Role, s.cfg.JWTIssuer, s.cfg.JWTKey, s.cfg.JWTTTL)
	if err != nil {
		s.fail(c, "issue session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp,
		"role":       p.Role,
		"full_name":  p.FullName,
	})
}

func (s *Server) requestReset(c *gin.Context) {
	var req struct {
		WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nomor WhatsApp wajib diisi."})
		return
	}

	p, err := s.resolver.ResolveWhatsApp(c.Request.Context(), req.WhatsAppNumber)
	if errors.Is(err, identity.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nomor WhatsApp tidak terdaftar di sistem."})
		return
	}
	if err != nil {
		s.fail(c, "request-reset resolve", err)
		return
	}

	err = s.otp.Issue(c.Request.Context(), p.Pool, p.ID, req.WhatsAppNumber, p.FullName, models.PurposeReset)
	if errors.Is(err, otp.ErrDispatch) {
		// The code is persisted but never reached the user; they must retry.
		s.alertAdmin("⚠️ Pengiriman OTP WhatsApp gagal. Periksa token Fonnte.")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gagal mengirim pesan WhatsApp. Silakan coba lagi."})
		return
	}
	if err != nil {
		s.fail(c, "request-reset issue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP berhasil dikirim ke WhatsApp.",
		"role":    string(p.Pool),
	})
}

func (s *Server) verifyReset(c *gin.Context) {
	var req struct {
		WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
		Token          string `json:"token" binding:"required"`
		NewPassword    string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data tidak lengkap."})
		return
	}
	if msg := passwordComplexityError(req.NewPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	p, err := s.resolver.ResolveWhatsApp(c.Request.Context(), req.WhatsAppNumber)
	if errors.Is(err, identity.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User tidak ditemukan."})
		return
	}
	if err != nil {
		s.fail(c, "verify-reset resolve", err)
		return
	}

	res, err := s.otp.Verify(c.Request.Context(), p.Pool, p.ID, models.PurposeReset, req.Token)
	if err != nil {
		s.fail(c, "verify-reset", err)
		return
	}
	if res != otp.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": verifyMessage(res)})
		return
	}

	if p.Pool == models.PoolTeacher {
		err = db.SetTeacherPassword(c.Request.Context(), s.db, p.ID, req.NewPassword)
	} else {
		err = db.SetStudentPassword(c.Request.Context(), s.db, p.ID, req.NewPassword)
	}
	if err != nil {
		s.fail(c, "verify-reset update password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password berhasil diperbarui."})
}

func (s *Server) verifyWASend(c *gin.Context) {
	var req struct {
		WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
		UserID         string `json:"userId" binding:"required"`
		Role           string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data tidak lengkap"})
		return
	}
	pool, ok := poolFromRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role tidak dikenal"})
		return
	}

	err := s.otp.Issue(c.Request.Context(), pool, req.UserID, req.WhatsAppNumber, "", models.PurposeVerify)
	if errors.Is(err, otp.ErrDispatch) {
		s.alertAdmin("⚠️ Pengiriman OTP WhatsApp gagal. Periksa token Fonnte.")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gagal mengirim pesan WhatsApp. Silakan coba lagi."})
		return
	}
	if err != nil {
		s.fail(c, "verify-wa-send", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP terkirim"})
}

func (s *Server) verifyWAConfirm(c *gin.Context) {
	var req struct {
		WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
		OTP            string `json:"otp" binding:"required"`
		UserID         string `json:"userId" binding:"required"`
		Role           string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data tidak lengkap"})
		return
	}
	pool, ok := poolFromRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role tidak dikenal"})
		return
	}

	res, err := s.otp.Verify(c.Request.Context(), pool, req.UserID, models.PurposeVerify, req.OTP)
	if err != nil {
		s.fail(c, "verify-wa-confirm", err)
		return
	}
	if res != otp.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": verifyMessage(res)})
		return
	}

	if pool == models.PoolTeacher {
		err = db.SetTeacherWhatsApp(c.Request.Context(), s.db, req.UserID, req.WhatsAppNumber)
	} else {
		err = db.SetStudentWhatsApp(c.Request.Context(), s.db, req.UserID, req.WhatsAppNumber)
	}
	if err != nil {
		s.fail(c, "verify-wa-confirm update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Nomor WhatsApp berhasil diverifikasi"})
}

func poolFromRole(role string) (models.Pool, bool) {
	switch role {
	case "teacher", "admin":
		return models.PoolTeacher, true
	case "student":
		return models.PoolStudent, true
	}
	return "", false
}

// verifyMessage maps each redemption failure to its own user-facing message,
// so the user knows whether to re-type or re-request the code.
func verifyMessage(res otp.VerifyResult) string {
	switch res {
	case otp.CodeNotFound:
		return "Tidak ada kode aktif. Silakan minta kode baru."
	case otp.CodeExpired:
		return "Kode sudah kadaluarsa. Silakan minta kode baru."
	default:
		return "Kode verifikasi salah."
	}
}

// alertAdmin forwards an operational alert to the admin chat when the bot
// is configured; otherwise the event is only in logs and metrics.
func (s *Server) alertAdmin(text string) {
	if s.linker != nil {
		s.linker.NotifyAdmin(text)
	}
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	s.log.Error(op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan sistem."})
}
