package otp

import (
	"fmt"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/models"
)

func renderMessage(purpose models.Purpose, displayName, code string, ttl time.Duration) string {
	switch purpose {
	case models.PurposeVerify:
		return fmt.Sprintf("🔐 *VERIFIKASI NOMOR WHATSAPP HADIRMU*\n\n"+
			"Kode verifikasi Anda adalah: *%s*\n\n"+
			"Masukkan kode ini di aplikasi untuk menghubungkan nomor WhatsApp Anda. "+
			"Kode berlaku selama %s.", code, humanTTL(ttl))
	default:
		return fmt.Sprintf("🔐 *KODE VERIFIKASI HADIRMU*\n\n"+
			"Halo %s,\n"+
			"Kode verifikasi untuk reset password Anda adalah: *%s*\n\n"+
			"Kode ini berlaku selama %s. Jangan berikan kode ini kepada siapapun.",
			displayName, code, humanTTL(ttl))
	}
}

func humanTTL(ttl time.Duration) string {
	if ttl >= time.Hour {
		return fmt.Sprintf("%d jam", int(ttl.Hours()))
	}
	return fmt.Sprintf("%d menit", int(ttl.Minutes()))
}
