package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hadirmu/hadirmu-server/internal/attendance"
	"github.com/hadirmu/hadirmu-server/internal/auth"
	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/export"
	"github.com/hadirmu/hadirmu-server/internal/models"
)

func (s *Server) scan(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "QR Code tidak valid! (format salah)"})
		return
	}

	res, err := s.att.Scan(c.Request.Context(), auth.SubjectFrom(c), req.Token)
	if err != nil {
		s.fail(c, "scan", err)
		return
	}
	switch res.Outcome {
	case attendance.Accepted:
		c.JSON(http.StatusOK, gin.H{
			"status":  string(res.Outcome),
			"session": res.SessionLabel,
			"message": "Absensi berhasil dicatat.",
		})
	case attendance.AlreadyRecorded:
		// Success-adjacent: the student is checked in, just not by this scan.
		c.JSON(http.StatusOK, gin.H{
			"status":  string(res.Outcome),
			"session": res.SessionLabel,
			"message": "Kamu sudah absen untuk sesi ini hari ini!",
		})
	case attendance.BadToken:
		c.JSON(http.StatusBadRequest, gin.H{"status": string(res.Outcome), "error": "QR Code tidak valid! (format salah)"})
	case attendance.WrongSecret:
		c.JSON(http.StatusForbidden, gin.H{"status": string(res.Outcome), "error": "QR Code tidak valid!"})
	case attendance.Expired:
		c.JSON(http.StatusGone, gin.H{"status": string(res.Outcome), "error": "QR Code sudah kadaluarsa! Minta guru untuk refresh QR."})
	}
}

func (s *Server) displayQR(c *gin.Context) {
	disp := s.att.Display(c.Query("session"))
	c.JSON(http.StatusOK, gin.H{
		"value":        disp.Value,
		"session":      disp.SessionLabel,
		"seconds_left": disp.SecondsLeft,
	})
}

func (s *Server) dayParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().In(s.cfg.Location), true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, s.cfg.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format tanggal salah (YYYY-MM-DD)."})
		return time.Time{}, false
	}
	return day, true
}

func (s *Server) listAttendance(c *gin.Context) {
	day, ok := s.dayParam(c)
	if !ok {
		return
	}
	records, err := db.ListForDay(c.Request.Context(), s.db, day, c.Query("session"))
	if err != nil {
		s.fail(c, "list attendance", err)
		return
	}
	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"id":          r.ID,
			"student_id":  r.StudentID,
			"nis":         r.StudentNIS,
			"full_name":   r.StudentName,
			"session":     r.SessionLabel,
			"status":      string(r.Status),
			"recorded_at": r.RecordedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "records": out})
}

type manualRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Session   string `json:"session" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Status    string `json:"status"`
}

// setAttendance is the manual teacher path. It deliberately bypasses the
// one-scan-per-day rule: teachers may correct or override any record.
func (s *Server) setAttendance(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data tidak lengkap."})
		return
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, s.cfg.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format tanggal salah (YYYY-MM-DD)."})
		return
	}
	status := models.AttendanceStatus(req.Status)
	if req.Status == "" {
		status = models.StatusPresent
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status tidak dikenal."})
		return
	}
	if err := db.SetStatus(c.Request.Context(), s.db, req.StudentID, req.Session, day, status); err != nil {
		s.fail(c, "set attendance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteAttendance(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data tidak lengkap."})
		return
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, s.cfg.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format tanggal salah (YYYY-MM-DD)."})
		return
	}
	if err := db.DeleteRecord(c.Request.Context(), s.db, req.StudentID, req.Session, day); err != nil {
		s.fail(c, "delete attendance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) exportAttendance(c *gin.Context) {
	day, ok := s.dayParam(c)
	if !ok {
		return
	}
	records, err := db.ListForDay(c.Request.Context(), s.db, day, c.Query("session"))
	if err != nil {
		s.fail(c, "export attendance", err)
		return
	}
	wb, err := export.DailyWorkbook(day, records, s.cfg.Location)
	if err != nil {
		s.fail(c, "build workbook", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="absensi-`+day.Format("2006-01-02")+`.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := wb.Write(c.Writer); err != nil {
		s.log.Warn("export write aborted")
	}
}
