package models

import "time"

// Pool names one of the two disjoint identity pools.
type Pool string

const (
	PoolTeacher Pool = "teacher"
	PoolStudent Pool = "student"
)

// AttendanceStatus mirrors the statuses a teacher can set by hand. The scan
// path only ever writes StatusPresent.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusExcused AttendanceStatus = "excused"
	StatusSick    AttendanceStatus = "sick"
	StatusAbsent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusExcused, StatusSick, StatusAbsent:
		return true
	}
	return false
}

// Purpose discriminates one-time codes so a code issued for channel binding
// can never be redeemed as a password-reset code.
type Purpose string

const (
	PurposeReset  Purpose = "reset"
	PurposeVerify Purpose = "verify"
)

type Teacher struct {
	ID       string
	FullName string
	Email    *string
	NIP      *string
	WhatsApp *string
	Password string
	Role     string // teacher|admin

	ResetCode    *string
	ResetExpires *time.Time
}

type Student struct {
	ID            string
	FullName      string
	NIS           string
	RecoveryEmail *string
	WhatsApp      *string
	Password      string

	ResetCode    *string
	ResetExpires *time.Time

	LinkToken        *string
	TelegramChatID   *int64
	TelegramUsername *string
}

type AttendanceRecord struct {
	ID           string
	StudentID    string
	SessionLabel string
	Status       AttendanceStatus
	AttendedOn   time.Time // calendar day, truncated
	RecordedAt   time.Time

	StudentName string // joined for list views, empty elsewhere
	StudentNIS  string
}
