// Package qrtoken implements the rotating attendance token: a coarse time
// window index joined with a shared secret and a session label. The same
// window width must be used by whoever renders the QR and whoever validates
// a scan; both sides receive it from config, never from a local constant.
package qrtoken

import "time"

// WindowIndex buckets wall-clock time into consecutive integer windows of
// the given width. Monotonic non-decreasing for a monotonic clock.
func WindowIndex(now time.Time, window time.Duration) int64 {
	return now.Unix() / int64(window/time.Second)
}

// SecondsLeft reports how long the current window remains valid, used by
// the presenter to schedule its refresh.
func SecondsLeft(now time.Time, window time.Duration) int64 {
	w := int64(window / time.Second)
	return w - now.Unix()%w
}
