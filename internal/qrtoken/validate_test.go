package qrtoken

import (
	"testing"
	"time"
)

const (
	testSecret = "S"
	testWindow = 30 * time.Second
)

func TestValidateAcceptWithinTolerance(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	current := WindowIndex(now, testWindow)

	for _, epoch := range []int64{current - 1, current, current + 1} {
		res := Validate(Token{Epoch: epoch, Secret: testSecret, SessionLabel: "XII-RPL-1"}, now, testSecret, testWindow, 1)
		if !res.OK {
			t.Fatalf("epoch %d: want accept, got reject(%s)", epoch, res.Reason)
		}
		if res.SessionLabel != "XII-RPL-1" {
			t.Fatalf("epoch %d: label %q", epoch, res.SessionLabel)
		}
	}
}

func TestValidateSecretMismatchWinsOverEpoch(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	current := WindowIndex(now, testWindow)

	// Mismatched secret rejects regardless of how fresh or stale the epoch is.
	for _, epoch := range []int64{current, current - 100, current + 100} {
		res := Validate(Token{Epoch: epoch, Secret: "wrong"}, now, testSecret, testWindow, 1)
		if res.OK || res.Reason != ReasonSecretMismatch {
			t.Fatalf("epoch %d: want SecretMismatch, got %+v", epoch, res)
		}
	}
}

func TestValidateExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	current := WindowIndex(now, testWindow)

	for _, epoch := range []int64{current - 2, current + 2, 0} {
		res := Validate(Token{Epoch: epoch, Secret: testSecret}, now, testSecret, testWindow, 1)
		if res.OK || res.Reason != ReasonExpired {
			t.Fatalf("epoch %d: want Expired, got %+v", epoch, res)
		}
	}
}

// A token generated at T scans fine 29s later and is rejected 95s later.
func TestValidateScanScenario(t *testing.T) {
	genAt := time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC)
	raw := Encode(WindowIndex(genAt, testWindow), testSecret, "XII-RPL-1")

	tok, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}

	if res := Validate(tok, genAt.Add(29*time.Second), testSecret, testWindow, 1); !res.OK {
		t.Fatalf("scan at +29s: want accept, got %+v", res)
	}
	if res := Validate(tok, genAt.Add(95*time.Second), testSecret, testWindow, 1); res.OK || res.Reason != ReasonExpired {
		t.Fatalf("scan at +95s: want Expired, got %+v", res)
	}
}

func TestWindowIndexMonotonic(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	prev := WindowIndex(base, testWindow)
	for i := 1; i < 200; i++ {
		cur := WindowIndex(base.Add(time.Duration(i)*time.Second), testWindow)
		if cur < prev {
			t.Fatalf("window index decreased at +%ds: %d -> %d", i, prev, cur)
		}
		prev = cur
	}
}

func TestSecondsLeft(t *testing.T) {
	now := time.Unix(1_700_000_020, 0) // 10s into a 30s window
	if got := SecondsLeft(now, testWindow); got != 20 {
		t.Fatalf("SecondsLeft = %d, want 20", got)
	}
}
