package otp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/models"
	"go.uber.org/zap"
)

type storedCode struct {
	tagged  string
	expires time.Time
}

type fakeStore struct {
	codes map[string]*storedCode // keyed by pool/id
}

func newFakeStore() *fakeStore { return &fakeStore{codes: map[string]*storedCode{}} }

func key(pool models.Pool, id string) string { return string(pool) + "/" + id }

func (f *fakeStore) SetCode(_ context.Context, pool models.Pool, id, tagged string, expires time.Time) error {
	f.codes[key(pool, id)] = &storedCode{tagged: tagged, expires: expires}
	return nil
}

func (f *fakeStore) ConsumeCode(_ context.Context, pool models.Pool, id, tagged string, now time.Time) (bool, error) {
	c := f.codes[key(pool, id)]
	if c == nil || c.tagged != tagged || now.After(c.expires) {
		return false, nil
	}
	delete(f.codes, key(pool, id))
	return true, nil
}

func (f *fakeStore) CodeState(_ context.Context, pool models.Pool, id string) (*string, *time.Time, error) {
	c := f.codes[key(pool, id)]
	if c == nil {
		return nil, nil, nil
	}
	return &c.tagged, &c.expires, nil
}

type fakeMessenger struct {
	sent []string
	fail error
}

func (f *fakeMessenger) Send(_ context.Context, target, message string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, target+": "+message)
	return nil
}

func newTestService(store *fakeStore, wa *fakeMessenger, at time.Time) *Service {
	s := NewService(store, wa, 6, time.Hour, 10*time.Minute, zap.NewNop())
	return s.WithClock(func() time.Time { return at })
}

func storedFor(store *fakeStore, pool models.Pool, id string) *storedCode {
	return store.codes[key(pool, id)]
}

func TestIssuePersistsBeforeDispatch(t *testing.T) {
	store := newFakeStore()
	wa := &fakeMessenger{fail: errors.New("fonnte down")}
	svc := newTestService(store, wa, time.Unix(1_700_000_000, 0))

	err := svc.Issue(context.Background(), models.PoolStudent, "st-1", "628123", "Budi", models.PurposeReset)
	if !errors.Is(err, ErrDispatch) {
		t.Fatalf("want ErrDispatch, got %v", err)
	}
	// The code must already be persisted even though dispatch failed.
	if storedFor(store, models.PoolStudent, "st-1") == nil {
		t.Fatal("code not persisted before dispatch")
	}
}

func TestIssueCodeShapeAndTag(t *testing.T) {
	store := newFakeStore()
	wa := &fakeMessenger{}
	svc := newTestService(store, wa, time.Unix(1_700_000_000, 0))

	if err := svc.Issue(context.Background(), models.PoolTeacher, "t-1", "628123", "Bu Sari", models.PurposeVerify); err != nil {
		t.Fatal(err)
	}
	c := storedFor(store, models.PoolTeacher, "t-1")
	if c == nil {
		t.Fatal("nothing stored")
	}
	if !strings.HasPrefix(c.tagged, "VERIFY_") {
		t.Fatalf("verify code not tagged: %q", c.tagged)
	}
	digits := strings.TrimPrefix(c.tagged, "VERIFY_")
	if len(digits) != 6 {
		t.Fatalf("code length %d, want 6", len(digits))
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code %q", digits)
		}
	}
	wantExp := time.Unix(1_700_000_000, 0).Add(10 * time.Minute)
	if !c.expires.Equal(wantExp) {
		t.Fatalf("expiry %v, want %v", c.expires, wantExp)
	}
	if len(wa.sent) != 1 || !strings.Contains(wa.sent[0], digits) {
		t.Fatalf("message not dispatched with code: %v", wa.sent)
	}
}

func TestVerifySingleUse(t *testing.T) {
	store := newFakeStore()
	issuedAt := time.Unix(1_700_000_000, 0)
	svc := newTestService(store, &fakeMessenger{}, issuedAt)

	_ = store.SetCode(context.Background(), models.PoolStudent, "st-1", "123456", issuedAt.Add(time.Hour))

	res, err := svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeReset, "123456")
	if err != nil || res != Valid {
		t.Fatalf("first verify: got (%v, %v), want Valid", res, err)
	}
	res, err = svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeReset, "123456")
	if err != nil || res != CodeNotFound {
		t.Fatalf("second verify: got (%v, %v), want CodeNotFound", res, err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	store := newFakeStore()
	issuedAt := time.Unix(1_700_000_000, 0)
	expires := issuedAt.Add(time.Hour)
	_ = store.SetCode(context.Background(), models.PoolTeacher, "t-1", "654321", expires)

	// One second before expiry: valid.
	svc := newTestService(store, &fakeMessenger{}, expires.Add(-time.Second))
	res, err := svc.Verify(context.Background(), models.PoolTeacher, "t-1", models.PurposeReset, "654321")
	if err != nil || res != Valid {
		t.Fatalf("at expiry-1s: got (%v, %v), want Valid", res, err)
	}

	// Reissue and check one second after expiry: expired, not consumed.
	_ = store.SetCode(context.Background(), models.PoolTeacher, "t-1", "654321", expires)
	svc = newTestService(store, &fakeMessenger{}, expires.Add(time.Second))
	res, err = svc.Verify(context.Background(), models.PoolTeacher, "t-1", models.PurposeReset, "654321")
	if err != nil || res != CodeExpired {
		t.Fatalf("at expiry+1s: got (%v, %v), want CodeExpired", res, err)
	}
	if storedFor(store, models.PoolTeacher, "t-1") == nil {
		t.Fatal("expired code should linger until overwritten")
	}
}

func TestVerifyPurposeIsolation(t *testing.T) {
	store := newFakeStore()
	at := time.Unix(1_700_000_000, 0)
	svc := newTestService(store, &fakeMessenger{}, at)

	// Code issued for channel binding cannot be redeemed as a reset code.
	_ = store.SetCode(context.Background(), models.PoolStudent, "st-1", "VERIFY_111222", at.Add(10*time.Minute))

	res, err := svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeReset, "111222")
	if err != nil || res != CodeMismatch {
		t.Fatalf("cross-purpose verify: got (%v, %v), want CodeMismatch", res, err)
	}
	res, err = svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeVerify, "111222")
	if err != nil || res != Valid {
		t.Fatalf("matching purpose: got (%v, %v), want Valid", res, err)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	store := newFakeStore()
	at := time.Unix(1_700_000_000, 0)
	svc := newTestService(store, &fakeMessenger{}, at)

	_ = store.SetCode(context.Background(), models.PoolStudent, "st-1", "123456", at.Add(time.Hour))

	res, err := svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeReset, "000000")
	if err != nil || res != CodeMismatch {
		t.Fatalf("got (%v, %v), want CodeMismatch", res, err)
	}
	if storedFor(store, models.PoolStudent, "st-1") == nil {
		t.Fatal("mismatch must not consume the stored code")
	}
}

type erroringStore struct {
	*fakeStore
	fail error
}

func (e *erroringStore) ConsumeCode(context.Context, models.Pool, string, string, time.Time) (bool, error) {
	return false, e.fail
}

func TestVerifyStoreErrorCarriesNoVerdict(t *testing.T) {
	store := &erroringStore{fakeStore: newFakeStore(), fail: errors.New("db down")}
	svc := NewService(store, &fakeMessenger{}, 6, time.Hour, 10*time.Minute, zap.NewNop())

	res, err := svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeReset, "123456")
	if err == nil {
		t.Fatal("store failure must surface as an error")
	}
	if res != resultNone {
		t.Fatalf("got %v alongside the error, want the zero value", res)
	}
	if res == Valid || res == CodeMismatch {
		t.Fatalf("error path must not carry a verdict: %v", res)
	}
}

func TestReissueOverwritesOutstandingCode(t *testing.T) {
	store := newFakeStore()
	at := time.Unix(1_700_000_000, 0)
	svc := newTestService(store, &fakeMessenger{}, at)

	_ = store.SetCode(context.Background(), models.PoolStudent, "st-1", "111111", at.Add(time.Hour))
	if err := svc.Issue(context.Background(), models.PoolStudent, "st-1", "628123", "Budi", models.PurposeReset); err != nil {
		t.Fatal(err)
	}

	// The first code is implicitly invalidated by the second issuance.
	res, err := svc.Verify(context.Background(), models.PoolStudent, "st-1", models.PurposeReset, "111111")
	if err != nil || res != CodeMismatch {
		t.Fatalf("stale code: got (%v, %v), want CodeMismatch", res, err)
	}
}
