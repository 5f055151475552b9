package qrtoken

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		epoch  int64
		secret string
		label  string
	}{
		{0, "S", "DEFAULT"},
		{17512345, "HADIRMU-SECRET-123", "XII-RPL-1"},
		{42, "abc", "Math-Mon"},
		{99, "s3cr3t", "Bahasa_Indonesia_Kelas_X"}, // label with delimiters
	}
	for _, c := range cases {
		raw := Encode(c.epoch, c.secret, c.label)
		tok, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if tok.Epoch != c.epoch || tok.Secret != c.secret || tok.SessionLabel != c.label {
			t.Fatalf("round trip mismatch: got %+v, want %+v", tok, c)
		}
	}
}

func TestEncodeEmptyLabelDefaults(t *testing.T) {
	tok, err := Decode(Encode(5, "S", ""))
	if err != nil {
		t.Fatal(err)
	}
	if tok.SessionLabel != DefaultLabel {
		t.Fatalf("got label %q, want %q", tok.SessionLabel, DefaultLabel)
	}
}

func TestDecodeOmittedLabelDefaults(t *testing.T) {
	// Old presenters emitted four segments only.
	tok, err := Decode("HADIR_SESSION_123_SECRET")
	if err != nil {
		t.Fatal(err)
	}
	if tok.SessionLabel != DefaultLabel {
		t.Fatalf("got label %q, want %q", tok.SessionLabel, DefaultLabel)
	}
	if tok.Epoch != 123 || tok.Secret != "SECRET" {
		t.Fatalf("unexpected token %+v", tok)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"HADIR",
		"HADIR_SESSION",
		"HADIR_SESSION_123",          // fewer than 4 segments
		"NOPE_SESSION_123_SECRET",    // wrong app prefix
		"HADIR_TOKEN_123_SECRET",     // wrong kind prefix
		"HADIR_SESSION_abc_SECRET",   // epoch not an integer
		"HADIR_SESSION_12.5_SECRET",  // epoch not an integer
		"hadir_session_123_SECRET_X", // prefixes are case-sensitive
	} {
		if _, err := Decode(raw); !errors.Is(err, ErrDecode) {
			t.Errorf("Decode(%q): want ErrDecode, got %v", raw, err)
		}
	}
}
