package bech32

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/ida/errors"
)

func TestBech32EncodeDecode(t *testing.T) {
	want, err := hex.DecodeString("746573742d7061796c6f6164")
	if err != nil {
		t.Fatal(err)
	}

	raw, err := Encode("tida", want)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	if !bytes.HasPrefix(raw, []byte("tida1")) {
		t.Fatalf("unexpected human readable part: %q", raw)
	}

	hrp, payload, err := Decode(string(raw))
	if err != nil {
		t.Fatal(err)
	}
	if hrp != "tida" {
		t.Fatalf("unexpected hrp %q", hrp)
	}
	if !bytes.Equal(want, payload) {
		t.Logf("want %d", want)
		t.Logf("got  %d", payload)
		t.Fatal("invalid decode")
	}
}

func TestBech32DecodeInvalid(t *testing.T) {
	_, _, err := Decode("tida1notavalidchecksum")
	if !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
}
