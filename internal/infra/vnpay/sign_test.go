package vnpay

import (
	"testing"
)

func TestCanonicalizeDropsEmptyAndEncodesSpacesAsPlus(t *testing.T) {
	got := Canonicalize(map[string]string{
		"b": "2",
		"a": "1 x",
		"c": "",
	})
	want := "a=1+x&b=2"
	if got != want {
		t.Fatalf("unexpected canonical form: got %q want %q", got, want)
	}
}

func TestSignKnownVector(t *testing.T) {
	// Precomputed HMAC-SHA-512 over "a=1+x&b=2" with key "k".
	got := Sign(map[string]string{"b": "2", "a": "1 x", "c": ""}, "k")
	want := "0c38b11f2f7231bd56edec29e23313d8272a658b26c0715aac289a383188b308" +
		"c718d41dfb305b29156772df14c3ce0d86cdfe3a0423390e52892e501fe9e6f7"
	if got != want {
		t.Fatalf("unexpected signature:\n got %s\nwant %s", got, want)
	}
}

func TestSignIsDeterministic(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef": "BIDA-1",
		"vnp_Amount": "9900000",
	}
	first := Sign(params, "secret")
	second := Sign(params, "secret")
	if first != second {
		t.Fatalf("signing is not deterministic: %s != %s", first, second)
	}
}

func TestSignIndependentOfInsertionOrder(t *testing.T) {
	forward := map[string]string{}
	backward := map[string]string{}
	keys := []string{"vnp_Version", "vnp_Command", "vnp_TmnCode", "vnp_Amount", "vnp_TxnRef"}
	for i, key := range keys {
		forward[key] = key + "-value"
		backward[keys[len(keys)-1-i]] = keys[len(keys)-1-i] + "-value"
	}

	if Sign(forward, "secret") != Sign(backward, "secret") {
		t.Fatalf("signature depends on map insertion order")
	}
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":       "BIDA-U1-1700000000000-abcd1234",
		"vnp_Amount":       "9900000",
		"vnp_ResponseCode": "00",
		"vnp_OrderInfo":    "Nang cap hoi vien premium",
	}
	secret := "round-trip-secret"

	signature := Sign(params, secret)
	if !VerifySignature(params, secret, signature) {
		t.Fatalf("round trip verification failed")
	}
	if !VerifySignature(params, secret, "  "+signature+"  ") {
		t.Fatalf("verification must tolerate surrounding whitespace")
	}
}

func TestVerifySignatureRejectsAnyMutation(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":       "BIDA-U1-1700000000000-abcd1234",
		"vnp_Amount":       "9900000",
		"vnp_ResponseCode": "00",
	}
	secret := "mutation-secret"
	signature := Sign(params, secret)

	for key, value := range params {
		mutated := make(map[string]string, len(params))
		for k, v := range params {
			mutated[k] = v
		}
		mutated[key] = value + "x"
		if VerifySignature(mutated, secret, signature) {
			t.Fatalf("mutated value for %q still verified", key)
		}
	}

	flipped := []byte(signature)
	if flipped[0] == '0' {
		flipped[0] = '1'
	} else {
		flipped[0] = '0'
	}
	if VerifySignature(params, secret, string(flipped)) {
		t.Fatalf("mutated signature still verified")
	}

	if VerifySignature(params, "other-secret", signature) {
		t.Fatalf("signature verified under a different secret")
	}
	if VerifySignature(params, secret, "") {
		t.Fatalf("empty signature must not verify")
	}
}
