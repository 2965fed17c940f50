package payments

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateRefShape(t *testing.T) {
	now := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC) // 1700000000000 ms

	ref := GenerateRef("u1a2b3c4-9f86", now)

	parts := strings.Split(ref, "-")
	if len(parts) != 4 {
		t.Fatalf("GenerateRef() = %q, want 4 dash-separated parts", ref)
	}
	if parts[0] != "BIDA" {
		t.Fatalf("GenerateRef() prefix = %q, want BIDA", parts[0])
	}
	if parts[1] != "U1A2B3C4" {
		t.Fatalf("GenerateRef() user fragment = %q, want U1A2B3C4", parts[1])
	}
	if parts[2] != "1700000000000" {
		t.Fatalf("GenerateRef() timestamp = %q, want 1700000000000", parts[2])
	}
	if len(parts[3]) != 8 {
		t.Fatalf("GenerateRef() nonce = %q, want 8 chars", parts[3])
	}
}

func TestGenerateRefHandlesOddUserIDs(t *testing.T) {
	now := time.Now()

	if got := GenerateRef("---", now); !strings.HasPrefix(got, "BIDA-ANON-") {
		t.Fatalf("GenerateRef() = %q, want BIDA-ANON- prefix for non-alphanumeric id", got)
	}
	if got := GenerateRef("abcdefghijklmnop", now); !strings.HasPrefix(got, "BIDA-ABCDEFGH-") {
		t.Fatalf("GenerateRef() = %q, want truncated 8-char fragment", got)
	}
}
