package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	s := "friendly and casual"
	assert.Equal(t, Fingerprint(s), Fingerprint(s))
	assert.Len(t, Fingerprint(s), 64)
	// SHA-256 of the empty string
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(""))
}

func TestFingerprint_DistinctInputs(t *testing.T) {
	corpus := []string{
		"friendly and casual",
		"Friendly and casual",
		"friendly and casual ",
		"formal, mention the espresso",
		"mention parking",
		"",
		"ünïcode strategy",
	}
	seen := map[string]string{}
	for _, s := range corpus {
		fp := Fingerprint(s)
		if prev, ok := seen[fp]; ok {
			t.Fatalf("collision between %q and %q", prev, s)
		}
		seen[fp] = s
	}
}
