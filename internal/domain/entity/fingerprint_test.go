package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintDistance(t *testing.T) {
	a := Fingerprint(0xF0F0F0F0F0F0F0F0)
	b := Fingerprint(0x0F0F0F0F0F0F0F0F)

	require.Equal(t, 0, a.Distance(a))
	require.Equal(t, 64, a.Distance(b))
	require.Equal(t, a.Distance(b), b.Distance(a))
	require.Equal(t, 1, Fingerprint(0).Distance(Fingerprint(1<<63)))
}

func TestFingerprintDistanceSymmetric(t *testing.T) {
	values := []Fingerprint{0, 1, 0xdeadbeefcafebabe, 0x8000000000000001, ^Fingerprint(0)}
	for _, a := range values {
		for _, b := range values {
			require.Equal(t, a.Distance(b), b.Distance(a))
			require.GreaterOrEqual(t, a.Distance(b), 0)
			require.LessOrEqual(t, a.Distance(b), FingerprintBits)
		}
	}
}

func TestFingerprintHex(t *testing.T) {
	f := Fingerprint(0x00ab00cd00ef0012)
	require.Equal(t, "00ab00cd00ef0012", f.String())

	parsed, err := ParseFingerprint("00AB00CD00EF0012")
	require.NoError(t, err)
	require.Equal(t, f, parsed)
}

func TestParseFingerprint_Invalid(t *testing.T) {
	for _, s := range []string{"", "abc", "zz00000000000000", "00ab00cd00ef00120"} {
		_, err := ParseFingerprint(s)
		require.Error(t, err, s)
	}
}
