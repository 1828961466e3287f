package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskFieldHidesClaimContent(t *testing.T) {
	masked := MaskField("params", `{"firstName":"Jo","ailment":"flu"}`)
	require.Equal(t, "params", masked.Key)
	require.Equal(t, Redacted, masked.Value.String())

	clear := MaskField("method", "claims_submitClaim")
	require.Equal(t, "claims_submitClaim", clear.Value.String())

	empty := MaskField("note", "")
	require.Equal(t, "", empty.Value.String())
}

func TestOperationalKeysStayPinned(t *testing.T) {
	require.Equal(t, []string{
		"address", "dataDir", "env", "error", "message", "method",
		"outcome", "path", "queueCount", "service", "severity", "signal",
		"timestamp", "token",
	}, OperationalKeys())

	require.True(t, IsOperationalKey("error"))
	require.False(t, IsOperationalKey("firstName"))
	require.False(t, IsOperationalKey("params"))
}
