package codes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWireStableValues(t *testing.T) {
	// These values appear in persisted records and ABI status words.
	require.Equal(t, Code(0), OK)
	require.Equal(t, Code(7), InvalidSignature)
	require.Equal(t, Code(22), Success)
	require.Equal(t, Code(160), InvalidTokenID)
	require.Equal(t, Code(176), TokenNotAssociatedToAccount)
	require.Equal(t, Code(190), InvalidAccountAmounts)
}

func TestString(t *testing.T) {
	require.Equal(t, "SUCCESS", Success.String())
	require.Equal(t, "TOKEN_NOT_ASSOCIATED_TO_ACCOUNT", TokenNotAssociatedToAccount.String())
	require.Equal(t,
		"ACCOUNT_AMOUNT_TRANSFERS_ONLY_ALLOWED_FOR_FUNGIBLE_COMMON",
		AccountAmountTransfersOnlyForFungible.String())
	require.Equal(t, "CODE_9999", Code(9999).String())
}

func TestIsOK(t *testing.T) {
	require.True(t, OK.IsOK())
	require.False(t, Success.IsOK())
	require.False(t, InvalidTokenID.IsOK())
}
