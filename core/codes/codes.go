// Package codes defines the response-code vocabulary shared by natively
// submitted transactions and EVM-triggered ledger operations. A single
// vocabulary lets one audit record format serve both entry paths, so the
// numeric values are wire-stable and must never be reassigned.
package codes

import "fmt"

// Code is the status of a ledger operation. Zero is OK; any other value
// names the first invariant the operation violated.
type Code int32

const (
	OK Code = 0

	InvalidTransaction Code = 1
	InvalidSignature   Code = 7
	FailInvalid        Code = 21
	Success            Code = 22
	NotSupported       Code = 29

	InvalidAccountID                Code = 60
	AccountDeleted                  Code = 61
	AccountExpiredAndPendingRemoval Code = 62

	InvalidTokenID                            Code = 160
	TokenWasDeleted                           Code = 161
	TokenIsPaused                             Code = 162
	TokenHasNoKycKey                          Code = 163
	TokenHasNoFreezeKey                       Code = 164
	TokenHasNoWipeKey                         Code = 165
	TokenHasNoSupplyKey                       Code = 166
	TokenHasNoPauseKey                        Code = 167
	TokenHasNoFeeScheduleKey                  Code = 168
	TokenIsImmutable                          Code = 169
	InvalidExpirationTime                     Code = 170
	InvalidRenewalPeriod                      Code = 171
	InvalidAutorenewAccount                   Code = 172
	AccountFrozenForToken                     Code = 173
	AccountKycNotGrantedForToken              Code = 174
	InsufficientTokenBalance                  Code = 175
	TokenNotAssociatedToAccount               Code = 176
	TokenAlreadyAssociatedToAccount           Code = 177
	TokensPerAccountLimitExceeded             Code = 178
	NoRemainingAutomaticAssociations          Code = 179
	TransactionRequiresZeroTokenBalances      Code = 180
	AccountAmountTransfersOnlyForFungible     Code = 181
	InvalidNftID                              Code = 182
	SenderDoesNotOwnNftSerialNo               Code = 183
	InvalidTokenMintAmount                    Code = 184
	InvalidTokenBurnAmount                    Code = 185
	AccountIsTreasury                         Code = 186
	SpenderDoesNotHaveAllowance               Code = 187
	AmountExceedsAllowance                    Code = 188
	TreasuryMustOwnBurnedNft                  Code = 189
	InvalidAccountAmounts                     Code = 190
	TokenIDRepeatedInTokenList                Code = 191
)

var names = map[Code]string{
	OK:                                    "OK",
	InvalidTransaction:                    "INVALID_TRANSACTION",
	InvalidSignature:                      "INVALID_SIGNATURE",
	FailInvalid:                           "FAIL_INVALID",
	Success:                               "SUCCESS",
	NotSupported:                          "NOT_SUPPORTED",
	InvalidAccountID:                      "INVALID_ACCOUNT_ID",
	AccountDeleted:                        "ACCOUNT_DELETED",
	AccountExpiredAndPendingRemoval:       "ACCOUNT_EXPIRED_AND_PENDING_REMOVAL",
	InvalidTokenID:                        "INVALID_TOKEN_ID",
	TokenWasDeleted:                       "TOKEN_WAS_DELETED",
	TokenIsPaused:                         "TOKEN_IS_PAUSED",
	TokenHasNoKycKey:                      "TOKEN_HAS_NO_KYC_KEY",
	TokenHasNoFreezeKey:                   "TOKEN_HAS_NO_FREEZE_KEY",
	TokenHasNoWipeKey:                     "TOKEN_HAS_NO_WIPE_KEY",
	TokenHasNoSupplyKey:                   "TOKEN_HAS_NO_SUPPLY_KEY",
	TokenHasNoPauseKey:                    "TOKEN_HAS_NO_PAUSE_KEY",
	TokenHasNoFeeScheduleKey:              "TOKEN_HAS_NO_FEE_SCHEDULE_KEY",
	TokenIsImmutable:                      "TOKEN_IS_IMMUTABLE",
	InvalidExpirationTime:                 "INVALID_EXPIRATION_TIME",
	InvalidRenewalPeriod:                  "INVALID_RENEWAL_PERIOD",
	InvalidAutorenewAccount:               "INVALID_AUTORENEW_ACCOUNT",
	AccountFrozenForToken:                 "ACCOUNT_FROZEN_FOR_TOKEN",
	AccountKycNotGrantedForToken:          "ACCOUNT_KYC_NOT_GRANTED_FOR_TOKEN",
	InsufficientTokenBalance:              "INSUFFICIENT_TOKEN_BALANCE",
	TokenNotAssociatedToAccount:           "TOKEN_NOT_ASSOCIATED_TO_ACCOUNT",
	TokenAlreadyAssociatedToAccount:       "TOKEN_ALREADY_ASSOCIATED_TO_ACCOUNT",
	TokensPerAccountLimitExceeded:         "TOKENS_PER_ACCOUNT_LIMIT_EXCEEDED",
	NoRemainingAutomaticAssociations:      "NO_REMAINING_AUTOMATIC_ASSOCIATIONS",
	TransactionRequiresZeroTokenBalances:  "TRANSACTION_REQUIRES_ZERO_TOKEN_BALANCES",
	AccountAmountTransfersOnlyForFungible: "ACCOUNT_AMOUNT_TRANSFERS_ONLY_ALLOWED_FOR_FUNGIBLE_COMMON",
	InvalidNftID:                          "INVALID_NFT_ID",
	SenderDoesNotOwnNftSerialNo:           "SENDER_DOES_NOT_OWN_NFT_SERIAL_NO",
	InvalidTokenMintAmount:                "INVALID_TOKEN_MINT_AMOUNT",
	InvalidTokenBurnAmount:                "INVALID_TOKEN_BURN_AMOUNT",
	AccountIsTreasury:                     "ACCOUNT_IS_TREASURY",
	SpenderDoesNotHaveAllowance:           "SPENDER_DOES_NOT_HAVE_ALLOWANCE",
	AmountExceedsAllowance:                "AMOUNT_EXCEEDS_ALLOWANCE",
	TreasuryMustOwnBurnedNft:              "TREASURY_MUST_OWN_BURNED_NFT",
	InvalidAccountAmounts:                 "INVALID_ACCOUNT_AMOUNTS",
	TokenIDRepeatedInTokenList:            "TOKEN_ID_REPEATED_IN_TOKEN_LIST",
}

func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", int32(c))
}

// IsOK reports whether the code signals a fully valid operation.
func (c Code) IsOK() bool { return c == OK }
