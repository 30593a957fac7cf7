// Package types holds the transaction-shaped structures shared by the
// native submission path and the EVM precompile bridge. A synthetic body
// built for an EVM-triggered mutation uses the same schema as a directly
// submitted transaction, so the consensus record is uniform regardless of
// entry path.
package types

// TransactionID identifies a transaction by its payer and a
// consensus-adjacent nonce. Synthetic transactions derive theirs from the
// EVM frame's payer.
type TransactionID struct {
	Payer          uint64 `json:"payer"`
	ValidStartSecs uint64 `json:"validStartSecs"`
	Nonce          uint32 `json:"nonce"`
}

// AccountAmount is one leg of a fungible transfer list.
type AccountAmount struct {
	Account uint64 `json:"account"`
	Amount  int64  `json:"amount"`
}

// NftExchange moves one serial between two accounts.
type NftExchange struct {
	Sender   uint64 `json:"sender"`
	Receiver uint64 `json:"receiver"`
	Serial   uint64 `json:"serial"`
}

// TokenTransferList groups the balance adjustments and serial exchanges
// of one token within a transfer.
type TokenTransferList struct {
	Token        uint64          `json:"token"`
	Adjustments  []AccountAmount `json:"adjustments,omitempty"`
	NftExchanges []NftExchange   `json:"nftExchanges,omitempty"`
}

// AssociateBody links an account with one or more tokens.
type AssociateBody struct {
	Account uint64   `json:"account"`
	Tokens  []uint64 `json:"tokens"`
}

// DissociateBody unlinks an account from one or more tokens.
type DissociateBody struct {
	Account uint64   `json:"account"`
	Tokens  []uint64 `json:"tokens"`
}

// MintBody mints fungible units or new serials to the token treasury.
type MintBody struct {
	Token    uint64   `json:"token"`
	Amount   uint64   `json:"amount,omitempty"`
	Metadata [][]byte `json:"metadata,omitempty"`
}

// BurnBody burns fungible units or treasury-held serials.
type BurnBody struct {
	Token   uint64   `json:"token"`
	Amount  uint64   `json:"amount,omitempty"`
	Serials []uint64 `json:"serials,omitempty"`
}

// CryptoTransferBody carries one or more token transfer lists.
type CryptoTransferBody struct {
	Transfers []TokenTransferList `json:"transfers"`
}

// ApproveBody grants a fungible allowance or a serial/operator approval.
type ApproveBody struct {
	Token          uint64 `json:"token"`
	Owner          uint64 `json:"owner"`
	Spender        uint64 `json:"spender"`
	Amount         uint64 `json:"amount,omitempty"`
	Serial         uint64 `json:"serial,omitempty"`
	ApprovedForAll bool   `json:"approvedForAll,omitempty"`
}

// TransactionBody is the native-transaction-shaped audit record. Exactly
// one operation field is set.
type TransactionBody struct {
	ID               TransactionID       `json:"id"`
	Memo             string              `json:"memo,omitempty"`
	Associate        *AssociateBody      `json:"associate,omitempty"`
	Dissociate       *DissociateBody     `json:"dissociate,omitempty"`
	MintToken        *MintBody           `json:"mintToken,omitempty"`
	BurnToken        *BurnBody           `json:"burnToken,omitempty"`
	CryptoTransfer   *CryptoTransferBody `json:"cryptoTransfer,omitempty"`
	ApproveAllowance *ApproveBody        `json:"approveAllowance,omitempty"`
}
