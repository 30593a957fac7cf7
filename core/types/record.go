package types

// StorageChange is one observed slot access within an EVM call: the value
// read, and the value written when the slot was mutated.
type StorageChange struct {
	Address      [20]byte  `json:"address"`
	Slot         [32]byte  `json:"slot"`
	ValueRead    [32]byte  `json:"valueRead"`
	ValueWritten *[32]byte `json:"valueWritten,omitempty"`
}

// TransactionReceipt carries the operation-specific consensus outputs.
type TransactionReceipt struct {
	Status         string   `json:"status"`
	NewTotalSupply uint64   `json:"newTotalSupply,omitempty"`
	SerialNumbers  []uint64 `json:"serialNumbers,omitempty"`
}

// TransactionRecord is the consensus record produced for every
// transaction, synthetic or native. Mirror and audit consumers see one
// record per EVM-triggered mutation with gas and call parameters
// populated even on failure.
type TransactionRecord struct {
	ID              TransactionID      `json:"id"`
	Receipt         TransactionReceipt `json:"receipt"`
	Memo            string             `json:"memo,omitempty"`
	GasUsed         uint64             `json:"gasUsed"`
	Bloom           []byte             `json:"bloom,omitempty"`
	CallResult      []byte             `json:"callResult,omitempty"`
	Error           string             `json:"error,omitempty"`
	ContractID      uint64             `json:"contractId,omitempty"`
	CreatedIDs      []uint64           `json:"createdIds,omitempty"`
	StateChanges    []StorageChange    `json:"stateChanges,omitempty"`
	EvmAddress      []byte             `json:"evmAddress,omitempty"`
	FunctionParams  []byte             `json:"functionParams,omitempty"`
	ConsensusSecond uint64             `json:"consensusSecond"`
}
