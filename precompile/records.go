package precompile

import "heliochain/core/types"

// RecordsHistorian collects one consensus record per EVM-triggered
// mutation, successful or not, attached to the enclosing transaction in
// call order. Scoped to one transaction-processing context.
type RecordsHistorian struct {
	records []*types.TransactionRecord
}

// NewRecordsHistorian returns an empty historian.
func NewRecordsHistorian() *RecordsHistorian {
	return &RecordsHistorian{}
}

// TrackPrecompileRecord appends the record.
func (h *RecordsHistorian) TrackPrecompileRecord(record *types.TransactionRecord) {
	h.records = append(h.records, record)
}

// Records returns the tracked records in call order.
func (h *RecordsHistorian) Records() []*types.TransactionRecord {
	return h.records
}

// Reset clears the historian between transactions.
func (h *RecordsHistorian) Reset() {
	h.records = nil
}
