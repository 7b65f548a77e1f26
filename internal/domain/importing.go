package domain

type ImportStatus string

const (
	ImportStatusOK    ImportStatus = "ok"
	ImportStatusError ImportStatus = "error"
)

type ImportMode string

const (
	ImportModeSync  ImportMode = "sync"
	ImportModeAsync ImportMode = "async"
)

type ImportError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportResult summarises one CSV import. In async mode Imported and Failed
// stay zero: the chunk workers account for them in their own logs, keyed by BatchID.
type ImportResult struct {
	Status    ImportStatus  `json:"status"`
	Mode      ImportMode    `json:"mode"`
	Imported  int           `json:"imported"`
	Failed    int           `json:"failed"`
	Processed int           `json:"processed"`
	Chunks    int           `json:"chunks"`
	BatchID   string        `json:"batch_id,omitempty"`
	Errors    []ImportError `json:"errors"`
}

// ImportChunk is the unit handed to an asynchronous chunk worker.
type ImportChunk struct {
	BatchID  string              `json:"batch_id"`
	Sequence int                 `json:"sequence"`
	RaffleID uint                `json:"raffle_id"`
	Records  []ParticipantRecord `json:"records"`
}
