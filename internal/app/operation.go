package app

import "encoding/json"

// Operation names recorded in the journal.
const (
	OpCreateUser     = "CreateUser"
	OpAddItems       = "AddItems"
	OpRemoveItems    = "RemoveItems"
	OpGrant          = "Grant"
	OpRevoke         = "Revoke"
	OpRate           = "Rate"
	OpView           = "View"
	OpRecommend      = "Recommend"
	OpUpdateMetadata = "UpdateMetadata"
	OpSnapshot       = "Snapshot"
	OpRestore        = "RestoreSnapshot"
)

// Operation tracks a CLI command that may mutate the catalog.
// It lives in memory with ID 0 until the first mutation persists it; the
// journal id then becomes the version of the snapshot taken on Close.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}

// NewOperation creates an in-memory operation. params are stored as a JSON
// object; encoding/json sorts the keys.
func NewOperation(operation string, params map[string]string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: encodeParameters(params),
		Status:     "success",
	}
}

// Persisted reports whether the operation has a journal row.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed when err is non-nil and returns err.
func (op *Operation) Fail(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

func encodeParameters(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(data)
}
