package config

import (
	"fmt"
)

// StoreKeyStruct builds namespaced keys for the local persistence layer.
// The schema version is part of the key itself, so a format change rolls
// over to fresh keys instead of tripping over stale envelopes.
type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// SessionKey returns the key for a student's in-progress attempt envelope.
func (r *StoreKeyStruct) SessionKey(studentID string) string {
	return fmt.Sprintf("jszs:v2:student:%s:session", studentID)
}

// HistoryKey returns the key for a student's history ledger.
func (r *StoreKeyStruct) HistoryKey(studentID string) string {
	return fmt.Sprintf("jszs:v2:student:%s:history", studentID)
}

// PendingKey returns the key for a student's single pending submission slot.
func (r *StoreKeyStruct) PendingKey(studentID string) string {
	return fmt.Sprintf("jszs:v2:student:%s:pending_submission", studentID)
}

var StoreKey = NewStoreKeyStruct()
