package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Audit actions recorded by the services.
const (
	ActionIntakeCreated      = "intake.created"
	ActionIntakeTransitioned = "intake.transitioned"
	ActionSpecSaved          = "intake.spec_saved"
	ActionIntakeRouted       = "intake.routed"
	ActionApprovalRecorded   = "intake.approval_recorded"
	ActionIntakeExported     = "intake.exported"
	ActionPolicyUpdated      = "policy.updated"
)

// Event is one entry of the tamper-evident audit trail.
type Event struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Action     string                 `json:"action"`
	Actor      string                 `json:"actor"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityID   string                 `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	PrevHash   string                 `json:"prev_hash,omitempty"`
	Hash       string                 `json:"hash,omitempty"`
}

// CalculateHash returns the SHA256 of the event content chained to PrevHash.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Actor))
	h.Write([]byte(e.EntityType))
	h.Write([]byte(e.EntityID))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON renders metadata with sorted keys so hashes are stable.
func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]byte, 0, 256)
	out = append(out, '{')
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		out = append(out, keyJSON...)
		out = append(out, ':')
		out = append(out, valJSON...)
	}
	out = append(out, '}')

	return string(out)
}
