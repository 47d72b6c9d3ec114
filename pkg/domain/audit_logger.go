package domain

// EntityRef names the record an audit event is about.
type EntityRef struct {
	Type string
	ID   string
}

// IntakeRef is the EntityRef of an intake.
func IntakeRef(id string) EntityRef {
	return EntityRef{Type: "intake", ID: id}
}

// AuditLogger records audit events. Services depend on this interface
// rather than on the audit service itself.
type AuditLogger interface {
	Log(action string, actor string, entity EntityRef, metadata map[string]interface{}) error
}
