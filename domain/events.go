package domain

import "time"

// Action labels written to the audit ledger. Labels are free-text categorical
// values; these constants cover the mutations this subsystem performs itself.
// Other subsystems supply their own labels ("Update Student", "Delete
// Educator", ...) through the same recorder.
const (
	ActionLogin             = "Login"
	ActionLoginFailed       = "Login Failed"
	ActionLogout            = "Logout"
	ActionStepUpVerified    = "Step-Up Verified"
	ActionStepUpFailed      = "Step-Up Failed"
	ActionCreateAccount     = "Create Account"
	ActionUpdateAccount     = "Update Account"
	ActionDeactivateAccount = "Deactivate Account"
	ActionChangePassword    = "Change Password"
	ActionResetRequested    = "Password Reset Requested"
	ActionResetCompleted    = "Password Reset Completed"
)

// NewAuditRecord builds an unsaved record with the server UTC timestamp. The
// ledger assigns the id on append.
func NewAuditRecord(actorID *string, action, entityID, detail string) *AuditRecord {
	return &AuditRecord{
		ActorID:   actorID,
		Action:    action,
		EntityID:  entityID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

// ActorRef renders the actor for display and CSV export: the referenced
// account id, or empty for system/unauthenticated actions.
func (r *AuditRecord) ActorRef() string {
	if r.ActorID == nil {
		return ""
	}
	return *r.ActorID
}

// Timestamp layout used everywhere the ledger is rendered for humans.
const AuditTimeLayout = "2006-01-02 15:04:05"
