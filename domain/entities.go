package domain

import "time"

// Role is a flat label attached to every account. There is no policy graph;
// authorization checks compare labels directly.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RolePrincipal     Role = "principal"
	RoleRegistrar     Role = "registrar"
	RoleTeacherLevel1 Role = "teacher_level_1"
	RoleTeacherLevel2 Role = "teacher_level_2"
	RoleTeacherLevel3 Role = "teacher_level_3"
	RoleStudentGrade1 Role = "student_grade_1"
	RoleStudentGrade2 Role = "student_grade_2"
	RoleStudentGrade3 Role = "student_grade_3"
)

// AllRoles lists every recognized role label.
var AllRoles = []Role{
	RoleAdministrator, RolePrincipal, RoleRegistrar,
	RoleTeacherLevel1, RoleTeacherLevel2, RoleTeacherLevel3,
	RoleStudentGrade1, RoleStudentGrade2, RoleStudentGrade3,
}

// Valid reports whether r is one of the recognized role labels.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStudent reports whether r is one of the student grade roles.
func (r Role) IsStudent() bool {
	switch r {
	case RoleStudentGrade1, RoleStudentGrade2, RoleStudentGrade3:
		return true
	}
	return false
}

// RequiresStepUp reports whether a login with this role must pass the OTP
// challenge before a session is issued. Students go straight to a session;
// every elevated role steps up.
func (r Role) RequiresStepUp() bool {
	return r.Valid() && !r.IsStudent()
}

// CanManageAccounts reports whether the role may provision, edit or deactivate
// accounts and read the audit ledger.
func (r Role) CanManageAccounts() bool {
	switch r {
	case RoleAdministrator, RolePrincipal, RoleRegistrar:
		return true
	}
	return false
}

// Destination returns the post-login redirect intent for the role. Resolved
// once on the server so clients never re-derive routing from the role label.
func (r Role) Destination() string {
	switch r {
	case RoleAdministrator:
		return "/admin/dashboard"
	case RolePrincipal:
		return "/principal/dashboard"
	case RoleRegistrar:
		return "/registrar/dashboard"
	case RoleTeacherLevel1, RoleTeacherLevel2, RoleTeacherLevel3:
		return "/teacher/dashboard"
	case RoleStudentGrade1, RoleStudentGrade2, RoleStudentGrade3:
		return "/student/home"
	}
	return "/"
}

// ProfileKind tells which kind of profile an account is linked to.
type ProfileKind string

const (
	ProfileNone     ProfileKind = ""
	ProfileStudent  ProfileKind = "student"
	ProfileEducator ProfileKind = "educator"
)

// Account is the identity record. The credential hash lives here and only
// here; linked profiles reference the account rather than carrying their own
// copy of the password material.
type Account struct {
	ID           uint
	Username     string
	PasswordHash string
	DisplayName  string
	Phone        string
	Role         Role
	ProfileKind  ProfileKind
	ProfileID    *uint
	GradeLevel   string
	AvatarURL    string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated subject of a session. It is rebuilt from the
// signed session token on every request, never re-read from the account store.
type Principal struct {
	AccountID  uint
	Username   string
	Role       Role
	ProfileID  *uint
	GradeLevel string
	SessionID  string
}

// PendingLogin is the outcome of primary credential authentication. When
// StepUpRequired is set the caller must drive the OTP challenge before asking
// for a session.
type PendingLogin struct {
	Principal      *Principal
	LoginRef       string
	StepUpRequired bool
	Contact        string
	Destination    string
}

// AuthResult is a minted session: the signed token plus what the client needs
// to route itself.
type AuthResult struct {
	Principal   *Principal
	AccessToken string
	SessionID   string
	ExpiresIn   int64
	Destination string
}

// Session is the server-side session row backing token revocation.
type Session struct {
	ID        string
	AccountID uint
	ExpiresAt time.Time
	CreatedAt time.Time
}

// OneTimeCode is a single challenge. At most one active (unconsumed,
// unexpired) code exists per key; issuing a new one supersedes the old.
// Once Consumed flips true the record is frozen.
type OneTimeCode struct {
	Key       string    `json:"key"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// Remaining returns the seconds left before expiry at the given instant,
// floored at zero. Presentation only; Verify re-checks expiry server-side.
func (c *OneTimeCode) Remaining(now time.Time) int64 {
	if !now.Before(c.ExpiresAt) {
		return 0
	}
	return int64(c.ExpiresAt.Sub(now).Seconds())
}

// ResetGrant is the short-lived, single-use capability minted after a
// successful reset-flow OTP verification. Distinct from a login session.
type ResetGrant struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuditRecord is one immutable row of the append-only ledger. ActorID is nil
// for system or unauthenticated actions and is kept as a weak reference: the
// record survives removal of the account it points at.
type AuditRecord struct {
	ID        uint
	ActorID   *string
	Action    string
	EntityID  string
	Detail    string
	CreatedAt time.Time
}

// AuditFilter selects and orders ledger rows. Dimensions combine with AND;
// the free-text search ORs across actor, action and entity id.
type AuditFilter struct {
	Search   string
	Action   string
	From     *time.Time
	To       *time.Time
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}

// AuditPage is one page of query results plus the totals the client needs to
// render pagination.
type AuditPage struct {
	Records    []AuditRecord
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}
