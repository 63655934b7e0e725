package domain

// Role determines which marketplace surface a session acts on.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ValidRole reports whether r is one of the two marketplace roles.
func ValidRole(r Role) bool {
	return r == RoleBuyer || r == RoleSeller
}

// Session is the authenticated identity and active role of the running
// client. There is exactly one authoritative instance per process, owned by
// the session service; the on-disk mirror is a cache, never the source of
// truth while the process is alive.
//
// The four fields are all-or-nothing: anything in between is a defined error
// condition and is treated as anonymous.
type Session struct {
	AuthToken   string `json:"authToken"`
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
	ActiveRole  Role   `json:"activeRole"`
}

// Authenticated reports whether all four identity fields are present.
func (s Session) Authenticated() bool {
	return s.AuthToken != "" && s.DisplayName != "" && s.UserID != "" && s.ActiveRole != ""
}

// Empty reports whether no identity field is present.
func (s Session) Empty() bool {
	return s.AuthToken == "" && s.DisplayName == "" && s.UserID == "" && s.ActiveRole == ""
}

// Partial reports whether the session violates the all-or-nothing invariant:
// some identity fields present, others absent.
func (s Session) Partial() bool {
	return !s.Authenticated() && !s.Empty()
}
