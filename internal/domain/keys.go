package domain

import "context"

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// Roles carried in the access token.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

// Actor is the authenticated caller of a usecase.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
func (a Actor) IsRecruiter() bool { return a.Role == RoleRecruiter || a.Role == RoleAdmin }

// WithActor stores the caller in ctx under the same keys the HTTP layer uses.
func WithActor(ctx context.Context, a Actor) context.Context {
	ctx = context.WithValue(ctx, KeyUserID, a.UserID)
	ctx = context.WithValue(ctx, KeyUserEmail, a.Email)
	return context.WithValue(ctx, KeyUserRole, a.Role)
}

// ActorFromContext returns the caller, ok is false when no user id is present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	userID, _ := ctx.Value(KeyUserID).(string)
	if userID == "" {
		return Actor{}, false
	}
	email, _ := ctx.Value(KeyUserEmail).(string)
	role, _ := ctx.Value(KeyUserRole).(string)
	return Actor{UserID: userID, Email: email, Role: role}, true
}
