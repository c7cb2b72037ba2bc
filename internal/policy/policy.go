// Package policy decides whether an actor may perform an action on a resource.
//
// Decisions are pure: they depend only on the actor, the action, the resource
// kind and, for owned resources, the owner id. Callers evaluate the policy
// before touching the store for a mutation.
package policy

import (
	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/apperror"
	"github.com/google/uuid"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceCategory Resource = "category"
	ResourceGenre    Resource = "genre"
	ResourceTitle    Resource = "title"
	ResourceReview   Resource = "review"
	ResourceComment  Resource = "comment"
	ResourceUser     Resource = "user"
	// ResourceProfile is the caller's own user record reached through /users/me.
	ResourceProfile Resource = "profile"
)

// Actor is the identity a request acts as. A nil *Actor is an anonymous caller.
type Actor struct {
	ID          uuid.UUID
	Username    string
	Role        entity.Role
	IsSuperuser bool
}

func ActorFromUser(u *entity.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsSuperuser: u.IsSuperuser,
	}
}

func (a *Actor) IsAdmin() bool {
	return a != nil && (a.IsSuperuser || a.Role == entity.RoleAdmin)
}

func (a *Actor) IsModerator() bool {
	return a != nil && a.Role == entity.RoleModerator
}

type rule int

const (
	deny rule = iota
	anyone
	authenticated
	ownerOrStaff
	adminOnly
)

var capabilities = map[Resource]map[Action]rule{
	ResourceCategory: adminWrites(),
	ResourceGenre:    adminWrites(),
	ResourceTitle:    adminWrites(),
	ResourceReview:   ownedContent(),
	ResourceComment:  ownedContent(),
	ResourceUser: {
		ActionRead:   adminOnly,
		ActionCreate: adminOnly,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
	},
	ResourceProfile: {
		ActionRead:   authenticated,
		ActionUpdate: authenticated,
	},
}

func adminWrites() map[Action]rule {
	return map[Action]rule{
		ActionRead:   anyone,
		ActionCreate: adminOnly,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
	}
}

func ownedContent() map[Action]rule {
	return map[Action]rule{
		ActionRead:   anyone,
		ActionCreate: authenticated,
		ActionUpdate: ownerOrStaff,
		ActionDelete: ownerOrStaff,
	}
}

// Authorize returns nil when actor may perform action on resource.
// owner is the author of the target instance and is ignored for resources
// that are not owned. Anonymous callers get ErrUnauthorized where signing in
// could help and authenticated callers get ErrForbidden.
func Authorize(actor *Actor, action Action, resource Resource, owner uuid.UUID) error {
	r := capabilities[resource][action]

	switch r {
	case anyone:
		return nil
	case deny:
		if actor == nil {
			return apperror.ErrUnauthorized
		}
		return apperror.ErrForbidden
	}

	if actor == nil {
		return apperror.ErrUnauthorized
	}

	switch r {
	case authenticated:
		return nil
	case ownerOrStaff:
		if actor.ID == owner || actor.IsModerator() || actor.IsAdmin() {
			return nil
		}
	case adminOnly:
		if actor.IsAdmin() {
			return nil
		}
	}
	return apperror.ErrForbidden
}

// User fields that may be written through each user path. role is absent from
// the self-service path.
var writableUserFields = map[Resource]map[string]bool{
	ResourceUser: {
		"username":   true,
		"email":      true,
		"first_name": true,
		"last_name":  true,
		"bio":        true,
		"role":       true,
	},
	ResourceProfile: {
		"username":   true,
		"email":      true,
		"first_name": true,
		"last_name":  true,
		"bio":        true,
	},
}

// CanWriteUserField reports whether field is writable through the user path
// identified by resource (ResourceUser or ResourceProfile).
func CanWriteUserField(resource Resource, field string) bool {
	return writableUserFields[resource][field]
}
