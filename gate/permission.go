package gate

import (
	"errors"
	"strings"
)

// Action is the kind of operation a user attempts on a resource type.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ErrUnauthorized is returned when the subject lacks the permission.
var ErrUnauthorized = errors.New("unauthorized")

// Permission is a "resource:action" code, e.g. "invoice:create".
type Permission string

const (
	WildcardAll          = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// NewPermission joins a resource type and an action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// ParsePermission reads a "resource:action" code. ok is false when the
// separator or either half is missing.
func ParsePermission(code string) (p Permission, ok bool) {
	res, act, found := strings.Cut(code, ":")
	if !found || res == "" || act == "" {
		return "", false
	}
	return NewPermission(res, Action(act)), true
}

// Parse splits the permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, found := strings.Cut(string(p), ":")
	if !found {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested. "*:*" grants everything and
// "stock:*" grants every action on stock.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res == reqRes && string(act) == WildcardAll
}
