package domain

import "fmt"

// Permission is the capability level granted on a prompt.
// Levels are ordered: read < write < admin.
type Permission string

const (
	PermissionNone  Permission = ""
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// ParsePermission validates a stored or user-supplied permission string.
// Unknown values are rejected instead of being passed through.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return Permission(s), nil
	}
	return PermissionNone, fmt.Errorf("unknown permission %q", s)
}

// Rank returns the ordering value used for capability comparisons.
func (p Permission) Rank() int {
	switch p {
	case PermissionRead:
		return 1
	case PermissionWrite:
		return 2
	case PermissionAdmin:
		return 3
	}
	return 0
}

// Covers reports whether a granted permission satisfies a required one.
func (p Permission) Covers(required Permission) bool {
	return p.Rank() >= required.Rank()
}

// ShareStatus is the lifecycle state of a share. Only active grants access.
type ShareStatus string

const (
	StatusActive  ShareStatus = "active"
	StatusPending ShareStatus = "pending"
	StatusRevoked ShareStatus = "revoked"
	StatusExpired ShareStatus = "expired"
)

// NotificationType classifies sharing notifications.
type NotificationType string

const (
	NotificationPromptShared      NotificationType = "prompt_shared"
	NotificationPermissionChanged NotificationType = "permission_changed"
	NotificationCommentAdded      NotificationType = "comment_added"
	NotificationPromptUpdated     NotificationType = "prompt_updated"
	NotificationCollabInvite      NotificationType = "collaboration_invite"
)

// ParseNotificationType rejects unknown stored values.
func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationPromptShared, NotificationPermissionChanged,
		NotificationCommentAdded, NotificationPromptUpdated, NotificationCollabInvite:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}
