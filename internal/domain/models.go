package domain

import (
	"time"
)

// Prompt is the owned text record everything else hangs off.
// VersionSeq backs version numbering; it is only ever touched inside the
// version ledger's commit transaction.
type Prompt struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `json:"content"`
	OwnerID    string    `gorm:"index;not null" json:"owner_id"`
	OwnerName  string    `json:"owner_name"`
	VersionSeq uint64    `gorm:"not null;default:0" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ShareLink is a bearer token granting time- and use-bounded access
// to a prompt at a fixed permission level.
type ShareLink struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	PromptID       uint64     `gorm:"index;not null" json:"prompt_id"`
	Token          string     `gorm:"uniqueIndex;not null" json:"token"`
	Permission     Permission `gorm:"type:varchar(16);not null" json:"permission"`
	CreatedBy      string     `gorm:"index;not null" json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	CurrentUses    int        `gorm:"not null;default:0" json:"current_uses"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	Description    string     `gorm:"default:''" json:"description"`
}

// Usable reports whether the link still grants access at the given time.
func (l *ShareLink) Usable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiresAt != nil && !now.Before(*l.ExpiresAt) {
		return false
	}
	if l.MaxUses != nil && l.CurrentUses >= *l.MaxUses {
		return false
	}
	return true
}

// Collaborator is a durable named party with a standing permission on a
// prompt. Unique per (prompt_id, user_id); removal is a soft delete.
type Collaborator struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	PromptID     uint64     `gorm:"uniqueIndex:idx_collab_prompt_user;not null" json:"prompt_id"`
	UserID       string     `gorm:"uniqueIndex:idx_collab_prompt_user;not null" json:"user_id"`
	UserName     string     `json:"user_name"`
	Email        string     `json:"email"`
	Permission   Permission `gorm:"type:varchar(16);not null" json:"permission"`
	AddedAt      time.Time  `json:"added_at"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
}

// PromptVersion is one snapshot in the append-only version ledger.
// Version numbers are contiguous from 1 and exactly one row per prompt
// carries is_current once a version exists.
type PromptVersion struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	PromptID      uint64    `gorm:"uniqueIndex:idx_version_prompt_number;not null" json:"prompt_id"`
	VersionNumber uint64    `gorm:"uniqueIndex:idx_version_prompt_number;not null" json:"version_number"`
	Title         string    `gorm:"not null" json:"title"`
	Content       string    `gorm:"not null" json:"content"`
	CreatedBy     string    `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	ChangeSummary string    `gorm:"default:''" json:"change_summary"`
	IsCurrent     bool      `gorm:"default:false" json:"is_current"`
}

// ShareActivity is one row of the append-only audit trail. Rows are never
// updated or deleted.
type ShareActivity struct {
	ID        uint64         `gorm:"primaryKey" json:"id"`
	PromptID  uint64         `gorm:"index;not null" json:"prompt_id"`
	UserID    string         `gorm:"not null" json:"user_id"`
	UserName  string         `json:"user_name"`
	Action    string         `gorm:"not null" json:"action"`
	Details   string         `json:"details"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
	Metadata  map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
}

// ShareNotification is a per-user inbox entry. Only the owning user may
// flip the read flag.
type ShareNotification struct {
	ID         uint64           `gorm:"primaryKey" json:"id"`
	UserID     string           `gorm:"index;not null" json:"user_id"`
	Type       NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title      string           `gorm:"not null" json:"title"`
	Message    string           `json:"message"`
	PromptID   *uint64          `json:"prompt_id,omitempty"`
	SenderID   *string          `json:"sender_id,omitempty"`
	SenderName *string          `json:"sender_name,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	IsRead     bool             `gorm:"default:false" json:"is_read"`
	Metadata   map[string]any   `gorm:"serializer:json" json:"metadata,omitempty"`
}

// PromptComment is one node of the threaded discussion on a prompt.
// ParentID forms the reply tree; comments are resolved, never deleted.
type PromptComment struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	PromptID   uint64     `gorm:"index;not null" json:"prompt_id"`
	UserID     string     `gorm:"not null" json:"user_id"`
	UserName   string     `json:"user_name"`
	Content    string     `gorm:"not null" json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	ParentID   *uint64    `json:"parent_id,omitempty"`
	IsResolved bool       `gorm:"default:false" json:"is_resolved"`
}
