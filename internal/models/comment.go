package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// CommentOwnerKind tags which entity a comment hangs off.
type CommentOwnerKind string

const (
	CommentOwnerFile CommentOwnerKind = "file"
	CommentOwnerTask CommentOwnerKind = "task"
)

// Valid reports whether k is a known owner kind.
func (k CommentOwnerKind) Valid() bool {
	return k == CommentOwnerFile || k == CommentOwnerTask
}

// Comment belongs to exactly one owner, identified by (OwnerKind, OwnerID).
type Comment struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	OwnerKind    CommentOwnerKind `gorm:"type:varchar(10);not null;index:idx_comments_owner;check:chk_comments_owner_kind,owner_kind IN ('file','task')" json:"owner_kind"`
	OwnerID      uint64           `gorm:"not null;index:idx_comments_owner" json:"owner_id"`
	Text         string           `gorm:"type:text;not null" json:"text"`
	Mentions     datatypes.JSON   `json:"mentions"`
	UserID       uint64           `gorm:"not null;index" json:"user_id"`
	TargetUserID string           `gorm:"type:varchar(255)" json:"target_user_id"`
	Timestamp    time.Time        `gorm:"not null" json:"timestamp"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// EncodeMentions serializes mentions into the stored blob; an empty list is stored as NULL.
func EncodeMentions(mentions []string) (datatypes.JSON, error) {
	if len(mentions) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(mentions)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeMentions is the inverse of EncodeMentions. A NULL blob yields nil.
func (c Comment) DecodeMentions() ([]string, error) {
	if len(c.Mentions) == 0 {
		return nil, nil
	}
	var mentions []string
	if err := json.Unmarshal(c.Mentions, &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}
