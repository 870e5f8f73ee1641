package dto

import (
	"time"

	"github.com/custor/portal-api/internal/models"
)

type CommentRoleDTO struct {
	RoleKey  uint64 `json:"roleKey"`
	RoleName string `json:"roleName"`
}

type CommentUserDTO struct {
	UserKey   uint64         `json:"userKey"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      CommentRoleDTO `json:"role"`
}

// CommentDTO mirrors the stored comment. Mentions is the serialized list
// exactly as stored, or null.
type CommentDTO struct {
	ID           uint64          `json:"id"`
	Content      string          `json:"content"`
	UserID       uint64          `json:"userId"`
	Author       string          `json:"author"`
	TargetUserID string          `json:"targetUserId"`
	Timestamp    time.Time       `json:"timestamp"`
	Mentions     *string         `json:"mentions"`
	User         *CommentUserDTO `json:"user,omitempty"`
}

// ToCommentDTO converts a comment. withUser adds the nested author block
// used by list responses.
func ToCommentDTO(comment models.Comment, withUser bool) CommentDTO {
	dto := CommentDTO{
		ID:           comment.ID,
		Content:      comment.Text,
		UserID:       comment.UserID,
		Author:       comment.User.Email,
		TargetUserID: comment.TargetUserID,
		Timestamp:    comment.Timestamp,
	}
	if len(comment.Mentions) > 0 {
		raw := string(comment.Mentions)
		dto.Mentions = &raw
	}
	if withUser {
		dto.User = &CommentUserDTO{
			UserKey:   comment.User.ID,
			Email:     comment.User.Email,
			FirstName: comment.User.FirstName,
			LastName:  comment.User.LastName,
			Role: CommentRoleDTO{
				RoleKey:  comment.User.Role.ID,
				RoleName: comment.User.Role.Name,
			},
		}
	}
	return dto
}

func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, len(comments))
	for i, c := range comments {
		out[i] = ToCommentDTO(c, true)
	}
	return out
}
