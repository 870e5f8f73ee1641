package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentService manages comments on files and tasks and turns their
// mentions into notifications.
type CommentService struct {
	store         repository.Store
	notifications *NotificationService
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	store repository.Store,
	notifications *NotificationService,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		store:         store,
		notifications: notifications,
		metrics:       appMetrics,
		logger:        logger,
	}
}

// CommentInput represents the body of a comment create or update.
type CommentInput struct {
	Content      string
	Mentions     []string
	UserID       uint64
	TargetUserID string
}

// commentOwner is the resolved entity a comment is attached to.
type commentOwner struct {
	kind  models.CommentOwnerKind
	id    uint64
	label string
}

type ownerLookup func(tx repository.Store) (commentOwner, error)

func (s *CommentService) fileByID(ctx context.Context, fileID uint64) ownerLookup {
	return func(tx repository.Store) (commentOwner, error) {
		file, err := tx.Files().FindByID(ctx, fileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return commentOwner{}, ErrFileNotFound
			}
			return commentOwner{}, fmt.Errorf("failed to find file: %w", err)
		}
		return commentOwner{kind: models.CommentOwnerFile, id: file.ID, label: "file " + file.Name}, nil
	}
}

func (s *CommentService) fileByName(ctx context.Context, name string) ownerLookup {
	return func(tx repository.Store) (commentOwner, error) {
		file, err := tx.Files().FindCurrentByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return commentOwner{}, ErrFileNotFound
			}
			return commentOwner{}, fmt.Errorf("failed to find file: %w", err)
		}
		return commentOwner{kind: models.CommentOwnerFile, id: file.ID, label: "file " + file.Name}, nil
	}
}

func (s *CommentService) taskByID(ctx context.Context, taskID uint64) ownerLookup {
	return func(tx repository.Store) (commentOwner, error) {
		task, err := tx.Tasks().FindByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return commentOwner{}, ErrTaskNotFound
			}
			return commentOwner{}, fmt.Errorf("failed to find task: %w", err)
		}
		return commentOwner{kind: models.CommentOwnerTask, id: task.ID, label: "task " + task.Title}, nil
	}
}

func (s *CommentService) CreateFileComment(ctx context.Context, fileID uint64, input CommentInput) (*models.Comment, error) {
	return s.create(ctx, input, s.fileByID(ctx, fileID))
}

// CreateFileCommentByName attaches the comment to the current file with that name.
func (s *CommentService) CreateFileCommentByName(ctx context.Context, fileName string, input CommentInput) (*models.Comment, error) {
	return s.create(ctx, input, s.fileByName(ctx, fileName))
}

func (s *CommentService) CreateTaskComment(ctx context.Context, taskID uint64, input CommentInput) (*models.Comment, error) {
	return s.create(ctx, input, s.taskByID(ctx, taskID))
}

func (s *CommentService) create(ctx context.Context, input CommentInput, lookup ownerLookup) (*models.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalidInput("Comment cannot be empty")
	}

	mentions, err := models.EncodeMentions(input.Mentions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mentions: %w", err)
	}

	var comment *models.Comment
	var notifications []models.Notification

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		owner, err := lookup(tx)
		if err != nil {
			return err
		}
		if !owner.kind.Valid() {
			return fmt.Errorf("unknown comment owner kind %q", owner.kind)
		}

		author, err := tx.Users().FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		comment = &models.Comment{
			OwnerKind:    owner.kind,
			OwnerID:      owner.id,
			Text:         input.Content,
			Mentions:     mentions,
			UserID:       author.ID,
			TargetUserID: input.TargetUserID,
			Timestamp:    time.Now().UTC(),
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		comment.User = *author

		message := fmt.Sprintf("%s mentioned you in a comment on %s", author.FullName(), owner.label)
		notifications, err = s.notifyMentions(ctx, tx, comment.ID, input.Mentions, "Mentioned in Comment", message)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Delivered(ctx, notifications...)
	s.logger.Info("comment created",
		zap.Uint64("comment_id", comment.ID),
		zap.String("owner_kind", string(comment.OwnerKind)),
		zap.Uint64("owner_id", comment.OwnerID),
		zap.Int("mentions_notified", len(notifications)),
	)
	return comment, nil
}

// notifyMentions inserts one comment notification per resolved mention.
func (s *CommentService) notifyMentions(
	ctx context.Context,
	tx repository.Store,
	commentID uint64,
	mentions []string,
	title, message string,
) ([]models.Notification, error) {
	users, err := resolveMentions(ctx, tx.Users(), mentions)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	relatedType := constants.RelatedTypeComment
	notifications := make([]models.Notification, 0, len(users))
	for _, user := range users {
		relatedID := commentID
		notifications = append(notifications, models.Notification{
			UserID:      user.ID,
			Title:       clip(title, models.NotificationTitleSize),
			Message:     clip(message, models.NotificationMessageSize),
			Type:        constants.NotificationTypeComment,
			RelatedID:   &relatedID,
			RelatedType: &relatedType,
		})
	}
	if err := tx.Notifications().CreateBatch(ctx, notifications); err != nil {
		return nil, fmt.Errorf("failed to create mention notifications: %w", err)
	}

	s.metrics.AddMentionsResolved(len(users))
	return notifications, nil
}

func (s *CommentService) ListFileComments(ctx context.Context, fileID uint64) ([]models.Comment, error) {
	return s.list(ctx, s.fileByID(ctx, fileID))
}

func (s *CommentService) ListFileCommentsByName(ctx context.Context, fileName string) ([]models.Comment, error) {
	return s.list(ctx, s.fileByName(ctx, fileName))
}

func (s *CommentService) ListTaskComments(ctx context.Context, taskID uint64) ([]models.Comment, error) {
	return s.list(ctx, s.taskByID(ctx, taskID))
}

func (s *CommentService) list(ctx context.Context, lookup ownerLookup) ([]models.Comment, error) {
	owner, err := lookup(s.store)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByOwner(ctx, owner.kind, owner.id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// UpdateFileComment replaces text, target and mentions of a file comment and
// notifies everyone mentioned in the new list.
func (s *CommentService) UpdateFileComment(ctx context.Context, fileID, commentID uint64, input CommentInput) (*models.Comment, error) {
	var comment *models.Comment
	var notifications []models.Notification

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		comment, err = tx.Comments().FindByOwner(ctx, commentID, models.CommentOwnerFile, fileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("failed to find comment: %w", err)
		}

		if strings.TrimSpace(input.Content) == "" {
			return invalidInput("Comment text cannot be empty.")
		}

		mentions, err := models.EncodeMentions(input.Mentions)
		if err != nil {
			return fmt.Errorf("failed to encode mentions: %w", err)
		}

		comment.Text = input.Content
		comment.TargetUserID = input.TargetUserID
		comment.Mentions = mentions
		comment.Timestamp = time.Now().UTC()
		if err := tx.Comments().Update(ctx, comment); err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}

		author := comment.User
		file, err := tx.Files().FindByID(ctx, fileID)
		if err != nil {
			return fmt.Errorf("failed to find file: %w", err)
		}

		message := fmt.Sprintf("%s mentioned you in an updated comment on file %s", author.FullName(), file.Name)
		notifications, err = s.notifyMentions(ctx, tx, comment.ID, input.Mentions, "Mentioned in Comment Update", message)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Delivered(ctx, notifications...)
	return comment, nil
}

// DeleteFileComment hard-deletes a comment of the given file.
func (s *CommentService) DeleteFileComment(ctx context.Context, fileID, commentID uint64) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Comments().FindByOwner(ctx, commentID, models.CommentOwnerFile, fileID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("failed to find comment: %w", err)
		}
		if err := tx.Comments().Delete(ctx, commentID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	})
}
