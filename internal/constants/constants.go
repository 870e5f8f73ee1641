package constants

// Context keys set by the auth middleware
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "user_email"
	ContextKeyRole   = "user_role"
)

// Role names seeded at startup
const (
	RoleAdmin  = "Admin"
	RoleMentor = "Mentor"
	RoleIntern = "Intern"
)

// Password rules
const (
	MinPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and refuses longer input.
	MaxPasswordBytes = 72
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Notification types
const (
	NotificationTypeComment      = "comment"
	NotificationTypeTaskAssigned = "task_assigned"
	NotificationTypeFileUpload   = "file_upload"
)

// Notification related entity types
const (
	RelatedTypeComment = "comment"
	RelatedTypeTask    = "task"
	RelatedTypeFile    = "file"
)
