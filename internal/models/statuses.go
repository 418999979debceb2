package models

type UserStatus string
type UserRole string
type PaymentStatus string
type PlanType string
type UploadStatus string
type MaterialType string
type WebhookEventStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusDeleted UserStatus = "deleted"

	UserRoleStudent UserRole = "student"
	UserRoleTeacher UserRole = "teacher"
	UserRoleAdmin   UserRole = "admin"

	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"

	PlanSemester PlanType = "semester"
	PlanAnnual   PlanType = "annual"

	UploadStatusPending  UploadStatus = "Pending"
	UploadStatusApproved UploadStatus = "Approved"
	UploadStatusRejected UploadStatus = "Rejected"

	MaterialTypeNotes      MaterialType = "Notes"
	MaterialTypeAssignment MaterialType = "Assignment"

	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleStudent, UserRoleTeacher, UserRoleAdmin:
		return true
	}
	return false
}

func (s UploadStatus) IsValid() bool {
	switch s {
	case UploadStatusPending, UploadStatusApproved, UploadStatusRejected:
		return true
	}
	return false
}

func (t MaterialType) IsValid() bool {
	return t == MaterialTypeNotes || t == MaterialTypeAssignment
}
