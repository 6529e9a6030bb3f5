package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Judge score categories. Every score and judging permission is bound to
// exactly one of these.
const (
	JudgeTypeOverall       = "overall"
	JudgeTypeContent       = "content"
	JudgeTypeStyleDelivery = "style_delivery"
	JudgeTypeLanguage      = "language"
)

// ValidJudgeType reports whether s is a known judge type.
func ValidJudgeType(s string) bool {
	switch s {
	case JudgeTypeOverall, JudgeTypeContent, JudgeTypeStyleDelivery, JudgeTypeLanguage:
		return true
	}
	return false
}

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// AppConfig is the global configuration for the deployment.
// This is a singleton model (only one row should exist).
type AppConfig struct {
	BaseModel
	// Auto-generated on first setup (64 hex chars)
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"`
}

// User represents a local account. Judges and admins log in with the same
// mechanism; IsAdmin is the only privilege bit and is never sent to clients
// except through the login/verify responses.
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Event is a competition category (debate, presentation, extempore).
type Event struct {
	BaseModel
	Name       string `json:"name" gorm:"unique;not null"`
	NameNepali string `json:"name_nepali"`

	Sessions []EventSession `json:"sessions,omitempty" gorm:"foreignKey:EventID"`
}

// EventSession groups the weekly rounds of one event for a term.
// Named EventSession to avoid colliding with auth sessions.
type EventSession struct {
	BaseModel
	EventID       string     `json:"event_id" gorm:"not null;index"`
	Name          string     `json:"name" gorm:"not null"`
	SessionNumber int        `json:"session_number" gorm:"not null;default:1"`
	Language      string     `json:"language" gorm:"not null;default:en"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsActive      bool       `json:"is_active" gorm:"not null;default:true"`

	Event Event  `json:"event,omitzero" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Weeks []Week `json:"weeks,omitempty" gorm:"foreignKey:SessionID"`
}

// Week is a single round within a session. IsPartial marks rounds that ran
// with fewer participants than requested.
type Week struct {
	BaseModel
	SessionID   string     `json:"session_id" gorm:"not null;index"`
	WeekNumber  int        `json:"week_number" gorm:"not null"`
	Topic       string     `json:"topic"`
	TopicNepali string     `json:"topic_nepali"`
	Date        *time.Time `json:"date"`
	IsPartial   bool       `json:"is_partial" gorm:"not null;default:false"`
	Notes       string     `json:"notes"`

	Session      EventSession  `json:"session,omitzero" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:WeekID"`
}

// Student is a roster entry. Grade is nullable so imports without a grade
// column still work.
type Student struct {
	BaseModel
	FullName string `json:"full_name" gorm:"not null"`
	Grade    *int   `json:"grade"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`
}

// Participant links a student to a week. Position and IsWinner are set only
// when results are published.
type Participant struct {
	BaseModel
	WeekID    string `json:"week_id" gorm:"not null;index"`
	StudentID string `json:"student_id" gorm:"not null;index"`
	Score     int    `json:"score" gorm:"not null;default:0"`
	IsWinner  bool   `json:"is_winner" gorm:"not null;default:false"`
	Position  *int   `json:"position"`
	Notes     string `json:"notes"`

	Week    Week    `json:"week,omitzero" gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE"`
	Student Student `json:"student,omitzero" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

// SpeakerStatus tracks which students have already spoken in a session, so
// extempore random selection never repeats a speaker until the pool resets.
type SpeakerStatus struct {
	BaseModel
	SessionID      string `json:"session_id" gorm:"not null;index:idx_speaker_session_student,unique"`
	StudentID      string `json:"student_id" gorm:"not null;index:idx_speaker_session_student,unique"`
	HasSpoken      bool   `json:"has_spoken" gorm:"not null;default:false"`
	SpokenInWeekID string `json:"spoken_in_week_id"`
}

// Judge is a person who can be assigned to weeks for display purposes.
// Scoring permission is granted separately through JudgePermission.
type Judge struct {
	BaseModel
	FullName string `json:"full_name" gorm:"not null"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`
}

// WeekJudge assigns a judge to a week.
type WeekJudge struct {
	BaseModel
	WeekID  string `json:"week_id" gorm:"not null;index"`
	JudgeID string `json:"judge_id" gorm:"not null"`

	Week  Week  `json:"week,omitzero" gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE"`
	Judge Judge `json:"judge,omitzero" gorm:"foreignKey:JudgeID;constraint:OnDelete:CASCADE"`
}

// JudgingCriteria is a named rubric item with a point ceiling.
type JudgingCriteria struct {
	BaseModel
	Name       string `json:"name" gorm:"not null"`
	NameNepali string `json:"name_nepali"`
	MaxPoints  int    `json:"max_points" gorm:"not null;default:10"`
	JudgeType  string `json:"judge_type" gorm:"not null;default:overall"`
}

// WeekCriteria assigns a rubric item to a week.
type WeekCriteria struct {
	BaseModel
	WeekID     string `json:"week_id" gorm:"not null;index"`
	CriteriaID string `json:"criteria_id" gorm:"not null"`

	Week     Week            `json:"week,omitzero" gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE"`
	Criteria JudgingCriteria `json:"criteria,omitzero" gorm:"foreignKey:CriteriaID;constraint:OnDelete:CASCADE"`
}

// JudgePermission grants a user (by email) the right to submit scores of one
// judge type for one week. Revocation is soft so grants can be re-activated.
type JudgePermission struct {
	BaseModel
	UserEmail      string     `json:"user_email" gorm:"not null;index"`
	WeekID         string     `json:"week_id" gorm:"not null;index"`
	JudgeType      string     `json:"judge_type" gorm:"not null"`
	GrantedByEmail string     `json:"granted_by_email"`
	IsActive       bool       `json:"is_active" gorm:"not null;default:true"`
	RevokedAt      *time.Time `json:"revoked_at"`
	RevokedByEmail string     `json:"revoked_by_email"`

	Week Week `json:"week,omitzero" gorm:"foreignKey:WeekID;constraint:OnDelete:CASCADE"`
}

// JudgeScore holds one judge's score for one participant in one category.
// (participant, judge email, judge type) is unique; submission upserts.
type JudgeScore struct {
	BaseModel
	ParticipantID string    `json:"participant_id" gorm:"not null;index:idx_score_unique,unique"`
	JudgeEmail    string    `json:"judge_email" gorm:"not null;index:idx_score_unique,unique"`
	JudgeType     string    `json:"judge_type" gorm:"not null;index:idx_score_unique,unique"`
	Score         int       `json:"score" gorm:"not null;default:0"`
	MaxScore      int       `json:"max_score" gorm:"not null;default:100"`
	Comments      string    `json:"comments"`
	Criteria      string    `json:"criteria_breakdown" gorm:"type:text"` // JSON object keyed by criteria name
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Participant Participant `json:"participant,omitzero" gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
}

// AuditLog records an admin action. Rows are written by the worker from
// queued audit tasks, never inline with the request.
type AuditLog struct {
	BaseModel
	AdminEmail  string `json:"admin_email" gorm:"index"`
	AdminID     string `json:"admin_id"`
	ActionType  string `json:"action_type" gorm:"index"` // CREATE, UPDATE, DELETE
	EntityType  string `json:"entity_type" gorm:"index"` // student, session, week, participant, judge_permission
	EntityID    string `json:"entity_id"`
	EntityName  string `json:"entity_name"`
	OldValue    string `json:"old_value" gorm:"type:text"`
	NewValue    string `json:"new_value" gorm:"type:text"`
	Description string `json:"description"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &AppConfig{},
		&Event{}, &EventSession{}, &Week{},
		&Student{}, &Participant{}, &SpeakerStatus{},
		&Judge{}, &WeekJudge{}, &JudgingCriteria{}, &WeekCriteria{},
		&JudgePermission{}, &JudgeScore{},
		&AuditLog{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
