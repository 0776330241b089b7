package relationship

import "time"

// Status is the aggregate lifecycle state of a relationship. It starts at
// StatusPending and moves to StatusActive exactly once, when every member
// has confirmed.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

type Relationship struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:30;not null"`
	Color       *string   `gorm:"size:7"`
	Description *string   `gorm:"size:300"`
	Status      Status    `gorm:"type:text;not null;default:pending"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Relationship) TableName() string { return "relationship" }

// Member links one user to one relationship. The creator's row is inserted
// with Confirmed already true; proposed users start unconfirmed.
type Member struct {
	UserID         int64 `gorm:"primaryKey"`
	RelationshipID int64 `gorm:"primaryKey"`
	Confirmed      bool  `gorm:"not null;default:false"`
}

func (Member) TableName() string { return "relationship_users" }

// MemberInfo is a membership row joined with the member's username.
type MemberInfo struct {
	UserID    int64
	Username  string
	Confirmed bool
}

// View is a relationship together with its membership rows, as returned by
// the listing operation.
type View struct {
	Relationship Relationship
	Members      []MemberInfo
}
