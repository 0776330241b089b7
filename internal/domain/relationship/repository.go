package relationship

import "context"

type Repository interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction. A nil return commits; any error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, rel *Relationship) error
	AddMember(ctx context.Context, member *Member) error

	// GetForUpdate loads the relationship row under a row lock, serializing
	// concurrent confirmations and deletions of the same relationship.
	GetForUpdate(ctx context.Context, relationshipID int64) (*Relationship, error)
	GetByID(ctx context.Context, relationshipID int64) (*Relationship, error)

	// ConfirmMember flips confirmed on the (userID, relationshipID) row and
	// reports how many rows were affected. Rows already confirmed do not
	// match, so a repeat confirmation affects zero rows.
	ConfirmMember(ctx context.Context, userID, relationshipID int64) (int64, error)
	CountUnconfirmed(ctx context.Context, relationshipID int64) (int64, error)
	UpdateStatus(ctx context.Context, relationshipID int64, status Status) error
	UpdateFields(ctx context.Context, relationshipID int64, fields map[string]interface{}) error

	IsMember(ctx context.Context, userID, relationshipID int64) (bool, error)
	ResolveUsername(ctx context.Context, username string) (int64, error)

	DeleteRelationship(ctx context.Context, relationshipID int64) error
	DeleteMembers(ctx context.Context, relationshipID int64) error

	ListByUser(ctx context.Context, userID int64) ([]Relationship, error)
	ListMembers(ctx context.Context, relationshipID int64) ([]MemberInfo, error)
}
