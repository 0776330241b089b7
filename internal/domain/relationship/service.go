package relationship

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name              string
	Color             *string
	Description       *string
	CreatorID         int64
	ProposedUsernames []string
}

// Create persists a relationship, a pre-confirmed membership row for the
// creator, and an unconfirmed row per proposed username, all inside one
// transaction. An unknown username aborts the whole creation; no partial
// relationship survives.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Relationship, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in.Name, in.Description, in.Color); err != nil {
		return nil, err
	}

	var result Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		rel := Relationship{
			Name:        in.Name,
			Color:       in.Color,
			Description: in.Description,
			Status:      StatusPending,
		}
		if err := tx.Create(ctx, &rel); err != nil {
			return err
		}

		creator := Member{UserID: in.CreatorID, RelationshipID: rel.ID, Confirmed: true}
		if err := tx.AddMember(ctx, &creator); err != nil {
			return err
		}

		for _, username := range in.ProposedUsernames {
			userID, err := tx.ResolveUsername(ctx, strings.TrimSpace(username))
			if err != nil {
				return err
			}
			member := Member{UserID: userID, RelationshipID: rel.ID}
			if err := tx.AddMember(ctx, &member); err != nil {
				return err
			}
		}

		result = rel
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

type ConfirmResult struct {
	Status       Status
	Transitioned bool
}

// Confirm marks the (userID, relationshipID) membership as confirmed and,
// when that was the last outstanding confirmation, transitions the
// relationship to active. The relationship row is locked for the duration,
// so two concurrent confirmations cannot both observe a stale aggregate.
func (s *Service) Confirm(ctx context.Context, userID, relationshipID int64) (*ConfirmResult, error) {
	var result ConfirmResult
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		rel, err := tx.GetForUpdate(ctx, relationshipID)
		if err != nil {
			return err
		}

		affected, err := tx.ConfirmMember(ctx, userID, relationshipID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrMembershipNotFound
		}

		unconfirmed, err := tx.CountUnconfirmed(ctx, relationshipID)
		if err != nil {
			return err
		}

		if unconfirmed == 0 && rel.Status != StatusActive {
			if err := tx.UpdateStatus(ctx, relationshipID, StatusActive); err != nil {
				return err
			}
			result = ConfirmResult{Status: StatusActive, Transitioned: true}
			return nil
		}

		result = ConfirmResult{Status: rel.Status, Transitioned: false}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Delete removes a relationship and all of its membership rows, provided the
// requester is itself a member.
func (s *Service) Delete(ctx context.Context, userID, relationshipID int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetForUpdate(ctx, relationshipID); err != nil {
			return err
		}

		isMember, err := tx.IsMember(ctx, userID, relationshipID)
		if err != nil {
			return err
		}
		if !isMember {
			return ErrNotMember
		}

		if err := tx.DeleteMembers(ctx, relationshipID); err != nil {
			return err
		}
		return tx.DeleteRelationship(ctx, relationshipID)
	})
}

type UpdateInput struct {
	RelationshipID int64
	UserID         int64
	Name           *string
	Color          *string
	Description    *string
}

// Update edits relationship metadata. Only members may edit; absent fields
// are left unchanged; an empty color or description clears the stored
// value; status is never editable here.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Relationship, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
		if err := ValidateName(trimmed); err != nil {
			return nil, err
		}
	}
	if in.Description != nil && *in.Description != "" {
		if err := ValidateDescription(in.Description); err != nil {
			return nil, err
		}
	}
	if in.Color != nil && *in.Color != "" {
		if err := ValidateColor(in.Color); err != nil {
			return nil, err
		}
	}

	var result Relationship
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetForUpdate(ctx, in.RelationshipID); err != nil {
			return err
		}

		isMember, err := tx.IsMember(ctx, in.UserID, in.RelationshipID)
		if err != nil {
			return err
		}
		if !isMember {
			return ErrNotMember
		}

		fields := map[string]interface{}{}
		if in.Name != nil {
			fields["name"] = *in.Name
		}
		if in.Color != nil {
			if *in.Color == "" {
				fields["color"] = nil
			} else {
				fields["color"] = *in.Color
			}
		}
		if in.Description != nil {
			if *in.Description == "" {
				fields["description"] = nil
			} else {
				fields["description"] = *in.Description
			}
		}

		if len(fields) > 0 {
			if err := tx.UpdateFields(ctx, in.RelationshipID, fields); err != nil {
				return err
			}
		}

		rel, err := tx.GetByID(ctx, in.RelationshipID)
		if err != nil {
			return err
		}

		result = *rel
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ListByUser returns every relationship the user belongs to, each with its
// membership rows so callers can see outstanding confirmations. The whole
// read runs in one transaction so the member sets match the relationship
// list even under concurrent deletions.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]View, error) {
	var views []View
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		rels, err := tx.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		views = make([]View, 0, len(rels))
		for _, rel := range rels {
			members, err := tx.ListMembers(ctx, rel.ID)
			if err != nil {
				return err
			}
			views = append(views, View{Relationship: rel, Members: members})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}
