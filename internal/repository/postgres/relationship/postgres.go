package relationship

import (
	"context"
	"errors"

	domain "dates-app-go/internal/domain/relationship"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, rel *domain.Relationship) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *domain.Member) error {
	result := r.db.WithContext(ctx).Create(member)
	if result.Error != nil {
		// A duplicate pair or an id with no users row both mean the intended
		// membership cannot exist.
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) || errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return domain.ErrUserNotFound
		}
		return result.Error
	}
	if result.RowsAffected != 1 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, relationshipID int64) (*domain.Relationship, error) {
	var rel domain.Relationship
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rel, "id = ?", relationshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, relationshipID int64) (*domain.Relationship, error) {
	var rel domain.Relationship
	err := r.db.WithContext(ctx).First(&rel, "id = ?", relationshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *PostgresRepository) ConfirmMember(ctx context.Context, userID, relationshipID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("user_id = ? AND relationship_id = ? AND confirmed = false", userID, relationshipID).
		Update("confirmed", true)
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) CountUnconfirmed(ctx context.Context, relationshipID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("relationship_id = ? AND confirmed = false", relationshipID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, relationshipID int64, status domain.Status) error {
	return r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("id = ?", relationshipID).
		Update("status", status).Error
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, relationshipID int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("id = ?", relationshipID).
		Updates(fields).Error
}

func (r *PostgresRepository) IsMember(ctx context.Context, userID, relationshipID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("user_id = ? AND relationship_id = ?", userID, relationshipID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ResolveUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	result := r.db.WithContext(ctx).
		Table("users").
		Select("id").
		Where("username = ?", username).
		Scan(&id)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domain.ErrUserNotFound
	}
	return id, nil
}

func (r *PostgresRepository) DeleteRelationship(ctx context.Context, relationshipID int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Relationship{}, "id = ?", relationshipID).Error
}

func (r *PostgresRepository) DeleteMembers(ctx context.Context, relationshipID int64) error {
	return r.db.WithContext(ctx).Where("relationship_id = ?", relationshipID).Delete(&domain.Member{}).Error
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Relationship, error) {
	var rels []domain.Relationship
	err := r.db.WithContext(ctx).
		Table("relationship").
		Select("relationship.*").
		Joins("join relationship_users on relationship_users.relationship_id = relationship.id").
		Where("relationship_users.user_id = ?", userID).
		Order("relationship.id asc").
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, relationshipID int64) ([]domain.MemberInfo, error) {
	type memberRow struct {
		UserID    int64  `gorm:"column:user_id"`
		Username  string `gorm:"column:username"`
		Confirmed bool   `gorm:"column:confirmed"`
	}

	var rows []memberRow
	err := r.db.WithContext(ctx).
		Table("relationship_users").
		Select("relationship_users.user_id, users.username, relationship_users.confirmed").
		Joins("join users on users.id = relationship_users.user_id").
		Where("relationship_users.relationship_id = ?", relationshipID).
		Order("relationship_users.user_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]domain.MemberInfo, 0, len(rows))
	for _, row := range rows {
		members = append(members, domain.MemberInfo{
			UserID:    row.UserID,
			Username:  row.Username,
			Confirmed: row.Confirmed,
		})
	}
	return members, nil
}
