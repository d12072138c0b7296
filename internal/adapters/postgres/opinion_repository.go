package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/opinionboard/opinion-service/internal/domain"
	"gorm.io/gorm"
)

type opinionRepository struct {
	db *gorm.DB
}

func (r *opinionRepository) Create(ctx context.Context, post domain.Post) error {
	rec := toOpinionModel(post)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: post %s already exists", domain.ErrConflict, post.PostID)
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *opinionRepository) GetByID(ctx context.Context, postID string) (domain.Post, error) {
	var rec opinionModel
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return toDomainPost(rec), nil
}

// SaveWithVersion commits the mutated document only if the stored row still
// carries expectedVersion. A zero-row update is disambiguated with a re-read:
// a vanished row is ErrNotFound, a moved version is ErrVersionMismatch.
func (r *opinionRepository) SaveWithVersion(ctx context.Context, post domain.Post, expectedVersion int64) (domain.Post, error) {
	rec := toOpinionModel(post)
	res := r.db.WithContext(ctx).Model(&opinionModel{}).
		Where("post_id = ? AND version = ?", post.PostID, expectedVersion).
		Updates(map[string]any{
			"message":     rec.Message,
			"likes":       rec.Likes,
			"dislikes":    rec.Dislikes,
			"liked_by":    rec.LikedBy,
			"disliked_by": rec.DislikedBy,
			"comments":    rec.Comments,
			"version":     expectedVersion + 1,
		})
	if res.Error != nil {
		return domain.Post{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		var check opinionModel
		if err := r.db.WithContext(ctx).Select("post_id").Where("post_id = ?", post.PostID).Take(&check).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Post{}, domain.ErrNotFound
			}
			return domain.Post{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		return domain.Post{}, domain.ErrVersionMismatch
	}
	post.Version = expectedVersion + 1
	return post, nil
}
