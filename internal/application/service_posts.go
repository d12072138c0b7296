package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opinionboard/opinion-service/internal/domain"
)

// CreatePost validates and persists a new post with zeroed engagement state,
// then fans out a newOpinion notification. Notification failures never fail
// the operation or alter the returned result.
func (s *Service) CreatePost(ctx context.Context, req CreatePostRequest) (PostView, error) {
	message, err := domain.ValidateMessage(req.Message)
	if err != nil {
		return PostView{}, err
	}
	if err := domain.ValidateAuthor(req.Username); err != nil {
		return PostView{}, err
	}
	if err := domain.ValidateSessionID(req.SessionID); err != nil {
		return PostView{}, err
	}

	post := domain.Post{
		PostID:     s.idFn(),
		Message:    message,
		Author:     req.Username,
		SessionID:  req.SessionID,
		CreatedAt:  s.nowFn(),
		LikedBy:    []string{},
		DislikedBy: []string{},
		Comments:   []domain.Comment{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return PostView{}, err
	}
	s.afterMutation(ctx, EventNewOpinion, post)
	return toPostView(post), nil
}

// Vote counts a voter at most once per direction. Re-voting the same direction
// is a no-op, not an error: nothing is saved and nothing is published, but the
// current counts are still returned. The opposite set is never touched.
func (s *Service) Vote(ctx context.Context, req VoteRequest, direction domain.VoteDirection) (VoteView, error) {
	if err := domain.ValidatePostID(req.PostID); err != nil {
		return VoteView{}, err
	}
	if err := domain.ValidateAuthor(req.Username); err != nil {
		return VoteView{}, err
	}
	if err := domain.ValidateVoteDirection(direction); err != nil {
		return VoteView{}, err
	}

	post, changed, err := s.mutatePost(ctx, req.PostID, func(p *domain.Post) (bool, error) {
		return p.ApplyVote(req.Username, direction), nil
	})
	if err != nil {
		return VoteView{}, err
	}
	if changed {
		s.afterMutation(ctx, EventEditOpinion, post)
	}
	return VoteView{PostID: post.PostID, Likes: post.LikeCount, Dislikes: post.DislikeCount}, nil
}

// Edit applies only the fields present in the patch. An empty-after-trim
// message is ignored rather than applied. Counts and comments are overwritten
// wholesale when present; the engine does not re-derive counts from the vote
// sets on this path.
func (s *Service) Edit(ctx context.Context, req EditPostRequest) (PostView, error) {
	if err := domain.ValidatePostID(req.PostID); err != nil {
		return PostView{}, err
	}
	if err := domain.ValidateCounts(req.Likes, req.Dislikes); err != nil {
		return PostView{}, err
	}

	post, changed, err := s.mutatePost(ctx, req.PostID, func(p *domain.Post) (bool, error) {
		applied := false
		if req.Message != nil {
			if trimmed, msgErr := domain.ValidateMessage(*req.Message); msgErr == nil {
				p.Message = trimmed
				applied = true
			}
		}
		if req.Likes != nil {
			p.LikeCount = *req.Likes
			applied = true
		}
		if req.Dislikes != nil {
			p.DislikeCount = *req.Dislikes
			applied = true
		}
		if req.Comments != nil {
			comments := make([]domain.Comment, 0, len(*req.Comments))
			for _, c := range *req.Comments {
				comments = append(comments, domain.Comment{Author: c.Username, Text: c.Comment, PostedAt: c.Timestamp})
			}
			p.Comments = comments
			applied = true
		}
		return applied, nil
	})
	if err != nil {
		return PostView{}, err
	}
	if changed {
		s.afterMutation(ctx, EventEditOpinion, post)
	}
	return toPostView(post), nil
}

// AddComment appends a single comment entry. The source design folded comments
// into the generic edit path with a full replacement list; a dedicated append
// avoids lost updates between concurrent commenters.
func (s *Service) AddComment(ctx context.Context, req AddCommentRequest) (PostView, error) {
	if err := domain.ValidatePostID(req.PostID); err != nil {
		return PostView{}, err
	}
	if err := domain.ValidateAuthor(req.Username); err != nil {
		return PostView{}, err
	}
	text, err := domain.ValidateCommentText(req.Comment)
	if err != nil {
		return PostView{}, err
	}

	post, _, err := s.mutatePost(ctx, req.PostID, func(p *domain.Post) (bool, error) {
		p.AppendComment(req.Username, text, s.nowFn())
		return true, nil
	})
	if err != nil {
		return PostView{}, err
	}
	s.afterMutation(ctx, EventEditOpinion, post)
	return toPostView(post), nil
}

// GetPost serves a single post, preferring the rendered-view cache.
func (s *Service) GetPost(ctx context.Context, postID string) (PostView, error) {
	if err := domain.ValidatePostID(postID); err != nil {
		return PostView{}, err
	}
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKeyPost(postID)); err == nil && raw != "" {
			var view PostView
			if unmarshalErr := json.Unmarshal([]byte(raw), &view); unmarshalErr == nil {
				return view, nil
			}
		}
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return PostView{}, err
	}
	view := toPostView(post)
	if s.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			_ = s.cache.Set(ctx, cacheKeyPost(postID), string(raw), s.cfg.PostCacheTTL)
		}
	}
	return view, nil
}

// mutatePost runs a read-apply-save cycle under optimistic concurrency. A
// stale save is retried with a fresh read; once the retry budget is exhausted
// the operation fails with domain.ErrConflict. apply reports whether it
// changed the post; an unchanged post is returned without a save.
func (s *Service) mutatePost(ctx context.Context, postID string, apply func(*domain.Post) (bool, error)) (domain.Post, bool, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.VoteRetryAttempts; attempt++ {
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			return domain.Post{}, false, err
		}
		changed, err := apply(&post)
		if err != nil {
			return domain.Post{}, false, err
		}
		if !changed {
			return post, false, nil
		}
		saved, err := s.posts.SaveWithVersion(ctx, post, post.Version)
		if err == nil {
			return saved, true, nil
		}
		if !errors.Is(err, domain.ErrVersionMismatch) {
			return domain.Post{}, false, err
		}
		lastErr = err
	}
	return domain.Post{}, false, fmt.Errorf("%w: post %s contended beyond %d attempts: %v",
		domain.ErrConflict, postID, s.cfg.VoteRetryAttempts, lastErr)
}

func cacheKeyPost(postID string) string {
	return "opinion:post:" + postID
}
