package application

import (
	"time"

	"github.com/opinionboard/opinion-service/internal/domain"
)

type Config struct {
	ServiceName       string
	VoteRetryAttempts int
	PostCacheTTL      time.Duration
}

type CreatePostRequest struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	SessionID string `json:"sessionId"`
}

type EditPostRequest struct {
	PostID   string          `json:"postId"`
	Message  *string         `json:"message,omitempty"`
	Likes    *int            `json:"likes,omitempty"`
	Dislikes *int            `json:"dislikes,omitempty"`
	Comments *[]CommentInput `json:"comments,omitempty"`
}

type VoteRequest struct {
	PostID   string `json:"postId"`
	Username string `json:"username"`
}

type AddCommentRequest struct {
	PostID   string `json:"postId"`
	Username string `json:"username"`
	Comment  string `json:"comment"`
}

type CommentInput struct {
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

type CommentView struct {
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

type PostView struct {
	PostID     string        `json:"postId"`
	Message    string        `json:"message"`
	Username   string        `json:"username"`
	SessionID  string        `json:"sessionId,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	Likes      int           `json:"likes"`
	Dislikes   int           `json:"dislikes"`
	LikedBy    []string      `json:"likedBy"`
	DislikedBy []string      `json:"dislikedBy"`
	Comments   []CommentView `json:"comments"`
}

type VoteView struct {
	PostID   string `json:"postId"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}

func toPostView(p domain.Post) PostView {
	view := PostView{
		PostID:     p.PostID,
		Message:    p.Message,
		Username:   p.Author,
		SessionID:  p.SessionID,
		Timestamp:  p.CreatedAt,
		Likes:      p.LikeCount,
		Dislikes:   p.DislikeCount,
		LikedBy:    make([]string, len(p.LikedBy)),
		DislikedBy: make([]string, len(p.DislikedBy)),
		Comments:   make([]CommentView, 0, len(p.Comments)),
	}
	copy(view.LikedBy, p.LikedBy)
	copy(view.DislikedBy, p.DislikedBy)
	for _, c := range p.Comments {
		view.Comments = append(view.Comments, CommentView{
			Username:  c.Author,
			Comment:   c.Text,
			Timestamp: c.PostedAt,
		})
	}
	return view
}
