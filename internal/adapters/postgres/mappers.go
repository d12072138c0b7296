package postgres

import (
	"encoding/json"
	"time"

	"github.com/opinionboard/opinion-service/internal/domain"
)

type commentDoc struct {
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

func toOpinionModel(p domain.Post) opinionModel {
	likedBy, _ := json.Marshal(emptyIfNil(p.LikedBy))
	dislikedBy, _ := json.Marshal(emptyIfNil(p.DislikedBy))
	comments := make([]commentDoc, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentDoc{Username: c.Author, Comment: c.Text, Timestamp: c.PostedAt})
	}
	rawComments, _ := json.Marshal(comments)
	return opinionModel{
		PostID:     p.PostID,
		Message:    p.Message,
		Username:   p.Author,
		SessionID:  p.SessionID,
		CreatedAt:  p.CreatedAt,
		Likes:      p.LikeCount,
		Dislikes:   p.DislikeCount,
		LikedBy:    string(likedBy),
		DislikedBy: string(dislikedBy),
		Comments:   string(rawComments),
		Version:    p.Version,
	}
}

func toDomainPost(m opinionModel) domain.Post {
	post := domain.Post{
		PostID:       m.PostID,
		Message:      m.Message,
		Author:       m.Username,
		SessionID:    m.SessionID,
		CreatedAt:    m.CreatedAt,
		LikeCount:    m.Likes,
		DislikeCount: m.Dislikes,
		LikedBy:      []string{},
		DislikedBy:   []string{},
		Comments:     []domain.Comment{},
		Version:      m.Version,
	}
	_ = json.Unmarshal([]byte(m.LikedBy), &post.LikedBy)
	_ = json.Unmarshal([]byte(m.DislikedBy), &post.DislikedBy)
	var comments []commentDoc
	_ = json.Unmarshal([]byte(m.Comments), &comments)
	for _, c := range comments {
		post.Comments = append(post.Comments, domain.Comment{Author: c.Username, Text: c.Comment, PostedAt: c.Timestamp})
	}
	return post
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
