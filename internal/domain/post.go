package domain

import "time"

type VoteDirection string

const (
	VoteLike    VoteDirection = "like"
	VoteDislike VoteDirection = "dislike"
)

func (d VoteDirection) Valid() bool {
	return d == VoteLike || d == VoteDislike
}

type Comment struct {
	Author   string
	Text     string
	PostedAt time.Time
}

// Post is the reactable unit of content. LikedBy and DislikedBy have set
// semantics: a voter appears at most once per direction. The two sets are
// independent; voting one direction never removes the opposite vote.
type Post struct {
	PostID       string
	Message      string
	Author       string
	SessionID    string
	CreatedAt    time.Time
	LikeCount    int
	DislikeCount int
	LikedBy      []string
	DislikedBy   []string
	Comments     []Comment
	// Version stamps the stored document for conditional saves.
	Version int64
}

func (p *Post) HasVoted(voterID string, direction VoteDirection) bool {
	set := p.LikedBy
	if direction == VoteDislike {
		set = p.DislikedBy
	}
	for _, v := range set {
		if v == voterID {
			return true
		}
	}
	return false
}

// ApplyVote records a vote in the direction's set. It reports false when the
// voter is already counted, leaving the post untouched.
func (p *Post) ApplyVote(voterID string, direction VoteDirection) bool {
	if p.HasVoted(voterID, direction) {
		return false
	}
	switch direction {
	case VoteLike:
		p.LikedBy = append(p.LikedBy, voterID)
		p.LikeCount++
	case VoteDislike:
		p.DislikedBy = append(p.DislikedBy, voterID)
		p.DislikeCount++
	}
	return true
}

func (p *Post) AppendComment(author, text string, at time.Time) {
	p.Comments = append(p.Comments, Comment{Author: author, Text: text, PostedAt: at})
}
