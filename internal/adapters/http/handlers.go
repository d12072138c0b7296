package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opinionboard/opinion-service/internal/application"
	"github.com/opinionboard/opinion-service/internal/domain"
)

func (h *Handler) createOpinion(w http.ResponseWriter, r *http.Request) {
	var req application.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	resp, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// updateOpinion dispatches PUT/PATCH by the action query parameter:
// like/dislike map to Vote, comment appends one entry, and no action is a
// partial edit whose body carries postId plus the fields to overwrite.
func (h *Handler) updateOpinion(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "like":
		h.vote(w, r, domain.VoteLike)
	case "dislike":
		h.vote(w, r, domain.VoteDislike)
	case "comment":
		h.addComment(w, r)
	case "":
		h.editOpinion(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown action: "+action, "")
	}
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request, direction domain.VoteDirection) {
	var req application.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	resp, err := h.service.Vote(r.Context(), req, direction)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) editOpinion(w http.ResponseWriter, r *http.Request) {
	var req application.EditPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	resp, err := h.service.Edit(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req application.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	resp, err := h.service.AddComment(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOpinion(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
