package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/middleware"
	"yatube/app/services"

	"go.uber.org/zap"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	*Base
	comments *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(base *Base, comments *services.CommentService) *CommentController {
	return &CommentController{Base: base, comments: comments}
}

// Add posts a comment and returns to the post. An empty comment is
// dropped and the reader is returned to the post all the same.
func (cc *CommentController) Add(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	postID, ok := intVar(r, "post_id")
	if !ok {
		cc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		cc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := cc.comments.AddComment(user, postID, r.PostFormValue("text"))
	if errs := services.FieldErrors(err); errs != nil {
		if middleware.WantsJSON(r) {
			cc.sendValidation(w, errs)
			return
		}
		cc.redirect(w, r, "posts:post_detail", "post_id", postID)
		return
	}
	if err != nil {
		cc.fail(w, r, err)
		return
	}
	cc.Logger.Info("comment added", zap.Int("post_id", postID), zap.Int("comment_id", comment.ID))

	if middleware.WantsJSON(r) {
		cc.sendJSON(w, http.StatusCreated, toCommentJSON(comment))
		return
	}
	cc.redirect(w, r, "posts:post_detail", "post_id", postID)
}

// List returns the comments of a post as JSON.
func (cc *CommentController) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := intVar(r, "post_id")
	if !ok {
		cc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	comments, err := cc.comments.ListPostComments(postID)
	if err != nil {
		cc.fail(w, r, err)
		return
	}
	out := make([]commentJSON, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentJSON(c))
	}
	cc.sendJSON(w, http.StatusOK, map[string]any{"comments": out})
}

// Delete removes a comment. Its author and staff may do so.
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	postID, ok := intVar(r, "post_id")
	if !ok {
		cc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	id, ok := intVar(r, "comment_id")
	if !ok {
		cc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	if err := cc.comments.DeleteComment(user, postID, id); err != nil {
		cc.fail(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	cc.redirect(w, r, "posts:post_detail", "post_id", postID)
}
