package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentControllerAdd(t *testing.T) {
	f := setupControllers(t)
	vars := map[string]string{"post_id": strconv.Itoa(f.post.ID)}
	add := func(text string, vars map[string]string) *http.Request {
		return formBody(request(http.MethodPost, "/posts/1/comment/", strings.NewReader("text="+text), vars, f.other))
	}

	t.Run("html redirects to the post", func(t *testing.T) {
		w := serve(f.commentController.Add, add("hello", vars))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/posts:post_detail/post_id/1", w.Header().Get("Location"))

		n, err := f.comments.CountByPost(f.post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("json", func(t *testing.T) {
		w := serve(f.commentController.Add, asJSON(add("second", vars)))
		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, "second", body["text"])
		assert.Equal(t, "other", body["author"])
		assert.EqualValues(t, f.post.ID, body["post"])
	})

	t.Run("empty text is a json validation error", func(t *testing.T) {
		w := serve(f.commentController.Add, asJSON(add("", vars)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"text": "This field is required."}, fieldErrors(t, w))
	})

	t.Run("empty text in html is dropped", func(t *testing.T) {
		w := serve(f.commentController.Add, add("", vars))
		assert.Equal(t, http.StatusSeeOther, w.Code)

		n, _ := f.comments.CountByPost(f.post.ID)
		assert.Equal(t, 2, n)
	})

	t.Run("unknown post", func(t *testing.T) {
		w := serve(f.commentController.Add, asJSON(add("lost", map[string]string{"post_id": "77"})))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	})
}

func TestCommentControllerList(t *testing.T) {
	f := setupControllers(t)
	_, err := f.commentService.AddComment(f.other, f.post.ID, "first")
	require.NoError(t, err)

	w := serve(f.commentController.List, asJSON(request(http.MethodGet, "/posts/1/comments/", nil, map[string]string{"post_id": strconv.Itoa(f.post.ID)}, nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	comments, ok := decode(t, w)["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].(map[string]any)["text"])

	w = serve(f.commentController.List, asJSON(request(http.MethodGet, "/posts/9/comments/", nil, map[string]string{"post_id": "9"}, nil)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentControllerDelete(t *testing.T) {
	f := setupControllers(t)
	comment, err := f.commentService.AddComment(f.other, f.post.ID, "to remove")
	require.NoError(t, err)

	elsewhere := &models.Post{Text: "Другой пост", AuthorID: f.author.ID, PubDate: time.Now()}
	require.NoError(t, f.posts.Create(elsewhere))

	del := func(postID, commentID int, user *models.User) *http.Request {
		vars := map[string]string{"post_id": strconv.Itoa(postID), "comment_id": strconv.Itoa(commentID)}
		return request(http.MethodPost, "/delete/", nil, vars, user)
	}

	t.Run("through another post is a 404", func(t *testing.T) {
		w := serve(f.commentController.Delete, asJSON(del(elsewhere.ID, comment.ID, f.other)))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

		_, err := f.comments.GetByID(comment.ID)
		assert.NoError(t, err, "comment must survive")
	})

	t.Run("someone else's comment", func(t *testing.T) {
		w := serve(f.commentController.Delete, asJSON(del(f.post.ID, comment.ID, f.author)))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
	})

	t.Run("author deletes and returns to the post", func(t *testing.T) {
		w := serve(f.commentController.Delete, del(f.post.ID, comment.ID, f.other))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/posts:post_detail/post_id/1", w.Header().Get("Location"))

		_, err := f.comments.GetByID(comment.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		w = serve(f.commentController.Delete, asJSON(del(f.post.ID, comment.ID, f.other)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("json answers no content", func(t *testing.T) {
		c, err := f.commentService.AddComment(f.author, f.post.ID, "mine")
		require.NoError(t, err)

		w := serve(f.commentController.Delete, asJSON(del(f.post.ID, c.ID, f.author)))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}
