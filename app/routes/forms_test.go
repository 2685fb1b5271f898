package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostWithImage(t *testing.T) {
	app := setupTestApp(t)
	postCount := app.postCount(t)

	w := app.postMultipart(t, app.router.MustURL("posts:post_create"),
		map[string]string{"text": "Тестовый текст", "group": strconv.Itoa(app.group.ID)},
		map[string][]byte{"image": smallGIF},
		app.user,
	)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, app.router.MustURL("posts:profile", "username", app.user.Username), w.Header().Get("Location"))
	assert.Equal(t, postCount+1, app.postCount(t))

	newPost, err := app.store.Posts.Latest()
	require.NoError(t, err)
	assert.NotEqual(t, app.post.ID, newPost.ID)
	assert.Equal(t, "Тестовый текст", newPost.Text)
	assert.Equal(t, app.user.ID, newPost.AuthorID)
	assert.Equal(t, app.group.ID, newPost.GroupID)
	assert.Regexp(t, `^posts/.+\.gif$`, newPost.Image)
	assert.True(t, app.media.Exists(newPost.Image))
}

func TestEditPostAuthorizedUser(t *testing.T) {
	app := setupTestApp(t)
	postCount := app.postCount(t)

	w := app.postForm(t, app.router.MustURL("posts:post_edit", "post_id", app.post.ID),
		url.Values{"text": {"Измененный текст"}, "group": {strconv.Itoa(app.group.ID)}},
		app.user,
	)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, app.router.MustURL("posts:post_detail", "post_id", app.post.ID), w.Header().Get("Location"))
	assert.Equal(t, postCount, app.postCount(t))

	reloaded, err := app.store.Posts.GetByID(app.post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Измененный текст", reloaded.Text)
	assert.Equal(t, app.post.Image, reloaded.Image)
}

func TestAddComment(t *testing.T) {
	app := setupTestApp(t)
	commentsCount, err := app.store.Comments.Count()
	require.NoError(t, err)

	w := app.postForm(t, app.router.MustURL("posts:add_comment", "post_id", app.post.ID),
		url.Values{"text": {"Тестовый текст"}},
		app.user,
	)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, app.router.MustURL("posts:post_detail", "post_id", app.post.ID), w.Header().Get("Location"))

	n, err := app.store.Comments.Count()
	require.NoError(t, err)
	assert.Equal(t, commentsCount+1, n)

	comment, err := app.store.Comments.Latest()
	require.NoError(t, err)
	assert.Equal(t, "Тестовый текст", comment.Text)
	assert.Equal(t, app.user.ID, comment.AuthorID)
	assert.Equal(t, app.post.ID, comment.PostID)
}

func TestConcurrentComments(t *testing.T) {
	app := setupTestApp(t)
	cookie, err := app.sessions.Cookie(app.user)
	require.NoError(t, err)
	path := app.router.MustURL("posts:add_comment", "post_id", app.post.ID)

	const readers = 20
	codes := make(chan int, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			form := url.Values{"text": {fmt.Sprintf("комментарий %d", i)}}
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(cookie)
			w := httptest.NewRecorder()
			app.router.ServeHTTP(w, req)
			codes <- w.Code
		}(i)
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusSeeOther, code)
	}
	n, err := app.store.Comments.CountByPost(app.post.ID)
	require.NoError(t, err)
	assert.Equal(t, readers, n)
}

func TestPostFormErrors(t *testing.T) {
	app := setupTestApp(t)
	postCount := app.postCount(t)

	tests := []struct {
		name    string
		fields  map[string]string
		files   map[string][]byte
		message string
	}{
		{"empty text", map[string]string{"text": "  "}, nil, "This field is required."},
		{"unknown group", map[string]string{"text": "x", "group": "999"}, nil, "Select a valid choice."},
		{"not an image", map[string]string{"text": "x"}, map[string][]byte{"image": []byte("hello")}, "upload a valid image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.postMultipart(t, "/create/", tt.fields, tt.files, app.user)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Equal(t, postCount, app.postCount(t))
		})
	}
}

func TestEditByNonAuthorRedirects(t *testing.T) {
	app := setupTestApp(t)
	other := app.newUser(t, "other", false)
	detail := app.router.MustURL("posts:post_detail", "post_id", app.post.ID)
	edit := app.router.MustURL("posts:post_edit", "post_id", app.post.ID)

	w := app.get(t, edit, other)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = app.postForm(t, edit, url.Values{"text": {"чужой текст"}}, other)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	reloaded, err := app.store.Posts.GetByID(app.post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Тестовый текст", reloaded.Text)
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := setupTestApp(t)
	postCount := app.postCount(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/create/"},
		{http.MethodPost, "/create/"},
		{http.MethodGet, "/posts/1/edit/"},
		{http.MethodPost, "/posts/1/comment/"},
		{http.MethodPost, "/posts/1/delete/"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("text=anon"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := app.do(t, req, nil)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(tt.path), w.Header().Get("Location"))
		})
	}
	assert.Equal(t, postCount, app.postCount(t))
	n, _ := app.store.Comments.Count()
	assert.Zero(t, n)
}

func TestDeletePost(t *testing.T) {
	app := setupTestApp(t)
	other := app.newUser(t, "other", false)
	path := app.router.MustURL("posts:post_delete", "post_id", app.post.ID)

	w := app.postForm(t, path, nil, other)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, app.postCount(t))

	w = app.postForm(t, path, nil, app.user)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/auth/", w.Header().Get("Location"))
	assert.Zero(t, app.postCount(t))
	assert.False(t, app.media.Exists(app.post.Image))
}
