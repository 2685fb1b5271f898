package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/media"
	"yatube/app/models"
	"yatube/app/repositories/mock"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testURL reverses any route name into a readable fake path.
func testURL(name string, pairs ...any) (string, error) {
	u := "/" + name
	for _, p := range pairs {
		u += "/" + fmt.Sprint(p)
	}
	return u, nil
}

type controllerFixture struct {
	posts    *mock.PostRepository
	comments *mock.CommentRepository

	commentService *services.CommentService

	postController    *PostController
	commentController *CommentController

	author *models.User
	other  *models.User
	post   *models.Post
}

func setupControllers(t *testing.T) *controllerFixture {
	t.Helper()
	storage, err := media.New(t.TempDir(), "/media/", 1<<20)
	require.NoError(t, err)
	renderer, err := views.New(testURL, storage.URL)
	require.NoError(t, err)
	pages, err := cache.New(1<<20, time.Minute)
	require.NoError(t, err)
	t.Cleanup(pages.Close)

	users := mock.NewUserRepository()
	groups := mock.NewGroupRepository()
	f := &controllerFixture{
		posts:    mock.NewPostRepository(),
		comments: mock.NewCommentRepository(),
	}

	postService := services.NewPostService(f.posts, f.comments, users, groups, storage, zap.NewNop())
	groupService := services.NewGroupService(groups, f.posts)
	f.commentService = services.NewCommentService(f.comments, f.posts, users)

	base := &Base{Views: renderer, URL: testURL, Logger: zap.NewNop()}
	f.postController = NewPostController(base, postService, groupService, pages, 1<<20)
	f.commentController = NewCommentController(base, f.commentService)

	f.author = &models.User{Username: "auth", DateJoined: time.Now()}
	f.other = &models.User{Username: "other", DateJoined: time.Now()}
	require.NoError(t, users.Create(f.author))
	require.NoError(t, users.Create(f.other))

	f.post, err = postService.CreatePost(f.author, services.PostForm{Text: "Тестовый текст"})
	require.NoError(t, err)
	return f
}

// request builds a request with route vars set, signed in as user when
// user is not nil.
func request(method, target string, body io.Reader, vars map[string]string, user *models.User) *http.Request {
	r := httptest.NewRequest(method, target, body)
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	if user != nil {
		r = auth.WithUser(r, user)
	}
	return r
}

func asJSON(r *http.Request) *http.Request {
	r.Header.Set("Accept", "application/json")
	return r
}

func formBody(r *http.Request) *http.Request {
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(strings.NewReader(w.Body.String())).Decode(&out))
	return out
}

// fieldErrors pulls the "errors" object out of a validation response.
func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decode(t, w)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, "no errors object in %s", w.Body.String())
	return errs
}
