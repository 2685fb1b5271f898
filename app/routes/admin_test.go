package routes

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAccess(t *testing.T) {
	app := setupTestApp(t)
	staff := app.newUser(t, "admin", true)

	w := app.get(t, "/admin/", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fadmin%2F", w.Header().Get("Location"))

	w = app.get(t, "/admin/", app.user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.get(t, "/admin/", staff)
	require.Equal(t, http.StatusOK, w.Code)
	for _, path := range []string{"/admin/post/", "/admin/group/", "/admin/comment/"} {
		assert.Contains(t, w.Body.String(), path)
	}

	w = app.get(t, "/admin/nothing/", staff)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminChangeList(t *testing.T) {
	app := setupTestApp(t)
	staff := app.newUser(t, "admin", true)

	var cl struct {
		Columns []string            `json:"columns"`
		Results []map[string]string `json:"results"`
		Count   int                 `json:"count"`
	}
	w := app.getJSON(t, "/admin/post/?q="+url.QueryEscape("Тестовый"), staff)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cl))
	assert.Equal(t, []string{"pk", "text", "pub_date", "author", "group"}, cl.Columns)
	require.Equal(t, 1, cl.Count)
	assert.Equal(t, "auth", cl.Results[0]["author"])
	assert.Equal(t, "Тестовый заголовок", cl.Results[0]["group"])

	w = app.getJSON(t, "/admin/post/?q=nothing+like+this", staff)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cl))
	assert.Zero(t, cl.Count)

	w = app.get(t, "/admin/post/", staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Тестовый текст")
}

func TestAdminInlineEditClearsCache(t *testing.T) {
	app := setupTestApp(t)
	staff := app.newUser(t, "admin", true)

	before := app.get(t, "/", nil)
	require.Contains(t, before.Body.String(), "/group/test-slug/")

	w := app.postForm(t, "/admin/post/", url.Values{
		"pk":    {strconv.Itoa(app.post.ID)},
		"group": {""},
	}, staff)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/post/", w.Header().Get("Location"))

	post, err := app.store.Posts.GetByID(app.post.ID)
	require.NoError(t, err)
	assert.Zero(t, post.GroupID)

	after := app.get(t, "/", nil)
	assert.NotContains(t, after.Body.String(), "/group/test-slug/")
}

func TestAdminGroupAddPrepopulatesSlug(t *testing.T) {
	app := setupTestApp(t)
	staff := app.newUser(t, "admin", true)

	w := app.get(t, "/admin/group/add/", staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="slug"`)

	w = app.postForm(t, "/admin/group/add/", url.Values{
		"title":       {"Go tips"},
		"slug":        {""},
		"description": {"Short notes"},
	}, staff)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/group/", w.Header().Get("Location"))

	g, err := app.store.Groups.GetBySlug("go-tips")
	require.NoError(t, err)
	assert.Equal(t, "Go tips", g.Title)

	w = app.postForm(t, "/admin/group/add/", url.Values{"title": {"Go tips"}}, staff)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestAdminDeletePost(t *testing.T) {
	app := setupTestApp(t)
	staff := app.newUser(t, "admin", true)
	path := app.router.MustURL("admin:delete", "model", "post", "pk", app.post.ID)

	w := app.get(t, path, staff)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.postForm(t, path, nil, staff)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Zero(t, app.postCount(t))
	assert.False(t, app.media.Exists(app.post.Image))
}
