package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/middleware"
	"yatube/app/models"
	"yatube/app/services"

	"go.uber.org/zap"
)

// PostController handles HTTP requests for posts
type PostController struct {
	*Base
	posts    *services.PostService
	groups   *services.GroupService
	cache    *cache.PageCache
	maxBytes int64
}

// NewPostController creates a new PostController
func NewPostController(base *Base, posts *services.PostService, groups *services.GroupService, pages *cache.PageCache, maxUploadBytes int64) *PostController {
	return &PostController{Base: base, posts: posts, groups: groups, cache: pages, maxBytes: maxUploadBytes}
}

// postFormData is what the create and edit page shows.
type postFormData struct {
	IsEdit  bool
	PostID  int
	Text    string
	GroupID int
	Groups  []*models.Group
	Errors  map[string]string
}

func indexCacheKey(r *http.Request, page int) string {
	userID := 0
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}
	return fmt.Sprintf("index:%d:%d", userID, page)
}

// Index lists all posts. HTML pages are served from the page cache.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	number := pageNumber(r)
	wantsJSON := middleware.WantsJSON(r)
	key := indexCacheKey(r, number)
	if !wantsJSON {
		if body, ok := pc.cache.Get(key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(body)
			return
		}
	}

	page, err := pc.posts.Index(number)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if wantsJSON {
		pc.sendJSON(w, http.StatusOK, toPageJSON(page, pc.posts.ImageURL))
		return
	}

	rec := &bodyRecorder{ResponseWriter: w}
	pc.render(rec, r, http.StatusOK, "posts/index", "Последние обновления на сайте", map[string]any{"Page": page})
	if rec.status == http.StatusOK {
		pc.cache.Set(key, rec.body.Bytes())
	}
}

// GroupList lists the posts of one group.
func (pc *PostController) GroupList(w http.ResponseWriter, r *http.Request) {
	slug := muxVar(r, "slug")
	group, page, err := pc.posts.GroupPosts(slug, pageNumber(r))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, map[string]any{
			"group": toGroupJSON(group),
			"page":  toPageJSON(page, pc.posts.ImageURL),
		})
		return
	}
	pc.render(w, r, http.StatusOK, "posts/group_list", "Записи сообщества "+group.Title, map[string]any{"Group": group, "Page": page})
}

// Profile lists the posts of one author.
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	username := muxVar(r, "username")
	author, page, err := pc.posts.ProfilePosts(username, pageNumber(r))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, map[string]any{
			"author": toUserJSON(author),
			"page":   toPageJSON(page, pc.posts.ImageURL),
		})
		return
	}
	pc.render(w, r, http.StatusOK, "posts/profile", "Профайл пользователя "+author.Username, map[string]any{"Author": author, "Page": page})
}

// Detail shows one post with its comments.
func (pc *PostController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "post_id")
	if !ok {
		pc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	post, err := pc.posts.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, toPostJSON(post, pc.posts.ImageURL))
		return
	}
	pc.render(w, r, http.StatusOK, "posts/post_detail", "Пост "+post.String(), map[string]any{"Post": post})
}

// Create shows and handles the new post form.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	if r.Method != http.MethodPost {
		pc.showForm(w, r, &postFormData{})
		return
	}

	form, closeFile, err := pc.parseForm(w, r)
	if err != nil {
		pc.formFailed(w, r, &postFormData{}, form, err)
		return
	}
	defer closeFile()

	post, err := pc.posts.CreatePost(user, form)
	if err != nil {
		pc.formFailed(w, r, &postFormData{}, form, err)
		return
	}
	pc.Logger.Info("post created", zap.Int("post_id", post.ID), zap.String("author", user.Username))

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusCreated, toPostJSON(post, pc.posts.ImageURL))
		return
	}
	pc.redirect(w, r, "posts:profile", "username", user.Username)
}

// Edit shows and handles the edit form. Only the author may edit; anyone
// else is sent back to the post.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id, ok := intVar(r, "post_id")
	if !ok {
		pc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	post, err := pc.posts.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if !post.IsAuthoredBy(user) {
		if middleware.WantsJSON(r) {
			pc.sendError(w, r, "Forbidden", http.StatusForbidden)
			return
		}
		pc.redirect(w, r, "posts:post_detail", "post_id", post.ID)
		return
	}

	data := &postFormData{IsEdit: true, PostID: post.ID, Text: post.Text, GroupID: post.GroupID}
	if r.Method != http.MethodPost {
		pc.showForm(w, r, data)
		return
	}

	form, closeFile, err := pc.parseForm(w, r)
	if err != nil {
		pc.formFailed(w, r, data, form, err)
		return
	}
	defer closeFile()

	updated, err := pc.posts.UpdatePost(user, id, form)
	if errors.Is(err, services.ErrForbidden) {
		pc.redirect(w, r, "posts:post_detail", "post_id", id)
		return
	}
	if err != nil {
		pc.formFailed(w, r, data, form, err)
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, toPostJSON(updated, pc.posts.ImageURL))
		return
	}
	pc.redirect(w, r, "posts:post_detail", "post_id", id)
}

// Delete removes a post and returns its author to their profile.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id, ok := intVar(r, "post_id")
	if !ok {
		pc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	err := pc.posts.DeletePost(user, id)
	switch {
	case errors.Is(err, services.ErrForbidden) && !middleware.WantsJSON(r):
		pc.redirect(w, r, "posts:post_detail", "post_id", id)
		return
	case err != nil:
		pc.fail(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	pc.redirect(w, r, "posts:profile", "username", user.Username)
}

func (pc *PostController) showForm(w http.ResponseWriter, r *http.Request, data *postFormData) {
	groups, err := pc.groups.List()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	data.Groups = groups
	title := "Новый пост"
	if data.IsEdit {
		title = "Редактировать пост"
	}
	pc.render(w, r, http.StatusOK, "posts/create_post", title, data)
}

// formFailed shows the form again with errors, or passes anything that is
// not a form problem on to fail.
func (pc *PostController) formFailed(w http.ResponseWriter, r *http.Request, data *postFormData, form services.PostForm, err error) {
	errs := services.FieldErrors(err)
	if errs == nil {
		pc.fail(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		pc.sendValidation(w, errs)
		return
	}
	data.Text = form.Text
	data.GroupID = form.GroupID
	data.Errors = errs
	pc.showForm(w, r, data)
}

// parseForm reads a urlencoded or multipart post form. The returned
// closer releases the uploaded file.
func (pc *PostController) parseForm(w http.ResponseWriter, r *http.Request) (services.PostForm, func(), error) {
	noop := func() {}
	var form services.PostForm

	// The whole body is capped, not just the part buffered in memory.
	r.Body = http.MaxBytesReader(w, r.Body, pc.maxBytes)

	var tooLarge *http.MaxBytesError
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(pc.maxBytes); err != nil {
			msg := "The submitted file is malformed."
			if errors.As(err, &tooLarge) {
				msg = fmt.Sprintf("The submitted data exceeds %d bytes.", pc.maxBytes)
			}
			return form, noop, &services.ValidationError{Fields: map[string]string{"image": msg}}
		}
	} else if err := r.ParseForm(); err != nil {
		msg := err.Error()
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("The submitted data exceeds %d bytes.", pc.maxBytes)
		}
		return form, noop, &services.ValidationError{Fields: map[string]string{"__all__": msg}}
	}

	form.Text = r.PostFormValue("text")
	if raw := strings.TrimSpace(r.PostFormValue("group")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return form, noop, &services.ValidationError{Fields: map[string]string{"group": "Select a valid choice. That choice is not one of the available choices."}}
		}
		form.GroupID = id
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, noop, nil
	case err != nil:
		return form, noop, err
	}
	if header.Size == 0 {
		file.Close()
		return form, noop, nil
	}
	form.Image = file
	return form, func() { closeQuietly(pc.Logger, file) }, nil
}

func closeQuietly(logger *zap.Logger, f multipart.File) {
	if err := f.Close(); err != nil {
		logger.Debug("close upload", zap.Error(err))
	}
}
