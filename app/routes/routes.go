// Package routes maps URLs to controllers and reverses named routes.
package routes

import (
	"fmt"
	"net/http"

	"yatube/app/admin"
	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/controllers"
	"yatube/app/media"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps are the pieces the router is built from.
type Deps struct {
	Store          *repositories.Store
	Media          *media.Storage
	Cache          *cache.PageCache
	Sessions       *auth.Sessions
	Logger         *zap.Logger
	MaxUploadBytes int64
}

// Router serves the whole site.
type Router struct {
	mux     *mux.Router
	handler http.Handler
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// URL reverses a named route: URL("posts:profile", "username", "leo").
func (rt *Router) URL(name string, pairs ...any) (string, error) {
	route := rt.mux.Get(name)
	if route == nil {
		return "", fmt.Errorf("no route named %q", name)
	}
	strs := make([]string, len(pairs))
	for i, p := range pairs {
		strs[i] = fmt.Sprint(p)
	}
	u, err := route.URL(strs...)
	if err != nil {
		return "", fmt.Errorf("reverse %s: %w", name, err)
	}
	return u.String(), nil
}

// MustURL is URL for callers that know the route exists, such as tests.
func (rt *Router) MustURL(name string, pairs ...any) string {
	u, err := rt.URL(name, pairs...)
	if err != nil {
		panic(err)
	}
	return u
}

// New builds the services, controllers and routes over d.
func New(d Deps) (*Router, error) {
	rt := &Router{mux: mux.NewRouter()}

	store := d.Store
	userService := services.NewUserService(store.Users)
	groupService := services.NewGroupService(store.Groups, store.Posts)
	postService := services.NewPostService(store.Posts, store.Comments, store.Users, store.Groups, d.Media, d.Logger)
	commentService := services.NewCommentService(store.Comments, store.Posts, store.Users)

	site, err := admin.NewDefaultSite(store, groupService, d.Media)
	if err != nil {
		return nil, err
	}
	renderer, err := views.New(rt.URL, d.Media.URL)
	if err != nil {
		return nil, err
	}

	base := &controllers.Base{Views: renderer, URL: rt.URL, Logger: d.Logger}
	postController := controllers.NewPostController(base, postService, groupService, d.Cache, d.MaxUploadBytes)
	commentController := controllers.NewCommentController(base, commentService)
	authController := controllers.NewAuthController(base, userService, d.Sessions)
	adminController := controllers.NewAdminController(base, site, d.Cache)

	login := func(h http.HandlerFunc) http.Handler { return d.Sessions.RequireLogin(h) }
	r := rt.mux
	r.NotFoundHandler = http.HandlerFunc(base.NotFound)
	r.Use(middleware.ContentTypeJSON)

	// Posts
	r.HandleFunc("/", postController.Index).Methods("GET", "HEAD").Name("posts:index")
	r.HandleFunc("/group/{slug}/", postController.GroupList).Methods("GET", "HEAD").Name("posts:group_list")
	r.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET", "HEAD").Name("posts:profile")
	r.HandleFunc("/posts/{post_id:[0-9]+}/", postController.Detail).Methods("GET", "HEAD").Name("posts:post_detail")
	r.Handle("/create/", login(postController.Create)).Methods("GET", "POST").Name("posts:post_create")
	r.Handle("/posts/{post_id:[0-9]+}/edit/", login(postController.Edit)).Methods("GET", "POST").Name("posts:post_edit")
	r.Handle("/posts/{post_id:[0-9]+}/delete/", login(postController.Delete)).Methods("POST").Name("posts:post_delete")

	// Comments
	r.Handle("/posts/{post_id:[0-9]+}/comment/", login(commentController.Add)).Methods("POST").Name("posts:add_comment")
	r.HandleFunc("/posts/{post_id:[0-9]+}/comments/", commentController.List).Methods("GET").Name("posts:comments")
	r.Handle("/posts/{post_id:[0-9]+}/comments/{comment_id:[0-9]+}/delete/", login(commentController.Delete)).Methods("POST").Name("posts:delete_comment")

	// Accounts
	r.HandleFunc("/auth/signup/", authController.Signup).Methods("GET", "POST").Name("users:signup")
	r.HandleFunc("/auth/login/", authController.Login).Methods("GET", "POST").Name("users:login")
	r.HandleFunc("/auth/logout/", authController.Logout).Methods("GET", "POST").Name("users:logout")

	// Admin
	a := r.PathPrefix("/admin").Subrouter()
	a.Use(d.Sessions.RequireStaff)
	a.HandleFunc("/", adminController.Index).Methods("GET").Name("admin:index")
	a.HandleFunc("/{model}/", adminController.ChangeList).Methods("GET", "POST").Name("admin:changelist")
	a.HandleFunc("/{model}/add/", adminController.Add).Methods("GET", "POST").Name("admin:add")
	a.HandleFunc("/{model}/{pk:[0-9]+}/change/", adminController.Change).Methods("GET", "POST").Name("admin:change")
	a.HandleFunc("/{model}/{pk:[0-9]+}/delete/", adminController.Delete).Methods("GET", "POST").Name("admin:delete")

	// Uploaded files
	r.PathPrefix(d.Media.URLPrefix).Handler(d.Media.Handler()).Methods("GET", "HEAD").Name("media")

	d.Sessions.LoginURL = rt.MustURL("users:login")
	rt.handler = middleware.Recoverer(d.Logger)(middleware.Logger(d.Logger)(d.Sessions.LoadSessionUser(r)))
	return rt, nil
}
