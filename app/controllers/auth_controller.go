package controllers

import (
	"errors"
	"net/http"
	"strings"

	"yatube/app/auth"
	"yatube/app/middleware"
	"yatube/app/services"

	"go.uber.org/zap"
)

// AuthController handles signup, login and logout.
type AuthController struct {
	*Base
	users    *services.UserService
	sessions *auth.Sessions
}

func NewAuthController(base *Base, users *services.UserService, sessions *auth.Sessions) *AuthController {
	return &AuthController{Base: base, users: users, sessions: sessions}
}

type loginData struct {
	Next     string
	Username string
	Errors   map[string]string
}

type signupData struct {
	Username string
	Email    string
	Errors   map[string]string
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/login", "Войти", &loginData{Next: safeNext(r.URL.Query().Get("next"))})
		return
	}
	if err := r.ParseForm(); err != nil {
		ac.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	next := safeNext(r.PostFormValue("next"))
	user, err := ac.users.Authenticate(username, r.PostFormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		errs := map[string]string{"__all__": "Please enter a correct username and password. Note that both fields may be case-sensitive."}
		if middleware.WantsJSON(r) {
			ac.sendValidation(w, errs)
			return
		}
		ac.render(w, r, http.StatusOK, "users/login", "Войти", &loginData{Next: next, Username: username, Errors: errs})
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	if err := ac.sessions.Login(w, r, user); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.Logger.Info("user logged in", zap.String("username", user.Username))
	if middleware.WantsJSON(r) {
		ac.sendJSON(w, http.StatusOK, toUserJSON(user))
		return
	}
	if next != "" {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	ac.redirect(w, r, "posts:index")
}

func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/signup", "Регистрация", &signupData{})
		return
	}
	if err := r.ParseForm(); err != nil {
		ac.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	form := services.SignupForm{
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
	user, err := ac.users.Register(form)
	if errs := services.FieldErrors(err); errs != nil {
		if middleware.WantsJSON(r) {
			ac.sendValidation(w, errs)
			return
		}
		ac.render(w, r, http.StatusOK, "users/signup", "Регистрация", &signupData{Username: form.Username, Email: form.Email, Errors: errs})
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	if err := ac.sessions.Login(w, r, user); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.Logger.Info("user signed up", zap.String("username", user.Username))
	if middleware.WantsJSON(r) {
		ac.sendJSON(w, http.StatusCreated, toUserJSON(user))
		return
	}
	ac.redirect(w, r, "posts:index")
}

func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.sessions.Logout(w, r); err != nil {
		ac.Logger.Warn("logout: save session", zap.Error(err))
	}
	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ac.redirect(w, r, "posts:index")
}
