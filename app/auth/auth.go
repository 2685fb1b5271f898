// Package auth keeps the signed-in user in a cookie session.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Sessions ties the cookie store to the user repository.
type Sessions struct {
	store    *sessions.CookieStore
	name     string
	users    repositories.UserRepository
	logger   *zap.Logger
	LoginURL string
}

// NewSessions creates a cookie session store signed with key.
//
// With secure=false cookies use SameSite=Lax so they work over plain
// http://localhost during development.
func NewSessions(name string, key []byte, secure bool, users repositories.UserRepository, logger *zap.Logger) *Sessions {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 14,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{
		store:    store,
		name:     name,
		users:    users,
		logger:   logger,
		LoginURL: "/auth/login/",
	}
}

// Login stores user in the session.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess, _ := s.store.Get(r, s.name)
	sess.Values[userIDKey] = user.ID
	return sess.Save(r, w)
}

// Logout clears the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, s.name)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Cookie returns a session cookie that signs in user without a request
// round trip.
func (s *Sessions) Cookie(user *models.User) (*http.Cookie, error) {
	values := map[interface{}]interface{}{userIDKey: user.ID}
	encoded, err := securecookie.EncodeMulti(s.name, values, s.store.Codecs...)
	if err != nil {
		return nil, err
	}
	return sessions.NewCookie(s.name, encoded, s.store.Options), nil
}

// LoadSessionUser injects the signed-in user into the request context.
// Unknown users and undecodable cookies are treated as anonymous.
func (s *Sessions) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(r, s.name)
		if err != nil {
			var scErr securecookie.Error
			if errors.As(err, &scErr) && scErr.IsDecode() {
				s.logger.Debug("discarding undecodable session cookie", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		id, ok := sess.Values[userIDKey].(int)
		if !ok || id == 0 {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.users.GetByID(id)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				s.logger.Error("load session user", zap.Int("user_id", id), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, WithUser(r, user))
	})
}

// WithUser returns a copy of r carrying user.
func WithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, user))
}

// CurrentUser returns the signed-in user, if any.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok && u != nil
}

// RequireLogin sends anonymous visitors to the login page, remembering
// where they were going.
func (s *Sessions) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, s.LoginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	})
}

// RequireStaff lets only staff users through. Anonymous users go to the
// login page; signed-in non-staff users get 403.
func (s *Sessions) RequireStaff(next http.Handler) http.Handler {
	return s.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := CurrentUser(r)
		if !u.IsStaff {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
