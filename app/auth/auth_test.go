package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"yatube/app/models"
	"yatube/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSessions(t *testing.T) (*Sessions, *models.User, *models.User) {
	t.Helper()
	users := mock.NewUserRepository()
	author := &models.User{Username: "auth"}
	staff := &models.User{Username: "admin", IsStaff: true}
	require.NoError(t, users.Create(author))
	require.NoError(t, users.Create(staff))

	key := []byte("0123456789abcdef0123456789abcdef")
	return NewSessions("test-session", key, false, users, zap.NewNop()), author, staff
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	if u, ok := CurrentUser(r); ok {
		w.Write([]byte(u.Username))
		return
	}
	w.Write([]byte("anonymous"))
}

func TestLoginRoundTrip(t *testing.T) {
	s, author, _ := setupSessions(t)

	login := httptest.NewRecorder()
	require.NoError(t, s.Login(login, httptest.NewRequest(http.MethodPost, "/auth/login/", nil), author))
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w := httptest.NewRecorder()
	s.LoadSessionUser(http.HandlerFunc(whoAmI)).ServeHTTP(w, req)
	assert.Equal(t, "auth", w.Body.String())

	logout := httptest.NewRecorder()
	require.NoError(t, s.Logout(logout, req))
	cleared := logout.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestCookieSignsIn(t *testing.T) {
	s, author, _ := setupSessions(t)

	cookie, err := s.Cookie(author)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.LoadSessionUser(http.HandlerFunc(whoAmI)).ServeHTTP(w, req)
	assert.Equal(t, "auth", w.Body.String())
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	s, _, _ := setupSessions(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})
	w := httptest.NewRecorder()
	s.LoadSessionUser(http.HandlerFunc(whoAmI)).ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequireLogin(t *testing.T) {
	s, author, _ := setupSessions(t)
	handler := s.RequireLogin(http.HandlerFunc(whoAmI))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, WithUser(httptest.NewRequest(http.MethodGet, "/create/", nil), author))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "auth", w.Body.String())
}

func TestRequireStaff(t *testing.T) {
	s, author, staff := setupSessions(t)
	handler := s.RequireStaff(http.HandlerFunc(whoAmI))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, WithUser(httptest.NewRequest(http.MethodGet, "/admin/", nil), author))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, WithUser(httptest.NewRequest(http.MethodGet, "/admin/", nil), staff))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
