package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"yatube/app/auth"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Base carries what every controller needs to answer a request.
type Base struct {
	Views  *views.Renderer
	URL    views.URLFunc
	Logger *zap.Logger
}

func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	user, _ := auth.CurrentUser(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := b.Views.Render(&buf, page, views.Context{User: user, Title: title, Data: data}); err != nil {
		b.Logger.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (b *Base) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.Logger.Warn("encode json response", zap.Error(err))
	}
}

func (b *Base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if middleware.WantsJSON(r) {
		b.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	if status == http.StatusNotFound {
		b.render(w, r, status, "errors/not_found", "Страница не найдена", message)
		return
	}
	http.Error(w, message, status)
}

// sendValidation answers a rejected JSON form.
func (b *Base) sendValidation(w http.ResponseWriter, errs map[string]string) {
	b.sendJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// fail maps a service error onto a response.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		b.sendError(w, r, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		b.sendError(w, r, "Forbidden", http.StatusForbidden)
	case services.FieldErrors(err) != nil:
		b.sendError(w, r, err.Error(), http.StatusBadRequest)
	default:
		b.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		b.sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (b *Base) redirect(w http.ResponseWriter, r *http.Request, name string, pairs ...any) {
	target, err := b.URL(name, pairs...)
	if err != nil {
		b.fail(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// intVar parses a numeric route variable. Routes only match digits, so a
// failure means the id overflowed and cannot exist.
func intVar(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil
}

// pageNumber reads ?page=, defaulting to 1. Garbage also means 1.
func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// bodyRecorder copies what it writes so the response can be cached.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (b *bodyRecorder) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.body.Write(p)
	return b.ResponseWriter.Write(p)
}

// NotFound answers unmatched paths.
func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.sendError(w, r, "Not found", http.StatusNotFound)
}
