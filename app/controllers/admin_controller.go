package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/app/admin"
	"yatube/app/cache"
	"yatube/app/middleware"

	"go.uber.org/zap"
)

// AdminController serves the staff-only admin site.
type AdminController struct {
	*Base
	site  *admin.Site
	cache *cache.PageCache
}

func NewAdminController(base *Base, site *admin.Site, pages *cache.PageCache) *AdminController {
	return &AdminController{Base: base, site: site, cache: pages}
}

type changeFormData struct {
	Model  *admin.ModelAdmin
	PK     int
	Fields []admin.FormField
	Errors map[string]string
}

type deleteFormData struct {
	Model *admin.ModelAdmin
	PK    int
	Label string
}

type changeListJSON struct {
	Model   string            `json:"model"`
	Columns []string          `json:"columns"`
	Rows    []map[string]any  `json:"results"`
	Count   int               `json:"count"`
	Total   int               `json:"total"`
	Filters map[string]string `json:"filters,omitempty"`
}

func (ac *AdminController) model(w http.ResponseWriter, r *http.Request) (*admin.ModelAdmin, bool) {
	m, err := ac.site.Model(muxVar(r, "model"))
	if err != nil {
		ac.sendError(w, r, "Not found", http.StatusNotFound)
		return nil, false
	}
	return m, true
}

func (ac *AdminController) pk(w http.ResponseWriter, r *http.Request) (int, bool) {
	pk, ok := intVar(r, "pk")
	if !ok {
		ac.sendError(w, r, "Not found", http.StatusNotFound)
	}
	return pk, ok
}

// Index lists the administered entities.
func (ac *AdminController) Index(w http.ResponseWriter, r *http.Request) {
	models := ac.site.Models()
	if middleware.WantsJSON(r) {
		names := make([]string, 0, len(models))
		for _, m := range models {
			names = append(names, m.Name)
		}
		ac.sendJSON(w, http.StatusOK, map[string]any{"models": names})
		return
	}
	ac.render(w, r, http.StatusOK, "admin/index", "Администрирование сайта", map[string]any{"Models": models})
}

// ChangeList shows the records of one entity. A POST saves an inline
// edit of a list_editable column.
func (ac *AdminController) ChangeList(w http.ResponseWriter, r *http.Request) {
	m, ok := ac.model(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodPost {
		ac.saveInline(w, r, m)
		return
	}

	q := admin.Query{Search: r.URL.Query().Get("q"), Filters: make(map[string]string)}
	for _, name := range m.ListFilter {
		if v := r.URL.Query().Get(name); v != "" {
			q.Filters[name] = v
		}
	}
	cl, err := ac.site.ChangeList(m.Name, q)
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		out := changeListJSON{Model: m.Name, Count: len(cl.Rows), Total: cl.Total, Rows: []map[string]any{}}
		if len(q.Filters) > 0 {
			out.Filters = q.Filters
		}
		for _, c := range cl.Columns {
			out.Columns = append(out.Columns, c.Name)
		}
		for _, row := range cl.Rows {
			line := make(map[string]any, len(row.Cells))
			for _, cell := range row.Cells {
				line[cell.Field] = cell.Display
			}
			out.Rows = append(out.Rows, line)
		}
		ac.sendJSON(w, http.StatusOK, out)
		return
	}
	ac.render(w, r, http.StatusOK, "admin/change_list", m.VerboseNamePlural, map[string]any{"ChangeList": cl})
}

func (ac *AdminController) saveInline(w http.ResponseWriter, r *http.Request, m *admin.ModelAdmin) {
	if err := r.ParseForm(); err != nil {
		ac.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	pk, err := strconv.Atoi(r.PostFormValue("pk"))
	if err != nil {
		ac.sendError(w, r, "Invalid pk", http.StatusBadRequest)
		return
	}
	values := make(map[string]string)
	for _, name := range m.ListEditable {
		if v, ok := r.PostForm[name]; ok && len(v) > 0 {
			values[name] = v[0]
		}
	}
	if err := ac.site.UpdateListEditable(m.Name, pk, values); err != nil {
		ac.adminFail(w, r, err)
		return
	}
	ac.changed(m.Name, "inline edit", pk)
	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Add shows and handles the add form.
func (ac *AdminController) Add(w http.ResponseWriter, r *http.Request) {
	m, ok := ac.model(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		ac.showForm(w, r, m, 0, nil, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		ac.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	values := m.FormValues(r.PostForm)
	pk, err := ac.site.Add(m.Name, values)
	if errs := admin.FormErrors(err); errs != nil {
		ac.formInvalid(w, r, m, 0, values, errs)
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.changed(m.Name, "added", pk)
	ac.afterSave(w, r, m, pk, http.StatusCreated)
}

// Change shows and handles the change form of one record.
func (ac *AdminController) Change(w http.ResponseWriter, r *http.Request) {
	m, ok := ac.model(w, r)
	if !ok {
		return
	}
	pk, ok := ac.pk(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		if middleware.WantsJSON(r) {
			row, err := ac.site.Get(m.Name, pk)
			if err != nil {
				ac.fail(w, r, err)
				return
			}
			out := map[string]any{"pk": row.PK}
			for _, f := range m.Fields {
				out[f.Name] = m.Display(row.Values[f.Name])
			}
			ac.sendJSON(w, http.StatusOK, out)
			return
		}
		ac.showForm(w, r, m, pk, nil, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		ac.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	values := m.FormValues(r.PostForm)
	err := ac.site.Change(m.Name, pk, values)
	if errs := admin.FormErrors(err); errs != nil {
		ac.formInvalid(w, r, m, pk, values, errs)
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.changed(m.Name, "changed", pk)
	ac.afterSave(w, r, m, pk, http.StatusOK)
}

// Delete asks for confirmation and removes one record.
func (ac *AdminController) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := ac.model(w, r)
	if !ok {
		return
	}
	pk, ok := ac.pk(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		label, err := ac.site.Label(m.Name, pk)
		if err != nil {
			ac.fail(w, r, err)
			return
		}
		ac.render(w, r, http.StatusOK, "admin/delete_form", "Удаление", &deleteFormData{Model: m, PK: pk, Label: label})
		return
	}
	if err := ac.site.Delete(m.Name, pk); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.changed(m.Name, "deleted", pk)
	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ac.redirect(w, r, "admin:changelist", "model", m.Name)
}

func (ac *AdminController) showForm(w http.ResponseWriter, r *http.Request, m *admin.ModelAdmin, pk int, values, errs map[string]string) {
	fields, err := ac.site.Form(m.Name, pk, values, errs)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	title := "Добавить " + m.VerboseName
	if pk != 0 {
		title = "Изменить " + m.VerboseName
	}
	ac.render(w, r, http.StatusOK, "admin/change_form", title, &changeFormData{Model: m, PK: pk, Fields: fields, Errors: errs})
}

func (ac *AdminController) formInvalid(w http.ResponseWriter, r *http.Request, m *admin.ModelAdmin, pk int, values, errs map[string]string) {
	if middleware.WantsJSON(r) {
		ac.sendValidation(w, errs)
		return
	}
	ac.showForm(w, r, m, pk, values, errs)
}

func (ac *AdminController) afterSave(w http.ResponseWriter, r *http.Request, m *admin.ModelAdmin, pk int, status int) {
	if middleware.WantsJSON(r) {
		ac.sendJSON(w, status, map[string]any{"model": m.Name, "pk": pk})
		return
	}
	ac.redirect(w, r, "admin:changelist", "model", m.Name)
}

func (ac *AdminController) adminFail(w http.ResponseWriter, r *http.Request, err error) {
	if errs := admin.FormErrors(err); errs != nil {
		if middleware.WantsJSON(r) {
			ac.sendValidation(w, errs)
			return
		}
		ac.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, admin.ErrNotEditable) {
		ac.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	ac.fail(w, r, err)
}

// changed logs an admin edit and drops cached pages that may show it.
func (ac *AdminController) changed(model, action string, pk int) {
	ac.cache.Clear()
	ac.Logger.Info("admin "+action, zap.String("model", model), zap.Int("pk", pk))
}
