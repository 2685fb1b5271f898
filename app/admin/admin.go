// Package admin is the staff-only management site for posts, groups and
// comments. Each entity is described by a ModelAdmin and backed by a
// Source; the Site builds change lists and applies edits from both.
package admin

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// EmptyValueDisplay is shown in change lists for blank values.
const EmptyValueDisplay = "-пусто-"

var (
	ErrUnknownModel = errors.New("admin: unknown model")
	ErrNotEditable  = errors.New("admin: field is not editable from the change list")
)

// Kind tells the site how to render, filter and edit a field.
type Kind int

const (
	KindInt Kind = iota
	KindText
	KindTextarea
	KindTime
	KindRef
)

// Field describes one attribute of a record.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	ReadOnly bool
}

// Ref is a value pointing at another record.
type Ref struct {
	ID    int
	Label string
}

// Row is one record as seen by the admin. Values hold string, int,
// time.Time, *Ref or nil.
type Row struct {
	PK     int
	Values map[string]any
}

// Choice is an option of a select input or a list filter.
type Choice struct {
	Value string
	Label string
}

// Source loads and stores the records of one entity.
type Source interface {
	Rows() ([]Row, error)
	Get(pk int) (Row, error)
	Create(values map[string]string) (int, error)
	Update(pk int, values map[string]string) error
	Delete(pk int) error
	Choices(field string) ([]Choice, error)
}

// ModelAdmin is the declarative configuration of one entity.
type ModelAdmin struct {
	Name               string
	VerboseName        string
	VerboseNamePlural  string
	Fields             []Field
	ListDisplay        []string
	ListEditable       []string
	SearchFields       []string
	ListFilter         []string
	EmptyValueDisplay  string
	PrepopulatedFields map[string][]string
}

// Field returns the field called name.
func (m *ModelAdmin) Field(name string) (Field, bool) {
	if name == "pk" {
		return Field{Name: "pk", Label: "ID", Kind: KindInt, ReadOnly: true}, true
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsEditable reports whether name may be changed from the change list.
func (m *ModelAdmin) IsEditable(name string) bool {
	for _, f := range m.ListEditable {
		if f == name {
			return true
		}
	}
	return false
}

// check rejects configurations the site cannot serve.
func (m *ModelAdmin) check() error {
	if m.Name == "" {
		return errors.New("admin: model name is required")
	}
	for _, group := range [][]string{m.ListDisplay, m.SearchFields, m.ListFilter} {
		for _, name := range group {
			if _, ok := m.Field(name); !ok {
				return fmt.Errorf("admin: %s has no field %q", m.Name, name)
			}
		}
	}
	for i, name := range m.ListEditable {
		if !contains(m.ListDisplay, name) {
			return fmt.Errorf("admin: %s list_editable[%d] %q is not in list_display", m.Name, i, name)
		}
		if len(m.ListDisplay) > 0 && m.ListDisplay[0] == name {
			return fmt.Errorf("admin: %s list_editable[%d] %q is the change link column", m.Name, i, name)
		}
		if f, _ := m.Field(name); f.ReadOnly {
			return fmt.Errorf("admin: %s list_editable[%d] %q is read-only", m.Name, i, name)
		}
	}
	for target, sources := range m.PrepopulatedFields {
		if _, ok := m.Field(target); !ok {
			return fmt.Errorf("admin: %s prepopulates unknown field %q", m.Name, target)
		}
		for _, src := range sources {
			if _, ok := m.Field(src); !ok {
				return fmt.Errorf("admin: %s prepopulates from unknown field %q", m.Name, src)
			}
		}
	}
	return nil
}

func (m *ModelAdmin) emptyValue() string {
	if m.EmptyValueDisplay != "" {
		return m.EmptyValueDisplay
	}
	return EmptyValueDisplay
}

// Display renders v for a change list cell.
func (m *ModelAdmin) Display(v any) string {
	switch val := v.(type) {
	case nil:
		return m.emptyValue()
	case string:
		if val == "" {
			return m.emptyValue()
		}
		return val
	case int:
		return strconv.Itoa(val)
	case time.Time:
		if val.IsZero() {
			return m.emptyValue()
		}
		return val.Format("2006-01-02 15:04")
	case *Ref:
		if val == nil || val.ID == 0 {
			return m.emptyValue()
		}
		return val.Label
	default:
		return fmt.Sprint(val)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
