package admin

import (
	"net/url"
	"strings"
)

// FormField is one input of an add or change form.
type FormField struct {
	Field            Field
	Value            string
	Display          string
	Choices          []Choice
	Textarea         bool
	PrepopulatedFrom string
	Error            string
}

// FormValues picks the editable fields of m out of a submitted form.
// Fields missing from the form are submitted as blank.
func (m *ModelAdmin) FormValues(form url.Values) map[string]string {
	values := make(map[string]string)
	for _, f := range m.Fields {
		if f.ReadOnly {
			continue
		}
		values[f.Name] = form.Get(f.Name)
	}
	return values
}

// Form builds the add form (pk == 0) or the change form of record pk.
// Submitted values, when given, take precedence over stored ones so an
// invalid form is shown back as it was entered.
func (s *Site) Form(name string, pk int, submitted map[string]string, errs map[string]string) ([]FormField, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	m := reg.model

	var row Row
	if pk != 0 {
		if row, err = reg.source.Get(pk); err != nil {
			return nil, err
		}
	}

	var fields []FormField
	for _, f := range m.Fields {
		if f.ReadOnly && pk == 0 {
			continue
		}
		ff := FormField{
			Field:    f,
			Textarea: f.Kind == KindTextarea,
			Error:    errs[f.Name],
		}
		if pk != 0 {
			v := row.Values[f.Name]
			ff.Value = rawValue(v)
			ff.Display = m.Display(v)
		}
		if v, ok := submitted[f.Name]; ok {
			ff.Value = v
		}
		if f.Kind == KindRef && !f.ReadOnly {
			if ff.Choices, err = reg.source.Choices(f.Name); err != nil {
				return nil, err
			}
		}
		if from, ok := m.PrepopulatedFields[f.Name]; ok {
			ff.PrepopulatedFrom = strings.Join(from, ",")
		}
		fields = append(fields, ff)
	}
	return fields, nil
}

// Label is the text used for record pk in confirmations.
func (s *Site) Label(name string, pk int) (string, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	row, err := reg.source.Get(pk)
	if err != nil {
		return "", err
	}
	m := reg.model
	if len(m.ListDisplay) > 1 {
		return m.Display(value(row, m.ListDisplay[1])), nil
	}
	return m.Display(row.PK), nil
}
