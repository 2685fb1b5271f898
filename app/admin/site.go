package admin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"yatube/app/models"
)

type registration struct {
	model  *ModelAdmin
	source Source
}

// Site is the registry of administered entities.
type Site struct {
	models map[string]*registration
	order  []string
	now    func() time.Time
}

func NewSite() *Site {
	return &Site{models: make(map[string]*registration), now: time.Now}
}

// Register adds an entity. Registering the same name twice is an error.
func (s *Site) Register(model *ModelAdmin, source Source) error {
	if err := model.check(); err != nil {
		return err
	}
	if _, dup := s.models[model.Name]; dup {
		return fmt.Errorf("admin: %s is already registered", model.Name)
	}
	s.models[model.Name] = &registration{model: model, source: source}
	s.order = append(s.order, model.Name)
	return nil
}

// Models lists the registered entities in registration order.
func (s *Site) Models() []*ModelAdmin {
	out := make([]*ModelAdmin, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.models[name].model)
	}
	return out
}

func (s *Site) lookup(name string) (*registration, error) {
	reg, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return reg, nil
}

// Model returns the configuration registered under name.
func (s *Site) Model(name string) (*ModelAdmin, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return reg.model, nil
}

// Query narrows a change list.
type Query struct {
	Search  string
	Filters map[string]string
}

// ListRow is one rendered change list line.
type ListRow struct {
	PK    int
	Cells []Cell
}

// Cell is one rendered value. Editable cells carry the raw value for the
// inline form.
type Cell struct {
	Field    string
	Display  string
	Value    string
	Editable bool
}

// Filter is one sidebar filter with its choices.
type Filter struct {
	Field    string
	Label    string
	Choices  []Choice
	Selected string
}

// ChangeList is the rendered listing of one entity.
type ChangeList struct {
	Model    *ModelAdmin
	Columns  []Field
	Rows     []ListRow
	Filters  []Filter
	Search   string
	Total    int
	Editable map[string][]Choice
}

// ChangeList lists the records of name matching q, newest first.
func (s *Site) ChangeList(name string, q Query) (*ChangeList, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	m := reg.model
	rows, err := reg.source.Rows()
	if err != nil {
		return nil, fmt.Errorf("admin: load %s rows: %w", m.Name, err)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PK > rows[j].PK })

	cl := &ChangeList{Model: m, Search: strings.TrimSpace(q.Search), Total: len(rows)}
	for _, name := range m.ListDisplay {
		f, _ := m.Field(name)
		cl.Columns = append(cl.Columns, f)
	}

	now := s.now()
	for _, name := range m.ListFilter {
		f, _ := m.Field(name)
		cl.Filters = append(cl.Filters, Filter{
			Field:    name,
			Label:    f.Label,
			Choices:  filterChoices(m, f, rows),
			Selected: q.Filters[name],
		})
	}

	terms := strings.Fields(strings.ToLower(cl.Search))
	for _, row := range rows {
		if !matchesSearch(m, row, terms) || !matchesFilters(m, row, q.Filters, now) {
			continue
		}
		cl.Rows = append(cl.Rows, renderRow(m, row))
	}

	if len(m.ListEditable) > 0 {
		cl.Editable = make(map[string][]Choice)
		for _, name := range m.ListEditable {
			choices, err := reg.source.Choices(name)
			if err != nil {
				return nil, fmt.Errorf("admin: %s choices for %s: %w", m.Name, name, err)
			}
			cl.Editable[name] = choices
		}
	}
	return cl, nil
}

func renderRow(m *ModelAdmin, row Row) ListRow {
	lr := ListRow{PK: row.PK}
	for _, name := range m.ListDisplay {
		v := value(row, name)
		lr.Cells = append(lr.Cells, Cell{
			Field:    name,
			Display:  m.Display(v),
			Value:    rawValue(v),
			Editable: m.IsEditable(name),
		})
	}
	return lr
}

func value(row Row, name string) any {
	if name == "pk" {
		return row.PK
	}
	return row.Values[name]
}

// rawValue is the form representation of v: ids for references, the text
// itself otherwise.
func rawValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case *Ref:
		if val == nil || val.ID == 0 {
			return ""
		}
		return strconv.Itoa(val.ID)
	default:
		return fmt.Sprint(val)
	}
}

// searchText is what a search term is matched against.
func searchText(v any) string {
	switch val := v.(type) {
	case *Ref:
		if val == nil {
			return ""
		}
		return val.Label
	default:
		return rawValue(v)
	}
}

// matchesSearch requires every term to occur in at least one search field.
func matchesSearch(m *ModelAdmin, row Row, terms []string) bool {
	for _, term := range terms {
		found := false
		for _, name := range m.SearchFields {
			if strings.Contains(strings.ToLower(searchText(value(row, name))), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesFilters(m *ModelAdmin, row Row, filters map[string]string, now time.Time) bool {
	for _, name := range m.ListFilter {
		selected := filters[name]
		if selected == "" {
			continue
		}
		f, _ := m.Field(name)
		v := value(row, name)
		if f.Kind == KindTime {
			t, _ := v.(time.Time)
			if !inDateRange(selected, t, now) {
				return false
			}
			continue
		}
		if rawValue(v) != selected {
			return false
		}
	}
	return true
}

// Date filter choices.
const (
	DateToday     = "today"
	DatePast7Days = "past_7_days"
	DateThisMonth = "this_month"
	DateThisYear  = "this_year"
)

var dateChoices = []Choice{
	{Value: DateToday, Label: "Today"},
	{Value: DatePast7Days, Label: "Past 7 days"},
	{Value: DateThisMonth, Label: "This month"},
	{Value: DateThisYear, Label: "This year"},
}

// inDateRange reports whether t falls in the named period ending tomorrow
// at midnight, in now's location. Unknown periods match everything.
func inDateRange(period string, t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	var from, until time.Time
	switch period {
	case DateToday:
		from, until = today, tomorrow
	case DatePast7Days:
		from, until = today.AddDate(0, 0, -7), tomorrow
	case DateThisMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		until = from.AddDate(0, 1, 0)
	case DateThisYear:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		until = from.AddDate(1, 0, 0)
	default:
		return true
	}
	t = t.In(now.Location())
	return !t.Before(from) && t.Before(until)
}

// filterChoices lists the distinct values a filter can take.
func filterChoices(m *ModelAdmin, f Field, rows []Row) []Choice {
	if f.Kind == KindTime {
		return append([]Choice(nil), dateChoices...)
	}
	seen := make(map[string]bool)
	var choices []Choice
	for _, row := range rows {
		v := value(row, f.Name)
		raw := rawValue(v)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true
		choices = append(choices, Choice{Value: raw, Label: m.Display(v)})
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].Label < choices[j].Label })
	return choices
}

// UpdateListEditable applies an inline change list edit to record pk.
// Only list_editable fields are accepted.
func (s *Site) UpdateListEditable(name string, pk int, values map[string]string) error {
	reg, err := s.lookup(name)
	if err != nil {
		return err
	}
	for field := range values {
		if !reg.model.IsEditable(field) {
			return fmt.Errorf("%w: %s.%s", ErrNotEditable, name, field)
		}
	}
	return reg.source.Update(pk, values)
}

// Prepopulate fills empty prepopulated fields from their source fields.
func (m *ModelAdmin) Prepopulate(values map[string]string) {
	targets := make([]string, 0, len(m.PrepopulatedFields))
	for target := range m.PrepopulatedFields {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	for _, target := range targets {
		if strings.TrimSpace(values[target]) != "" {
			continue
		}
		var parts []string
		for _, src := range m.PrepopulatedFields[target] {
			parts = append(parts, values[src])
		}
		values[target] = models.Slugify(strings.Join(parts, " "))
	}
}

// Add creates a record from the add form.
func (s *Site) Add(name string, values map[string]string) (int, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	reg.model.Prepopulate(values)
	return reg.source.Create(values)
}

// Change saves the change form of record pk.
func (s *Site) Change(name string, pk int, values map[string]string) error {
	reg, err := s.lookup(name)
	if err != nil {
		return err
	}
	reg.model.Prepopulate(values)
	return reg.source.Update(pk, values)
}

// Get returns record pk of name.
func (s *Site) Get(name string, pk int) (Row, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return Row{}, err
	}
	return reg.source.Get(pk)
}

// Delete removes record pk of name.
func (s *Site) Delete(name string, pk int) error {
	reg, err := s.lookup(name)
	if err != nil {
		return err
	}
	return reg.source.Delete(pk)
}

// Choices lists the options of a reference field.
func (s *Site) Choices(name, field string) ([]Choice, error) {
	reg, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return reg.source.Choices(field)
}
