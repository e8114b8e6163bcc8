package listview

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// Kind is the value type of a field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindTime   Kind = "time"
)

// MatchKind is how a filter compares its value.
type MatchKind string

const (
	MatchContains MatchKind = "contains"
	MatchEquals   MatchKind = "equals"
	MatchCustom   MatchKind = "custom"
)

// Field is a named accessor on R. Exactly one accessor is set.
type Field[R any] struct {
	Name   string
	Kind   Kind
	noSort bool
	text   func(R) string
	number func(R) float64
	time   func(R) time.Time
}

// Compare orders a and b by this field; text compares case-insensitively.
func (f Field[R]) Compare(a, b R) int {
	switch f.Kind {
	case KindNumber:
		return cmp.Compare(f.number(a), f.number(b))
	case KindTime:
		return f.time(a).Compare(f.time(b))
	default:
		return strings.Compare(strings.ToLower(f.text(a)), strings.ToLower(f.text(b)))
	}
}

// String renders the field value of r for display or export.
func (f Field[R]) String(r R) string {
	switch f.Kind {
	case KindNumber:
		return strconv.FormatFloat(f.number(r), 'f', -1, 64)
	case KindTime:
		t := f.time(r)
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	default:
		return f.text(r)
	}
}

// Value returns the raw value of r (string, float64 or time.Time).
func (f Field[R]) Value(r R) any {
	switch f.Kind {
	case KindNumber:
		return f.number(r)
	case KindTime:
		return f.time(r)
	default:
		return f.text(r)
	}
}

func (f Field[R]) equals(r R, value string) bool {
	switch f.Kind {
	case KindNumber:
		want, err := strconv.ParseFloat(value, 64)
		return err == nil && f.number(r) == want
	case KindTime:
		return false
	default:
		return strings.EqualFold(f.text(r), value)
	}
}

func (f Field[R]) contains(r R, needle string) bool {
	if f.Kind != KindText {
		return false
	}
	return strings.Contains(strings.ToLower(f.text(r)), needle)
}

// FilterDef is a named predicate. Contains filters search Fields for a
// case-insensitive substring, Equals filters compare Fields[0], Custom
// filters delegate to Match.
type FilterDef[R any] struct {
	Name   string
	Kind   MatchKind
	Fields []string
	Match  func(r R, value string) bool
}

// FieldInfo and FilterInfo describe a schema to transports.
type FieldInfo struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Sortable bool   `json:"sortable"`
}

type FilterInfo struct {
	Name   string    `json:"name"`
	Kind   MatchKind `json:"kind"`
	Fields []string  `json:"fields,omitempty"`
}

// Schema declares the fields and filters of one record type. Build it once
// with the chained methods and treat it as read-only afterwards.
type Schema[R any] struct {
	fields      map[string]Field[R]
	fieldOrder  []string
	filters     map[string]FilterDef[R]
	filterOrder []string
}

// NewSchema returns an empty schema.
func NewSchema[R any]() *Schema[R] {
	return &Schema[R]{
		fields:  make(map[string]Field[R]),
		filters: make(map[string]FilterDef[R]),
	}
}

func (s *Schema[R]) addField(f Field[R]) *Schema[R] {
	if _, ok := s.fields[f.Name]; !ok {
		s.fieldOrder = append(s.fieldOrder, f.Name)
	}
	s.fields[f.Name] = f
	return s
}

func (s *Schema[R]) addFilter(f FilterDef[R]) *Schema[R] {
	if _, ok := s.filters[f.Name]; !ok {
		s.filterOrder = append(s.filterOrder, f.Name)
	}
	s.filters[f.Name] = f
	return s
}

// Text declares a string field.
func (s *Schema[R]) Text(name string, fn func(R) string) *Schema[R] {
	return s.addField(Field[R]{Name: name, Kind: KindText, text: fn})
}

// Number declares a numeric field.
func (s *Schema[R]) Number(name string, fn func(R) float64) *Schema[R] {
	return s.addField(Field[R]{Name: name, Kind: KindNumber, number: fn})
}

// Time declares a timestamp field.
func (s *Schema[R]) Time(name string, fn func(R) time.Time) *Schema[R] {
	return s.addField(Field[R]{Name: name, Kind: KindTime, time: fn})
}

// NoSort marks declared fields as display and filter only. Sorts on them
// are dropped like sorts on unknown fields.
func (s *Schema[R]) NoSort(names ...string) *Schema[R] {
	for _, name := range names {
		if f, ok := s.fields[name]; ok {
			f.noSort = true
			s.fields[name] = f
		}
	}
	return s
}

// Contains declares a text-search filter over one or more text fields.
func (s *Schema[R]) Contains(name string, fields ...string) *Schema[R] {
	return s.addFilter(FilterDef[R]{Name: name, Kind: MatchContains, Fields: fields})
}

// Equals declares an equality filter on field. When field is empty the
// filter name is used as the field name.
func (s *Schema[R]) Equals(name, field string) *Schema[R] {
	if field == "" {
		field = name
	}
	return s.addFilter(FilterDef[R]{Name: name, Kind: MatchEquals, Fields: []string{field}})
}

// Match declares a custom predicate.
func (s *Schema[R]) Match(name string, fn func(r R, value string) bool) *Schema[R] {
	return s.addFilter(FilterDef[R]{Name: name, Kind: MatchCustom, Match: fn})
}

// Field looks a field up by name.
func (s *Schema[R]) Field(name string) (Field[R], bool) {
	f, ok := s.fields[name]
	return f, ok
}

// LookupFilter looks a filter up by name.
func (s *Schema[R]) LookupFilter(name string) (FilterDef[R], bool) {
	f, ok := s.filters[name]
	return f, ok
}

// Fields lists fields in declaration order.
func (s *Schema[R]) Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(s.fieldOrder))
	for _, name := range s.fieldOrder {
		f := s.fields[name]
		out = append(out, FieldInfo{Name: name, Kind: f.Kind, Sortable: !f.noSort})
	}
	return out
}

// Filters lists filters in declaration order.
func (s *Schema[R]) Filters() []FilterInfo {
	out := make([]FilterInfo, 0, len(s.filterOrder))
	for _, name := range s.filterOrder {
		f := s.filters[name]
		out = append(out, FilterInfo{Name: name, Kind: f.Kind, Fields: f.Fields})
	}
	return out
}

// Sortable reports whether field names a declared, sortable field.
func (s *Schema[R]) Sortable(field string) bool {
	f, ok := s.fields[field]
	return ok && !f.noSort
}

// NormalizeSort drops sorts on unknown or unsortable fields.
func (s *Schema[R]) NormalizeSort(srt Sort) Sort {
	if !srt.Active() || !s.Sortable(srt.Field) {
		return Sort{}
	}
	return srt
}

// NormalizeFilter keeps only active entries naming declared filters.
func (s *Schema[R]) NormalizeFilter(f Filter) Filter {
	out := Filter{}
	for name, value := range f.Active() {
		if _, ok := s.filters[name]; ok {
			out[name] = value
		}
	}
	return out
}

// Matches reports whether r satisfies every entry of an already normalized filter.
func (s *Schema[R]) Matches(r R, f Filter) bool {
	for name, value := range f {
		def, ok := s.filters[name]
		if !ok {
			continue
		}
		if !s.match(def, r, value) {
			return false
		}
	}
	return true
}

func (s *Schema[R]) match(def FilterDef[R], r R, value string) bool {
	switch def.Kind {
	case MatchContains:
		needle := strings.ToLower(value)
		for _, name := range def.Fields {
			if f, ok := s.fields[name]; ok && f.contains(r, needle) {
				return true
			}
		}
		return false
	case MatchEquals:
		if len(def.Fields) == 0 {
			return true
		}
		f, ok := s.fields[def.Fields[0]]
		return ok && f.equals(r, value)
	default:
		if def.Match == nil {
			return true
		}
		return def.Match(r, value)
	}
}
