package query

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Op is a comparison operator accepted in the field[op]=value convention.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Filter is a single parsed field condition.
type Filter struct {
	Field string
	Op    Op
	Value string
}

// SortKey is one ordering term. Multiple keys apply in listed order.
type SortKey struct {
	Field string
	Desc  bool
}

// Config declares what a resource allows the query string to do.
// Every field name that can appear in a filter, sort or projection must be
// allow-listed here; anything else is rejected before the store is touched.
type Config struct {
	DefaultLimit int
	MaxLimit     int
	DefaultSort  SortKey
	FilterFields map[string]bool
	SortFields   map[string]bool
	SelectFields map[string]bool // nil disables the fields parameter
	SearchFields []string        // columns the search term matches against
	Reserved     []string        // extra keys handled by the caller, skipped here
}

// Options is a fully validated read operation. Construct via Parse; a
// hand-built Options bypasses validation.
type Options struct {
	Page    int
	Limit   int
	Sort    []SortKey
	Fields  []string
	Search  string
	Filters []Filter
}

// BadRequestError marks a query-string validation failure. Handlers map it
// to a 400; it never reaches the store.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

func badRequest(format string, args ...interface{}) error {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}

// IsBadRequest reports whether err originated from query validation.
func IsBadRequest(err error) bool {
	_, ok := err.(*BadRequestError)
	return ok
}

var reservedKeys = map[string]bool{
	"page":   true,
	"limit":  true,
	"sort":   true,
	"fields": true,
	"search": true,
}

// Parse validates the raw query-string values against cfg and produces a
// composed read operation. Any failure short-circuits: no partially
// validated Options is ever returned.
func Parse(values map[string]string, cfg Config) (*Options, error) {
	opts := &Options{
		Page:  1,
		Limit: cfg.DefaultLimit,
	}

	if err := parsePagination(values, cfg, opts); err != nil {
		return nil, err
	}
	if err := parseSort(values["sort"], cfg, opts); err != nil {
		return nil, err
	}
	if err := parseFields(values["fields"], cfg, opts); err != nil {
		return nil, err
	}

	opts.Search = strings.TrimSpace(values["search"])

	if err := parseFilters(values, cfg, opts); err != nil {
		return nil, err
	}

	return opts, nil
}

func parsePagination(values map[string]string, cfg Config, opts *Options) error {
	if raw, ok := values["page"]; ok && raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest("Page must be a number")
		}
		opts.Page = page
	}
	if raw, ok := values["limit"]; ok && raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest("Limit must be a number")
		}
		opts.Limit = limit
	}

	if opts.Page < 1 {
		return badRequest("Page number must be greater than 0")
	}
	if opts.Limit < 1 {
		return badRequest("Limit must be greater than 0")
	}
	if cfg.MaxLimit > 0 && opts.Limit > cfg.MaxLimit {
		return badRequest("Limit cannot exceed %d", cfg.MaxLimit)
	}

	return nil
}

// parseSort accepts both conventions the query string may use:
// a comma list with an optional "-" descending prefix ("-established,name"),
// or a single "field:asc|desc" token.
func parseSort(raw string, cfg Config, opts *Options) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if cfg.DefaultSort.Field != "" {
			opts.Sort = []SortKey{cfg.DefaultSort}
		}
		return nil
	}

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		key := SortKey{}
		if field, dir, found := strings.Cut(token, ":"); found {
			key.Field = strings.TrimSpace(field)
			switch strings.ToLower(strings.TrimSpace(dir)) {
			case "asc":
			case "desc":
				key.Desc = true
			default:
				return badRequest("Invalid sort direction %q", dir)
			}
		} else if strings.HasPrefix(token, "-") {
			key.Field = token[1:]
			key.Desc = true
		} else {
			key.Field = token
		}

		if !cfg.SortFields[key.Field] {
			return badRequest("Cannot sort by %q", key.Field)
		}
		opts.Sort = append(opts.Sort, key)
	}

	return nil
}

func parseFields(raw string, cfg Config, opts *Options) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if cfg.SelectFields == nil {
		return badRequest("Field selection is not supported for this resource")
	}

	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !cfg.SelectFields[field] {
			return badRequest("Unknown field %q", field)
		}
		opts.Fields = append(opts.Fields, field)
	}

	return nil
}

// parseFilters walks the remaining key-value pairs. Keys are spelled either
// bare ("continent=Europe", an equality) or with an explicit operator suffix
// ("established[gte]=1900"). This is a per-field parser: operator tokens in
// values are plain data, never rewritten.
func parseFilters(values map[string]string, cfg Config, opts *Options) error {
	skip := make(map[string]bool, len(cfg.Reserved))
	for _, key := range cfg.Reserved {
		skip[key] = true
	}

	for key, value := range values {
		if reservedKeys[key] || skip[key] {
			continue
		}

		field, op, err := splitFilterKey(key)
		if err != nil {
			return err
		}
		if !cfg.FilterFields[field] {
			return badRequest("Cannot filter by %q", field)
		}

		opts.Filters = append(opts.Filters, Filter{Field: field, Op: op, Value: value})
	}

	return nil
}

func splitFilterKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", badRequest("Malformed filter key %q", key)
	}

	field := key[:open]
	op := Op(key[open+1 : len(key)-1])
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn:
		return field, op, nil
	default:
		return "", "", badRequest("Unknown filter operator %q", string(op))
	}
}

// ApplyFilters composes only the narrowing clauses (filters plus search),
// which is what a count query needs. Field names were validated against the
// allow-lists in Parse, so interpolating them is safe.
func (o *Options) ApplyFilters(db *gorm.DB, cfg Config) *gorm.DB {
	for _, f := range o.Filters {
		if f.Op == OpIn {
			db = db.Where(fmt.Sprintf("%s IN ?", f.Field), strings.Split(f.Value, ","))
			continue
		}
		db = db.Where(fmt.Sprintf("%s %s ?", f.Field, sqlOps[f.Op]), f.Value)
	}

	if o.Search != "" && len(cfg.SearchFields) > 0 {
		clauses := make([]string, 0, len(cfg.SearchFields))
		args := make([]interface{}, 0, len(cfg.SearchFields))
		for _, field := range cfg.SearchFields {
			clauses = append(clauses, fmt.Sprintf("%s ILIKE ?", field))
			args = append(args, "%"+o.Search+"%")
		}
		db = db.Where(strings.Join(clauses, " OR "), args...)
	}

	return db
}

// Apply composes the full operation in fixed order: filters, search, sort,
// projection, pagination.
func (o *Options) Apply(db *gorm.DB, cfg Config) *gorm.DB {
	db = o.ApplyFilters(db, cfg)

	for _, key := range o.Sort {
		if key.Desc {
			db = db.Order(key.Field + " DESC")
		} else {
			db = db.Order(key.Field + " ASC")
		}
	}

	if len(o.Fields) > 0 {
		db = db.Select(o.Fields)
	}

	return db.Offset(o.Offset()).Limit(o.Limit)
}

// Offset is the number of records skipped by the page/limit pair.
func (o *Options) Offset() int {
	return (o.Page - 1) * o.Limit
}
