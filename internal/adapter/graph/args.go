package graph

// args is a decoded input object. graphql-go has already checked types and
// non-null fields; absent optional fields are missing from the map.
type args map[string]any

func (a args) has(key string) bool {
	return a[key] != nil
}

func (a args) str(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a args) integer(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (a args) id(key string) int64 {
	return int64(a.integer(key))
}

func (a args) number(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (a args) boolean(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// optInt returns a pointer to the value of key, or nil when absent.
func (a args) optInt(key string) *int {
	if !a.has(key) {
		return nil
	}
	v := a.integer(key)
	return &v
}

func (a args) optStr(key string) *string {
	if !a.has(key) {
		return nil
	}
	v := a.str(key)
	return &v
}

func (a args) optBool(key string) *bool {
	if !a.has(key) {
		return nil
	}
	v := a.boolean(key)
	return &v
}
