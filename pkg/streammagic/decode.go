package streammagic

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Decoding is explicit: every record field is read from its wire key below, and
// a missing key or a value of the wrong primitive type is a validation error.
// The wire keys are the device's snake_case names, used verbatim.

// DecodeInfo decodes the payload of /smoip/system/info.
func DecodeInfo(v any) (Info, error) {
	r, err := newFieldReader(v, "data")
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Name:       r.str("name"),
		Model:      r.str("model"),
		Timezone:   r.str("timezone"),
		Locale:     r.str("locale"),
		UDN:        r.str("udn"),
		UnitID:     r.str("unit_id"),
		APIVersion: r.str("api"),
	}
	if r.err != nil {
		return Info{}, r.err
	}
	return info, nil
}

// DecodeSource decodes one entry of the sources array.
func DecodeSource(v any) (Source, error) {
	return decodeSourceAt(v, "source")
}

func decodeSourceAt(v any, path string) (Source, error) {
	r, err := newFieldReader(v, path)
	if err != nil {
		return Source{}, err
	}
	src := Source{
		ID:                r.str("id"),
		Name:              r.str("name"),
		DefaultName:       r.str("default_name"),
		Nameable:          r.boolean("nameable"),
		UISelectable:      r.boolean("ui_selectable"),
		Description:       r.str("description"),
		DescriptionLocale: r.str("description_locale"),
		PreferredOrder:    r.integer("preferred_order"),
	}
	if r.err != nil {
		return Source{}, r.err
	}
	return src, nil
}

// DecodeSources decodes the payload of /smoip/system/sources, keeping the
// device's order.
func DecodeSources(v any) ([]Source, error) {
	r, err := newFieldReader(v, "data")
	if err != nil {
		return nil, err
	}
	raw, ok := r.obj["sources"]
	if !ok {
		return nil, NewFieldError("data.sources", "missing")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, NewFieldError("data.sources", fmt.Sprintf("expected array, got %s", jsonType(raw)))
	}

	sources := make([]Source, 0, len(items))
	for i, item := range items {
		src, err := decodeSourceAt(item, fmt.Sprintf("data.sources[%d]", i))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// DecodeState decodes the payload of /smoip/zone/state.
func DecodeState(v any) (State, error) {
	r, err := newFieldReader(v, "data")
	if err != nil {
		return State{}, err
	}
	state := State{
		Source:        r.str("source"),
		Power:         r.boolean("power"),
		PreAmpMode:    r.boolean("pre_amp_mode"),
		PreAmpState:   r.boolean("pre_amp_state"),
		Mute:          r.boolean("mute"),
		VolumeStep:    r.integer("volume_step"),
		VolumePercent: r.integer("volume_percent"),
		VolumeDB:      r.optionalInteger("volume_db"),
	}
	if r.err != nil {
		return State{}, r.err
	}
	return state, nil
}

// payload walks the response envelope, e.g. payload(body, "data").
func payload(body any, keys ...string) (any, error) {
	cur := body
	for i, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			path := strings.Join(keys[:i], ".")
			if path == "" {
				path = "response"
			}
			return nil, NewFieldError(path, fmt.Sprintf("expected object, got %s", jsonType(cur)))
		}
		next, ok := obj[key]
		if !ok {
			return nil, NewFieldError(strings.Join(keys[:i+1], "."), "missing")
		}
		cur = next
	}
	return cur, nil
}

// fieldReader reads typed values out of a JSON object and keeps the first error.
type fieldReader struct {
	obj  map[string]any
	path string
	err  error
}

func newFieldReader(v any, path string) (*fieldReader, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, NewFieldError(path, fmt.Sprintf("expected object, got %s", jsonType(v)))
	}
	return &fieldReader{obj: obj, path: path}, nil
}

func (r *fieldReader) fail(key, message string) {
	if r.err == nil {
		r.err = NewFieldError(r.path+"."+key, message)
	}
}

func (r *fieldReader) lookup(key string) (any, bool) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		r.fail(key, "missing")
		return nil, false
	}
	return v, true
}

func (r *fieldReader) str(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, fmt.Sprintf("expected string, got %s", jsonType(v)))
		return ""
	}
	return s
}

func (r *fieldReader) boolean(key string) bool {
	v, ok := r.lookup(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(key, fmt.Sprintf("expected boolean, got %s", jsonType(v)))
		return false
	}
	return b
}

func (r *fieldReader) integer(key string) int {
	v, ok := r.lookup(key)
	if !ok {
		return 0
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(key, err.Error())
		return 0
	}
	return n
}

// optionalInteger returns nil when the key is absent or null.
func (r *fieldReader) optionalInteger(key string) *int {
	v, ok := r.obj[key]
	if !ok || v == nil {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(key, err.Error())
		return nil
	}
	return &n
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64ToInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n.String())
		}
		return integral(f)
	case float64:
		return integral(n)
	case int:
		return n, nil
	case int64:
		return int64ToInt(n)
	default:
		return 0, fmt.Errorf("expected integer, got %s", jsonType(v))
	}
}

func integral(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int(f), nil
}

func int64ToInt(i int64) (int, error) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, fmt.Errorf("integer %d out of range", i)
	}
	return int(i), nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
