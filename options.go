package sioengine

import (
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// The option keys every engine understands.
const (
	OptCheckSSL = "check_ssl"
	OptDebug    = "debug"
)

// Options is the merged configuration of an engine. It is an open set: keys
// that no engine knows about are kept.
type Options map[string]interface{}

func DefaultOptions() Options {
	return Options{
		OptCheckSSL: false,
		OptDebug:    false,
	}
}

// MergeOptions layers overrides onto defaults. When a key holds a nested
// group on both sides the groups are merged, otherwise the override wins.
// The result shares no maps with either argument.
func MergeOptions(defaults, overrides map[string]interface{}) Options {
	out := make(Options, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = copyValue(v)
	}

	for k, v := range overrides {
		base, isGroup := group(out[k])
		over, isOverGroup := group(v)
		if isGroup && isOverGroup {
			out[k] = map[string]interface{}(MergeOptions(base, over))
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}

// LoadOptions reads a YAML document of option overrides.
func LoadOptions(r io.Reader) (map[string]interface{}, error) {
	var overrides map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&overrides); err != nil && err != io.EOF {
		return nil, ErrLoadOptions.F(err)
	}
	if overrides == nil {
		overrides = map[string]interface{}{}
	}
	return overrides, nil
}

func (o Options) CheckSSL() bool { return o.Bool(OptCheckSSL) }
func (o Options) Debug() bool    { return o.Bool(OptDebug) }

// Get walks path through nested groups.
func (o Options) Get(path ...string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var cur interface{} = map[string]interface{}(o)
	for _, key := range path {
		m, ok := group(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return copyValue(cur), true
}

func (o Options) Bool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (o Options) String(key string) string {
	str, _ := o[key].(string)
	return str
}

func (o Options) Int(key string) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	}
	return 0
}

// Duration reads a time.Duration, a duration string such as "1m30s" or a
// number of seconds.
func (o Options) Duration(key string) time.Duration {
	switch v := o[key].(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				return time.Duration(secs * float64(time.Second))
			}
		}
		return d
	}
	return 0
}

// Map returns a copy of the nested group at key, or nil.
func (o Options) Map(key string) Options {
	m, ok := group(o[key])
	if !ok {
		return nil
	}
	return Options(copyValue(m).(map[string]interface{}))
}

func group(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Options:
		return m, true
	}
	return nil, false
}

func copyValue(v interface{}) interface{} {
	if m, ok := group(v); ok {
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = copyValue(val)
		}
		return out
	}
	if s, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(s))
		for i, val := range s {
			out[i] = copyValue(val)
		}
		return out
	}
	return v
}
