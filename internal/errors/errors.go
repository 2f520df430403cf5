package errors

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// String is a constant error. It may hold fmt verbs which are filled in by F.
	String string

	Struct struct {
		e   String
		err error
		kv  []interface{}
	}
)

func (e String) Error() string { return string(e) }

// F formats the constant with v. A %w verb keeps the wrapped error reachable
// through errors.Is and errors.As, while the result still matches e.
func (e String) F(v ...interface{}) Struct {
	return Struct{e: e, err: fmt.Errorf(string(e), v...)}
}

func (e String) KV(kv ...interface{}) Struct {
	return Struct{e: e, err: e, kv: kv}
}

func (e Struct) Error() string { return e.err.Error() + fmtKV(e.kv) }

func (e Struct) KV(kv ...interface{}) Struct {
	return Struct{e: e.e, err: e.err, kv: append(append([]interface{}{}, e.kv...), kv...)}
}

func (e Struct) Unwrap() error {
	if e.err == error(e.e) {
		return nil
	}
	return errors.Unwrap(e.err)
}

func (e Struct) Is(target error) bool {
	switch t := target.(type) {
	case String:
		return e.e == t
	case Struct:
		return e.e == t.e
	}
	return false
}

func fmtKV(kvPairs []interface{}) string {
	if len(kvPairs) == 0 {
		return ""
	}

	pairs := make([]string, 0, (len(kvPairs)+1)/2)
	for n := 0; n < len(kvPairs); n += 2 {
		key, val := kvPairs[n], interface{}("")
		if n+1 < len(kvPairs) {
			val = kvPairs[n+1]
		}
		pairs = append(pairs, fmt.Sprint(key, `":"`, val))
	}

	return fmt.Sprintf("\t"+`{"%s"}`, strings.Join(pairs, `","`))
}
