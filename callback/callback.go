package callback

import (
	"errors"
	"reflect"
	"sync"
)

// Callback runs with the arguments of an acknowledgement.
type Callback interface {
	Callback(...interface{}) error
}

type ErrorWrap func() error

func (fn ErrorWrap) Callback(...interface{}) error { return fn() }

type FuncAny func(...interface{}) error

func (fn FuncAny) Callback(v ...interface{}) error { return fn(v...) }

type FuncString func(string)

func (fn FuncString) Callback(v ...interface{}) error {
	if len(v) == 0 {
		v = append(v, "undefined")
	}
	if val, ok := v[0].(string); ok {
		fn(val)
	} else {
		fn("undefined")
	}
	return nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap makes any func a Callback. The arguments are matched to the func
// parameters by position, numbers are converted between numeric kinds and
// nil becomes the zero value. The func may return nothing or an error.
type Wrap struct {
	Func interface{}
}

func (fn Wrap) Callback(data ...interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case string:
				err = errors.New(e)
			case error:
				err = e
			default:
				err = ErrUnknownPanic
			}
		}
	}()

	f := reflect.ValueOf(fn.Func)
	if f.Kind() != reflect.Func {
		return ErrNotAFunc.F(fn.Func)
	}

	ft := f.Type()
	switch {
	case ft.IsVariadic() && len(data) < ft.NumIn()-1:
		return ErrUnexpectedDataInParams.F(ft.NumIn()-1, len(data))
	case !ft.IsVariadic() && len(data) != ft.NumIn():
		return ErrUnexpectedDataInParams.F(ft.NumIn(), len(data))
	}
	if ft.NumOut() > 1 || (ft.NumOut() == 1 && ft.Out(0) != errorType) {
		return ErrUnexpectedOutParams.F(ft.NumOut())
	}

	in := make([]reflect.Value, len(data))
	for i, v := range data {
		pt := paramType(ft, i)
		if in[i], err = convert(v, pt); err != nil {
			return ErrUnexpectedParamType.F(i, v, pt)
		}
	}

	out := f.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

func convert(v interface{}, to reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(to), nil
	}

	val := reflect.ValueOf(v)
	switch {
	case val.Type().AssignableTo(to):
		return val, nil
	case isNumber(val.Kind()) && isNumber(to.Kind()):
		return val.Convert(to), nil
	}
	return reflect.Value{}, ErrUnexpectedParamType
}

func isNumber(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

// Registry hands out ack ids and keeps the callbacks waiting on them.
type Registry struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]Callback
}

func (r *Registry) Add(cb Callback) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		r.pending = make(map[uint64]Callback)
	}
	id := r.next
	r.next++
	r.pending[id] = cb
	return id
}

func (r *Registry) Remove(id uint64) (Callback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.pending[id]
	delete(r.pending, id)
	return cb, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Run removes the callback for id and calls it. Every id runs at most once.
func (r *Registry) Run(id uint64, data ...interface{}) error {
	cb, ok := r.Remove(id)
	if !ok {
		return ErrUnknownAck.F(id)
	}
	return cb.Callback(data...)
}
