package bdispatch

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Arg is one bound handler argument. An absent Arg is the marker for a source that did not
// provide a value; it is not an error until the handler tries to coerce it.
type Arg struct {
	param   Param
	value   any
	present bool
	conv    MessageConverter
}

// Param returns the descriptor the argument was bound from.
func (a Arg) Param() Param { return a.param }

// Absent reports whether the source did not provide a value.
func (a Arg) Absent() bool { return !a.present }

// Value returns the raw bound value, nil when absent.
func (a Arg) Value() any {
	if !a.present {
		return nil
	}

	return a.value
}

// String returns the textual form of the value, or "" when absent.
func (a Arg) String() string {
	switch v := a.value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case gjson.Result:
		return v.String()
	case *multipart.FileHeader:
		return v.Filename
	default:
		return ""
	}
}

// Int parses the value as a base 10 integer. Absent or malformed values return a [*BindingError].
func (a Arg) Int() (int, error) {
	s, err := a.text()
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, a.fail(err)
	}

	return n, nil
}

// Int64 parses the value as a base 10 64-bit integer.
func (a Arg) Int64() (int64, error) {
	s, err := a.text()
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, a.fail(err)
	}

	return n, nil
}

// Float64 parses the value as a 64-bit float.
func (a Arg) Float64() (float64, error) {
	s, err := a.text()
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, a.fail(err)
	}

	return f, nil
}

// Bool parses the value with [strconv.ParseBool].
func (a Arg) Bool() (bool, error) {
	s, err := a.text()
	if err != nil {
		return false, err
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, a.fail(err)
	}

	return b, nil
}

// Decode deserializes a body or JSON argument into target using the message converter.
func (a Arg) Decode(target any) error {
	if !a.present {
		return a.fail(ErrAbsent)
	}

	var data []byte

	switch v := a.value.(type) {
	case []byte:
		data = v
	case gjson.Result:
		data = []byte(v.Raw)
	case string:
		data = []byte(v)
	default:
		return a.fail(errors.Newf("cannot decode %T", v))
	}

	if err := a.conv.Deserialize(data, target); err != nil {
		return a.fail(err)
	}

	return nil
}

// Bytes returns the raw body or JSON value, or the text of any other value. Absent values
// return nil.
func (a Arg) Bytes() []byte {
	switch v := a.value.(type) {
	case []byte:
		return v
	case gjson.Result:
		return []byte(v.Raw)
	default:
		if !a.present {
			return nil
		}

		return []byte(a.String())
	}
}

// File returns the uploaded file header, or nil.
func (a Arg) File() *multipart.FileHeader {
	fh, _ := a.value.(*multipart.FileHeader)
	return fh
}

// Request returns the bound request, or nil.
func (a Arg) Request() *http.Request {
	r, _ := a.value.(*http.Request)
	return r
}

// Response returns the bound buffered response, or nil.
func (a Arg) Response() ResponseWriter {
	w, _ := a.value.(ResponseWriter)
	return w
}

// Headers returns the bound request headers, or nil.
func (a Arg) Headers() http.Header {
	h, _ := a.value.(http.Header)
	return h
}

func (a Arg) text() (string, error) {
	if !a.present {
		return "", a.fail(ErrAbsent)
	}

	return a.String(), nil
}

func (a Arg) fail(err error) error {
	return &BindingError{Param: a.param, Err: err}
}

// Args is the ordered argument list of one handler invocation.
type Args []Arg

// At returns the i-th argument. Out of range indices yield an absent, unbound argument.
func (as Args) At(i int) Arg {
	if i < 0 || i >= len(as) {
		return Arg{param: Unbound()}
	}

	return as[i]
}

// Values returns the raw values in order with nil for absent arguments.
func (as Args) Values() []any {
	vals := make([]any, len(as))
	for i, a := range as {
		vals[i] = a.Value()
	}

	return vals
}

// Binder produces argument lists from parameter descriptors.
type Binder struct {
	conv MessageConverter
}

// NewBinder inits a binder. The converter is used by [Arg.Decode] and defaults to [JSONConverter].
func NewBinder(conv MessageConverter) *Binder {
	if conv == nil {
		conv = JSONConverter{}
	}

	return &Binder{conv: conv}
}

// Bind returns one argument per descriptor, in order. Binding never fails: sources that do not
// provide a value yield absent arguments. No I/O is performed.
func (b *Binder) Bind(params []Param, rc *RequestContext, w ResponseWriter) Args {
	args := make(Args, len(params))

	for i, p := range params {
		arg := Arg{param: p, conv: b.conv}

		switch p.Kind {
		case KindRawRequest:
			arg.value, arg.present = rc.Request, true
		case KindRawResponse:
			arg.value, arg.present = w, true
		case KindRawHeaders:
			arg.value, arg.present = rc.Request.Header, true
		case KindBody:
			arg.value, arg.present = rc.Body, rc.Body != nil
		case KindUnbound:
		default:
			arg.value, arg.present = rc.Lookup(p)
		}

		args[i] = arg
	}

	return args
}
