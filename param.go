package bdispatch

import "strconv"

// ParamKind identifies where the value of a handler parameter comes from.
type ParamKind int

const (
	KindUnbound ParamKind = iota
	KindRawRequest
	KindRawResponse
	KindRawHeaders
	KindCookie
	KindHeader
	KindPath
	KindQuery
	KindForm
	KindFile
	KindBody
	KindJSON
)

var kindNames = [...]string{
	KindUnbound:     "unbound",
	KindRawRequest:  "request",
	KindRawResponse: "response",
	KindRawHeaders:  "headers",
	KindCookie:      "cookie",
	KindHeader:      "header",
	KindPath:        "path",
	KindQuery:       "query",
	KindForm:        "form",
	KindFile:        "file",
	KindBody:        "body",
	KindJSON:        "json",
}

func (k ParamKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindNames[k]
}

// Named reports whether parameters of this kind are looked up by name.
func (k ParamKind) Named() bool {
	switch k {
	case KindCookie, KindHeader, KindPath, KindQuery, KindForm, KindFile, KindJSON:
		return true
	default:
		return false
	}
}

// Param describes the binding source of a single handler argument.
type Param struct {
	Kind ParamKind
	Name string
}

func (p Param) String() string {
	if !p.Kind.Named() {
		return p.Kind.String()
	}

	return p.Kind.String() + "(" + strconv.Quote(p.Name) + ")"
}

// RawRequest binds the inbound *http.Request.
func RawRequest() Param { return Param{Kind: KindRawRequest} }

// RawResponse binds the buffered [ResponseWriter].
func RawResponse() Param { return Param{Kind: KindRawResponse} }

// RawHeaders binds the request's http.Header.
func RawHeaders() Param { return Param{Kind: KindRawHeaders} }

// Cookie binds the value of the named request cookie.
func Cookie(name string) Param { return Param{Kind: KindCookie, Name: name} }

// Header binds the first value of the named request header.
func Header(name string) Param { return Param{Kind: KindHeader, Name: name} }

// Path binds a positional path segment. Names are zero-based segment indices: "0", "1", ...
func Path(name string) Param { return Param{Kind: KindPath, Name: name} }

// Query binds the first value of the named query parameter.
func Query(name string) Param { return Param{Kind: KindQuery, Name: name} }

// Form binds the first value of the named form field, urlencoded or multipart.
func Form(name string) Param { return Param{Kind: KindForm, Name: name} }

// File binds the named uploaded file of a multipart body.
func File(name string) Param { return Param{Kind: KindFile, Name: name} }

// Body binds the buffered request body.
func Body() Param { return Param{Kind: KindBody} }

// JSON binds the value at a gjson path inside a JSON request body.
func JSON(path string) Param { return Param{Kind: KindJSON, Name: path} }

// Unbound always yields an absent argument.
func Unbound() Param { return Param{Kind: KindUnbound} }
