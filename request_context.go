package bdispatch

import (
	"bytes"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// multipartOverhead is added to the body size when reading multipart forms so every part stays in
// memory. The body itself is already bounded by the adapter's aggregation limit.
const multipartOverhead = 1 << 10

// RequestContext is the parsed view of one inbound request. It is created per request and never
// shared across requests.
type RequestContext struct {
	// Request may be replaced by filters, e.g. to carry context values to the handler.
	Request *http.Request

	// URI is the decoded request path followed by the raw query, if any. Routes are looked up
	// with the same path, so a filter prefix cannot be dodged by escaping it.
	URI string

	// Body holds the buffered request body.
	Body []byte

	Cookies map[string]string
	Path    map[string]string
	Query   map[string]string
	Form    map[string]string
	Files   map[string]*multipart.FileHeader

	mpform *multipart.Form
}

// NewRequestContext parses cookies, positional path segments, query and form values from the
// request and its already buffered body. The request body itself is not read.
func NewRequestContext(r *http.Request, body []byte) (*RequestContext, error) {
	rc := &RequestContext{
		Request: r,
		URI:     requestURI(r.URL),
		Body:    body,
		Cookies: parseCookies(r),
		Path:    parsePathSegments(r.URL.Path),
		Query:   firstValues(r.URL.Query()),
		Form:    map[string]string{},
		Files:   map[string]*multipart.FileHeader{},
	}

	if err := rc.parseForm(); err != nil {
		return nil, &BindingError{Param: Param{Kind: KindForm}, Err: err}
	}

	return rc, nil
}

// Close releases resources held by a parsed multipart form.
func (rc *RequestContext) Close() error {
	if rc.mpform == nil {
		return nil
	}

	if err := rc.mpform.RemoveAll(); err != nil {
		return errors.Wrap(err, "remove multipart form")
	}

	return nil
}

// Lookup returns the raw source value for a named parameter, and whether it was present.
func (rc *RequestContext) Lookup(p Param) (any, bool) {
	switch p.Kind {
	case KindCookie:
		return lookup(rc.Cookies, p.Name)
	case KindHeader:
		vals := rc.Request.Header.Values(p.Name)
		if len(vals) < 1 {
			return nil, false
		}

		return vals[0], true
	case KindPath:
		return lookup(rc.Path, p.Name)
	case KindQuery:
		return lookup(rc.Query, p.Name)
	case KindForm:
		return lookup(rc.Form, p.Name)
	case KindFile:
		fh, ok := rc.Files[p.Name]
		if !ok {
			return nil, false
		}

		return fh, true
	case KindJSON:
		if !gjson.ValidBytes(rc.Body) {
			return nil, false
		}

		res := gjson.GetBytes(rc.Body, p.Name)
		if !res.Exists() {
			return nil, false
		}

		return res, true
	default:
		return nil, false
	}
}

func (rc *RequestContext) parseForm() error {
	if len(rc.Body) < 1 {
		return nil
	}

	ct := rc.Request.Header.Get("Content-Type")
	if ct == "" {
		return nil
	}

	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return errors.Wrapf(err, "parse content type %q", ct)
	}

	switch mt {
	case "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(rc.Body))
		if err != nil {
			return errors.Wrap(err, "parse urlencoded form")
		}

		rc.Form = firstValues(vals)
	case "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return errors.New("multipart body without boundary")
		}

		mr := multipart.NewReader(bytes.NewReader(rc.Body), boundary)

		form, err := mr.ReadForm(int64(len(rc.Body)) + multipartOverhead)
		if err != nil {
			return errors.Wrap(err, "read multipart form")
		}

		rc.mpform = form
		rc.Form = firstValues(form.Value)

		for name, fhs := range form.File {
			if len(fhs) > 0 {
				rc.Files[name] = fhs[0]
			}
		}
	}

	return nil
}

func parseCookies(r *http.Request) map[string]string {
	cookies := r.Cookies()
	m := make(map[string]string, len(cookies))

	for _, c := range cookies {
		if _, exists := m[c.Name]; !exists {
			m[c.Name] = c.Value
		}
	}

	return m
}

func requestURI(u *url.URL) string {
	if u.RawQuery == "" && !u.ForceQuery {
		return u.Path
	}

	return u.Path + "?" + u.RawQuery
}

// parsePathSegments keys the non-empty segments of path by their zero-based position.
func parsePathSegments(path string) map[string]string {
	m := map[string]string{}

	var idx int
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}

		m[strconv.Itoa(idx)] = seg
		idx++
	}

	return m
}

func firstValues(vals map[string][]string) map[string]string {
	m := make(map[string]string, len(vals))

	for k, v := range vals {
		if len(v) > 0 {
			m[k] = v[0]
		}
	}

	return m
}

func lookup(m map[string]string, name string) (any, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}

	return v, true
}
