package programhttp

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/goliatone/go-router"
)

type testContext struct {
	method        string
	path          string
	query         map[string]string
	params        map[string]string
	locals        map[any]any
	ctx           context.Context
	recorder      *httptest.ResponseRecorder
	statusWritten bool
}

func newTestContext(path string, params, query map[string]string) *testContext {
	if params == nil {
		params = map[string]string{}
	}
	if query == nil {
		query = map[string]string{}
	}
	return &testContext{
		method:   http.MethodGet,
		path:     path,
		query:    query,
		params:   params,
		locals:   map[any]any{},
		ctx:      context.Background(),
		recorder: httptest.NewRecorder(),
	}
}

func (c *testContext) Bind(v any) error { return nil }

func (c *testContext) Context() context.Context { return c.ctx }

func (c *testContext) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *testContext) Next() error { return nil }

func (c *testContext) RouteName() string { return "" }

func (c *testContext) RouteParams() map[string]string { return c.params }

func (c *testContext) Method() string { return c.method }

func (c *testContext) Path() string { return c.path }

func (c *testContext) Param(name string, defaultValue ...string) string {
	return lookup(c.params, name, defaultValue)
}

func (c *testContext) ParamsInt(key string, defaultValue int) int {
	return atoi(c.Param(key), defaultValue)
}

func (c *testContext) Query(name string, defaultValue ...string) string {
	return lookup(c.query, name, defaultValue)
}

func (c *testContext) QueryValues(name string) []string {
	if val, ok := c.query[name]; ok {
		return []string{val}
	}
	return nil
}

func (c *testContext) QueryInt(name string, defaultValue int) int {
	return atoi(c.Query(name), defaultValue)
}

func (c *testContext) Queries() map[string]string { return c.query }

func (c *testContext) Body() []byte { return nil }

func (c *testContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		c.locals[key] = value[0]
		return value[0]
	}
	return c.locals[key]
}

func (c *testContext) LocalsMerge(key any, value map[string]any) map[string]any {
	merged, _ := c.locals[key].(map[string]any)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range value {
		merged[k] = v
	}
	c.locals[key] = merged
	return merged
}

func (c *testContext) Render(name string, bind any, layouts ...string) error { return nil }

func (c *testContext) Cookie(cookie *router.Cookie) {}

func (c *testContext) Cookies(key string, defaultValue ...string) string {
	return lookup(nil, key, defaultValue)
}

func (c *testContext) CookieParser(out any) error { return nil }

func (c *testContext) Redirect(location string, status ...int) error {
	code := http.StatusFound
	if len(status) > 0 {
		code = status[0]
	}
	c.SetHeader("Location", location)
	c.writeHeader(code)
	return nil
}

func (c *testContext) RedirectToRoute(routeName string, params router.ViewContext, status ...int) error {
	return nil
}

func (c *testContext) RedirectBack(fallback string, status ...int) error { return nil }

func (c *testContext) Header(name string) string { return "" }

func (c *testContext) Referer() string { return "" }

func (c *testContext) OriginalURL() string { return c.path }

func (c *testContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (c *testContext) FormValue(key string, defaultValue ...string) string {
	return lookup(nil, key, defaultValue)
}

func (c *testContext) IP() string { return "127.0.0.1" }

func (c *testContext) Status(code int) router.Context {
	c.writeHeader(code)
	return c
}

func (c *testContext) Send(body []byte) error {
	c.writeHeader(http.StatusOK)
	_, err := c.recorder.Write(body)
	return err
}

func (c *testContext) SendString(body string) error { return c.Send([]byte(body)) }

func (c *testContext) SendStatus(code int) error {
	c.writeHeader(code)
	return nil
}

func (c *testContext) JSON(code int, v any) error {
	c.recorder.Header().Set("Content-Type", "application/json")
	c.writeHeader(code)
	return json.NewEncoder(c.recorder).Encode(v)
}

func (c *testContext) SendStream(r io.Reader) error {
	c.writeHeader(http.StatusOK)
	_, err := io.Copy(c.recorder, r)
	return err
}

func (c *testContext) NoContent(code int) error {
	c.writeHeader(code)
	return nil
}

func (c *testContext) SetHeader(key, val string) router.Context {
	c.recorder.Header().Set(key, val)
	return c
}

func (c *testContext) Set(key string, value any) { c.locals[key] = value }

func (c *testContext) Get(key string, def any) any {
	if val, ok := c.locals[key]; ok {
		return val
	}
	return def
}

func (c *testContext) GetString(key string, def string) string {
	if val, ok := c.locals[key].(string); ok {
		return val
	}
	return def
}

func (c *testContext) GetInt(key string, def int) int {
	if val, ok := c.locals[key].(int); ok {
		return val
	}
	return def
}

func (c *testContext) GetBool(key string, def bool) bool {
	if val, ok := c.locals[key].(bool); ok {
		return val
	}
	return def
}

// writeHeader keeps the first status, as a real response does.
func (c *testContext) writeHeader(code int) {
	if c.statusWritten {
		return
	}
	c.statusWritten = true
	c.recorder.WriteHeader(code)
}

func lookup(values map[string]string, name string, defaultValue []string) string {
	if val, ok := values[name]; ok {
		return val
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func atoi(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

type recordingRouter struct {
	routes map[string]router.HandlerFunc
}

func (r *recordingRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	if r.routes == nil {
		r.routes = map[string]router.HandlerFunc{}
	}
	r.routes[path] = handler
	var info router.RouteInfo
	return info
}

var _ router.Context = (*testContext)(nil)
var _ RouteRegistrar = (*recordingRouter)(nil)
