package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/middleware"
	"github.com/haierkeys/pin-notes-service/internal/service"
	"github.com/haierkeys/pin-notes-service/pkg/code"
	"github.com/haierkeys/pin-notes-service/pkg/util"
	"github.com/haierkeys/pin-notes-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type envelope struct {
	Code   int             `json:"code"`
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type listData struct {
	List []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Image    string `json:"image"`
		HasImage bool   `json:"hasImage"`
	} `json:"list"`
	Total int `json:"total"`
}

type testServer struct {
	t       *testing.T
	app     *app.App
	router  *gin.Engine
	metrics *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := util.GeneratePasswordHash("secret")
	require.NoError(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf(`
record-store:
  type: database
  database:
    path: %s
blob-store:
  type: localfs
  save-path: %s
auth:
  users:
    - username: alice
      password-hash: "%s"
security:
  sign-in-limit-capacity: 3
`, filepath.Join(dir, "db.sqlite3"), filepath.Join(dir, "uploads"), hash)), 0644))

	cfg, _, err := app.LoadConfig(file)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	a, err := app.NewApp(context.Background(), cfg, zap.NewNop(), app.WithMetrics(service.NewMetrics(reg)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	uni, err := validator.Init()
	require.NoError(t, err)
	return &testServer{
		t:       t,
		app:     a,
		router:  NewRouter(os.DirFS("../.."), a, uni),
		metrics: reg,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) api(method, target, token string, body io.Reader, contentType string) envelope {
	s.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := s.do(req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (s *testServer) signIn() string {
	s.t.Helper()
	env := s.api(http.MethodPost, "/api/session", "", strings.NewReader(`{"username":"alice","password":"secret"}`), "application/json")
	require.Equal(s.t, code.SuccessSignIn.Code(), env.Code)

	var session struct {
		State string `json:"state"`
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &session))
	require.Equal(s.t, "authenticated", session.State)
	require.NotEmpty(s.t, session.Token)
	return session.Token
}

func multipartNote(t *testing.T, name, description string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("name", name))
	require.NoError(t, mw.WriteField("description", description))
	if image != nil {
		part, err := mw.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestAPI_NoteLifecycle(t *testing.T) {
	s := newTestServer(t)

	env := s.api(http.MethodGet, "/api/notes", "", nil, "")
	assert.Equal(t, code.ErrorNotUserAuthToken.Code(), env.Code)
	env = s.api(http.MethodGet, "/api/notes", "bogus", nil, "")
	assert.Equal(t, code.ErrorInvalidUserAuthToken.Code(), env.Code)

	token := s.signIn()

	body, contentType := multipartNote(t, "Trip", "Beach day", jpeg)
	env = s.api(http.MethodPost, "/api/notes", token, body, contentType)
	require.Equal(t, code.SuccessCreate.Code(), env.Code)
	var created listData
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, 1, created.Total)
	note := created.List[0]
	assert.Equal(t, "Trip", note.Name)
	assert.True(t, note.HasImage)
	require.True(t, strings.HasPrefix(note.Image, app.BlobRoute+"?token="), note.Image)

	// 签名链接无需会话
	w := s.do(httptest.NewRequest(http.MethodGet, note.Image, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, jpeg, w.Body.Bytes())

	env = s.api(http.MethodGet, "/api/blob?token=forged", "", nil, "")
	assert.Equal(t, code.ErrorInvalidBlobToken.Code(), env.Code)

	env = s.api(http.MethodGet, "/api/notes", token, nil, "")
	require.Equal(t, code.Success.Code(), env.Code)
	var listed listData
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Equal(t, 1, listed.Total)

	env = s.api(http.MethodDelete, "/api/notes/"+note.ID+"?name=Trip", token, nil, "")
	require.Equal(t, code.SuccessDelete.Code(), env.Code)
	var deleted struct {
		State   string `json:"state"`
		Removed bool   `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, "committed", deleted.State)
	assert.True(t, deleted.Removed)
	assert.Empty(t, s.app.NoteService.Notes())

	// 第二次删除由记录存储报告不存在
	env = s.api(http.MethodDelete, "/api/notes/"+note.ID, token, nil, "")
	assert.Equal(t, code.ErrorNoteNotFound.Code(), env.Code)
	assert.False(t, env.Status)

	w = s.do(httptest.NewRequest(http.MethodGet, note.Image, nil))
	var env2 envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env2))
	assert.Equal(t, code.ErrorBlobNotFound.Code(), env2.Code)
}

func TestAPI_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn()

	env := s.api(http.MethodPost, "/api/notes", token, strings.NewReader(`{"name":"Trip"}`), "application/json")
	assert.Equal(t, code.ErrorInvalidParams.Code(), env.Code)

	env = s.api(http.MethodPost, "/api/notes", token, strings.NewReader(`{"name":"a/b","description":"x"}`), "application/json")
	assert.Equal(t, code.ErrorInvalidParams.Code(), env.Code)

	env = s.api(http.MethodPost, "/api/notes", token, strings.NewReader(`{"name":"  ","description":"x"}`), "application/json")
	assert.Equal(t, code.ErrorNoteNameRequired.Code(), env.Code)

	env = s.api(http.MethodPost, "/api/notes", token, strings.NewReader(`{"name":"Plain","description":"no image"}`), "application/json")
	require.Equal(t, code.SuccessCreate.Code(), env.Code)
	var created listData
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.List, 1)
	assert.False(t, created.List[0].HasImage)
	assert.Empty(t, created.List[0].Image)
}

func TestAPI_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn()

	env := s.api(http.MethodGet, "/api/session", token, nil, "")
	require.Equal(t, code.Success.Code(), env.Code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assert.NotContains(t, string(env.Data), token)

	env = s.api(http.MethodDelete, "/api/session", token, nil, "")
	require.Equal(t, code.SuccessSignOut.Code(), env.Code)
	assert.Contains(t, string(env.Data), `"state":"unauthenticated"`)

	env = s.api(http.MethodGet, "/api/notes", token, nil, "")
	assert.Equal(t, code.ErrorInvalidUserAuthToken.Code(), env.Code)
}

func TestAPI_SignInRateLimited(t *testing.T) {
	s := newTestServer(t)

	var codes []int
	for i := 0; i < 4; i++ {
		env := s.api(http.MethodPost, "/api/session", "", strings.NewReader(`{"username":"alice","password":"wrong"}`), "application/json")
		codes = append(codes, env.Code)
	}
	assert.Equal(t, []int{
		code.ErrorUserLoginPasswordFailed.Code(),
		code.ErrorUserLoginPasswordFailed.Code(),
		code.ErrorUserLoginPasswordFailed.Code(),
		code.ErrorTooManyRequests.Code(),
	}, codes)
}

func TestAPI_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	env := s.api(http.MethodGet, "/api/version", "", nil, "")
	assert.Equal(t, code.Success.Code(), env.Code)
	assert.Contains(t, string(env.Data), app.Version)

	env = s.api(http.MethodGet, "/api/health", "", nil, "")
	assert.Equal(t, code.Success.Code(), env.Code)
	assert.Contains(t, string(env.Data), `"recordStore":"database"`)
	assert.Contains(t, string(env.Data), fmt.Sprintf(`"pid":%d`, os.Getpid()))

	env = s.api(http.MethodGet, "/api/nothing", "", nil, "")
	assert.Equal(t, code.ErrorNotFound.Code(), env.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(middleware.DefaultTraceIDHeader, "trace-abc")
	w := s.do(req)
	assert.Equal(t, "trace-abc", w.Header().Get(middleware.DefaultTraceIDHeader))
}

func TestWeb_Board(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/signin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/signin"`)

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), code.ErrorUserLoginPasswordFailed.Msg())

	form.Set("password", "secret")
	req = httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = s.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, middleware.SessionCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	withCookie := func(req *http.Request) *http.Request {
		req.AddCookie(cookie)
		return req
	}

	w = s.do(withCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No notes yet.")

	body, contentType := multipartNote(t, "Groceries", "Milk & eggs", nil)
	req = withCookie(httptest.NewRequest(http.MethodPost, "/notes", body))
	req.Header.Set("Content-Type", contentType)
	w = s.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = s.do(withCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Contains(t, page, "Groceries")
	assert.Contains(t, page, "Milk &amp; eggs")
	assert.Contains(t, page, "Delete note")

	notes := s.app.NoteService.Notes()
	require.Len(t, notes, 1)

	// 校验失败时保留已填写的内容
	body, contentType = multipartNote(t, "Draft", " ", nil)
	req = withCookie(httptest.NewRequest(http.MethodPost, "/notes", body))
	req.Header.Set("Content-Type", contentType)
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), code.ErrorNoteNameRequired.Msg())
	assert.Contains(t, w.Body.String(), `value="Draft"`)

	// 名称作为图片键，不能是目录
	body, contentType = multipartNote(t, "..", "Photo", jpeg)
	req = withCookie(httptest.NewRequest(http.MethodPost, "/notes", body))
	req.Header.Set("Content-Type", contentType)
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), code.ErrorNoteNameInvalid.Msg())
	listed, err := s.app.NoteService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Groceries", listed[0].Name)

	form = url.Values{"name": {"Groceries"}}
	req = withCookie(httptest.NewRequest(http.MethodPost, "/notes/"+notes[0].ID+"/delete", strings.NewReader(form.Encode())))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = s.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, s.app.NoteService.Notes())

	w = s.do(withCookie(httptest.NewRequest(http.MethodPost, "/signout", nil)))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))

	w = s.do(withCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	require.Equal(t, http.StatusSeeOther, w.Code)
}

func TestPrivateRouter(t *testing.T) {
	s := newTestServer(t)
	_ = s.signIn()
	_, err := s.app.NoteService.List(context.Background())
	require.NoError(t, err)

	r := NewPrivateRouterWithLogger("release", zap.NewNop(), s.metrics)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pin_notes_operations_total{operation="list",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), `pin_notes_sign_ins_total{result="ok"} 1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars?key=cmdline", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vars))
	assert.Contains(t, vars, "cmdline")
	assert.NotContains(t, vars, "memstats")
}
