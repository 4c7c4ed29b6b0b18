package student

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/service"
	"github.com/aanand-mishra/student-manager/internal/storage/sqlite"
	"github.com/aanand-mishra/student-manager/internal/types"
	"github.com/aanand-mishra/student-manager/internal/utils/response"
)

func setupServer(t *testing.T) *httptest.Server {
	cfg := &config.Config{Storage: config.Storage{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "students.db"),
	}}
	store, err := sqlite.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	Register(mux, svc)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const annJSON = `{"id":1,"name":"Ann","surname":"Lee","age":20,"phone":null,"email":"ann@x.com"}`

func TestCreate(t *testing.T) {
	srv := setupServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/students", annJSON)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(body))

	t.Run("duplicate email", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, "/api/students",
			`{"id":2,"name":"Bob","surname":"Stone","age":30,"email":"ann@x.com"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, string(body), "ann@x.com")
	})

	t.Run("duplicate id", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPost, "/api/students",
			`{"id":1,"name":"Bob","surname":"Stone","age":30,"email":"bob@x.com"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid fields", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, "/api/students",
			`{"id":3,"name":" ","surname":"Stone","age":12,"email":"bob@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var r response.Response
		require.NoError(t, json.Unmarshal(body, &r))
		assert.ElementsMatch(t, []string{"name", "age"}, r.Fields)
	})

	t.Run("empty body", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, "/api/students", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "request body is empty")
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPost, "/api/students", `{"id":4,"nickname":"x"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGet(t *testing.T) {
	srv := setupServer(t)
	do(t, srv, http.MethodPost, "/api/students", annJSON)

	resp, body := do(t, srv, http.MethodGet, "/api/students/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, annJSON, string(body))

	resp, _ = do(t, srv, http.MethodGet, "/api/students/2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/students/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/students/by-email/ann@x.com", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, annJSON, string(body))

	resp, _ = do(t, srv, http.MethodGet, "/api/students/by-email/ANN@x.com", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestList(t *testing.T) {
	srv := setupServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/students", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	do(t, srv, http.MethodPost, "/api/students", annJSON)
	do(t, srv, http.MethodPost, "/api/students",
		`{"id":2,"name":"Bob","surname":"Stone","age":30,"phone":"123","email":"bob@x.com"}`)

	ids := func(body []byte) []int {
		var students []types.Student
		require.NoError(t, json.Unmarshal(body, &students))
		out := make([]int, 0, len(students))
		for _, st := range students {
			out = append(out, st.ID)
		}
		return out
	}

	_, body = do(t, srv, http.MethodGet, "/api/students", "")
	assert.Equal(t, []int{1, 2}, ids(body))

	_, body = do(t, srv, http.MethodGet, "/api/students?q=STO", "")
	assert.Equal(t, []int{2}, ids(body))

	_, body = do(t, srv, http.MethodGet, "/api/students?age=20", "")
	assert.Equal(t, []int{1}, ids(body))

	resp, _ = do(t, srv, http.MethodGet, "/api/students?q=+", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/students?age=old", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/students?age=7", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPatch(t *testing.T) {
	srv := setupServer(t)
	do(t, srv, http.MethodPost, "/api/students",
		`{"id":1,"name":"Ann","surname":"Lee","age":20,"phone":"555","email":"ann@x.com"}`)

	t.Run("absent phone is kept", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPatch, "/api/students/1", `{"age":21}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t,
			`{"id":1,"name":"Ann","surname":"Lee","age":21,"phone":"555","email":"ann@x.com"}`,
			string(body))
	})

	t.Run("null phone is cleared", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPatch, "/api/students/1", `{"phone":null}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t,
			`{"id":1,"name":"Ann","surname":"Lee","age":21,"phone":null,"email":"ann@x.com"}`,
			string(body))
	})

	t.Run("phone is set", func(t *testing.T) {
		_, body := do(t, srv, http.MethodPatch, "/api/students/1", `{"phone":" 777 "}`)

		var st types.Student
		require.NoError(t, json.Unmarshal(body, &st))
		require.NotNil(t, st.Phone)
		assert.Equal(t, "777", *st.Phone)
	})

	t.Run("invalid result", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPatch, "/api/students/1", `{"email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("phone of wrong type", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPatch, "/api/students/1", `{"phone":12}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing student", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPatch, "/api/students/9", `{"age":30}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestReplace(t *testing.T) {
	srv := setupServer(t)
	do(t, srv, http.MethodPost, "/api/students", annJSON)
	do(t, srv, http.MethodPost, "/api/students",
		`{"id":2,"name":"Bob","surname":"Stone","age":30,"email":"bob@x.com"}`)

	resp, body := do(t, srv, http.MethodPut, "/api/students/1",
		`{"id":99,"name":"Anne","surname":"Leigh","age":22,"email":"anne@x.com"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t,
		`{"id":1,"name":"Anne","surname":"Leigh","age":22,"phone":null,"email":"anne@x.com"}`,
		string(body))

	resp, _ = do(t, srv, http.MethodPut, "/api/students/1",
		`{"name":"Anne","surname":"Leigh","age":22,"email":"bob@x.com"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPut, "/api/students/5",
		`{"name":"Eve","surname":"Moss","age":22,"email":"eve@x.com"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	srv := setupServer(t)
	do(t, srv, http.MethodPost, "/api/students", annJSON)
	do(t, srv, http.MethodPost, "/api/students",
		`{"id":2,"name":"Bob","surname":"Stone","age":30,"email":"bob@x.com"}`)
	do(t, srv, http.MethodPost, "/api/students",
		`{"id":3,"name":"Eve","surname":"Moss","age":40,"email":"eve@x.com"}`)

	resp, _ := do(t, srv, http.MethodDelete, "/api/students/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/api/students/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	t.Run("delete all needs confirmation", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodDelete, "/api/students", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		_, body := do(t, srv, http.MethodGet, "/api/students", "")
		var students []types.Student
		require.NoError(t, json.Unmarshal(body, &students))
		assert.Len(t, students, 2)
	})

	resp, body := do(t, srv, http.MethodDelete, "/api/students?confirm=true", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":2}`, string(body))

	_, body = do(t, srv, http.MethodGet, "/api/students", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestPatchRequestPhone(t *testing.T) {
	tests := []struct {
		body  string
		want  types.PhoneAction
		value string
	}{
		{`{}`, types.PhoneKeep, ""},
		{`{"phone":null}`, types.PhoneClear, ""},
		{`{"phone":""}`, types.PhoneClear, ""},
		{`{"phone":"12"}`, types.PhoneSet, "12"},
	}

	for _, tt := range tests {
		var req patchRequest
		require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

		p, err := req.toPatch()
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Phone, tt.body)
		assert.Equal(t, tt.value, p.PhoneValue, tt.body)
	}
}
