package integration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) KattisClient {
	t.Helper()
	client, err := NewKattisClient(5*time.Second, "kattis-session-api", zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestLoginPostsFormAndKeepsCookies(t *testing.T) {
	var gotCookie string

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "kattis-session-api", r.UserAgent())
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("user"))
		assert.Equal(t, "true", r.PostForm.Get("script"))
		assert.Equal(t, "tok", r.PostForm.Get("token"))
		_, hasPassword := r.PostForm["password"]
		assert.False(t, hasPassword)

		http.SetCookie(w, &http.Cookie{Name: "EduSiteCookie", Value: "s3cr3t", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/courses/KSALDAS/2021-Spring/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "results", r.URL.Query().Get("type"))
		assert.Equal(t, "lastaccepted", r.URL.Query().Get("submissions"))
		if c, err := r.Cookie("EduSiteCookie"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte(`{ "sessions": [], "students": [], "teachers": [] }`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Login(ctx, models.Endpoint{LoginURL: srv.URL + "/login"}, models.Credentials{
		Username: "alice",
		Token:    "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, res.Cookies, 1)
	assert.Equal(t, "EduSiteCookie", res.Cookies[0].Name)

	body, err := client.FetchCourseExport(ctx, srv.URL, "KSALDAS/2021-Spring")
	require.NoError(t, err)
	assert.Equal(t, `{"sessions":[],"students":[],"teachers":[]}`, string(body))
	assert.Equal(t, "s3cr3t", gotCookie)
}

func TestLoginReturnsNonOKStatusWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	res, err := newTestClient(t).Login(context.Background(), models.Endpoint{LoginURL: srv.URL}, models.Credentials{
		Username: "alice", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLoginTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	loginURL := srv.URL + "/login"
	srv.Close()

	_, err := newTestClient(t).Login(context.Background(), models.Endpoint{LoginURL: loginURL}, models.Credentials{
		Username: "alice", Password: "pw",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "Login", te.Op)
	assert.Contains(t, err.Error(), "Login connection failed")
}

func TestFetchCourseExportRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(t).FetchCourseExport(context.Background(), srv.URL, "X")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMalformedExport))
}

func TestFetchUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t).FetchSessionPage(context.Background(), srv.URL, "ksjc95")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestFetchSessionPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/ksjc95", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("ajax"))
		w.Write([]byte(`<table id="standings"></table>`))
	}))
	defer srv.Close()

	body, err := newTestClient(t).FetchSessionPage(context.Background(), srv.URL, "ksjc95")
	require.NoError(t, err)
	assert.Equal(t, `<table id="standings"></table>`, string(body))
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://itu.kattis.com", baseURL("itu.kattis.com"))
	assert.Equal(t, "http://127.0.0.1:8080", baseURL("http://127.0.0.1:8080/"))
}
