package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-admin/internal/http/client"
	"github.com/aanand-mishra/school-admin/internal/types"
)

var ada = types.Record{ID: "a1", FullName: "Ada", Class: "5", Gender: "Female", Age: 12}

// stub serves fn and counts requests.
func stub(t *testing.T, fn http.HandlerFunc) (*client.Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fn(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	return c, &calls
}

func TestNew_RejectsBadOrigin(t *testing.T) {
	for _, origin := range []string{"", "localhost:3000", "/relative", "ftp://h"} {
		_, err := client.New(origin)
		require.Error(t, err, origin)
	}
}

func TestList(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":12}]`,
		"envelope":   `{"data":[{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":"12"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, calls := stub(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/getStudentsData", r.URL.Path)
				_, _ = io.WriteString(w, body)
			})

			got, err := c.List(context.Background(), client.Students)
			require.NoError(t, err)
			require.Equal(t, []types.Record{ada}, got)
			require.EqualValues(t, 1, calls.Load())
		})
	}
}

func TestList_RemoteError(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":"error","error":"database is locked"}`)
	})

	_, err := c.List(context.Background(), client.Teachers)

	var rerr *client.RemoteError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, http.StatusInternalServerError, rerr.StatusCode)
	require.Equal(t, "database is locked", rerr.Message)
	require.Equal(t, "HTTP error! status: 500", rerr.Error())
}

func TestList_DecodeFailureIsTransport(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	})

	_, err := c.List(context.Background(), client.Students)

	var terr *client.TransportError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, "/getStudentsData", terr.Path)
}

func TestList_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := client.New(url)
	require.NoError(t, err)

	_, err = c.List(context.Background(), client.Students)

	var terr *client.TransportError
	require.True(t, errors.As(err, &terr))
}

func TestList_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := client.New(srv.URL, client.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = c.List(context.Background(), client.Students)

	var terr *client.TransportError
	require.True(t, errors.As(err, &terr))
}

func TestWithTimeout_LeavesSuppliedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	_, err := client.New("http://localhost:3000",
		client.WithHTTPClient(shared),
		client.WithTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, time.Minute, shared.Timeout)
}

func TestGet(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getStudentsData/a1", r.URL.Path)
		_, _ = io.WriteString(w, `[{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":12}]`)
	})

	got, err := c.Get(context.Background(), client.Students, "a1")
	require.NoError(t, err)
	require.Equal(t, ada, got)
}

func TestGet_NotFound(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.Get(context.Background(), client.Students, "a1")
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestGet_EscapesID(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getStudentsData/a%2Fb", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"_id":"a/b","fullname":"Ada"}`)
	})

	got, err := c.Get(context.Background(), client.Students, "a/b")
	require.NoError(t, err)
	require.Equal(t, "a/b", got.ID)
}

func TestDelete_DotIDsStayOneSegment(t *testing.T) {
	for id, want := range map[string]string{
		".":  "/deleteStudent/%2E",
		"..": "/deleteStudent/%2E%2E",
		"a.": "/deleteStudent/a.",
	} {
		t.Run(id, func(t *testing.T) {
			c, calls := stub(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				require.Equal(t, want, r.URL.EscapedPath())
			})

			require.NoError(t, c.Delete(context.Background(), client.Students, id))
			require.EqualValues(t, 1, calls.Load())
		})
	}
}

func TestCreate(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/postStudentsData", r.URL.Path)

		var sent types.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		require.Equal(t, "", sent.ID)

		sent.ID = "a1"
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(sent))
	})

	in := ada
	in.ID = ""
	got, err := c.Create(context.Background(), client.Students, in)
	require.NoError(t, err)
	require.Equal(t, ada, got)
}

func TestCreate_EmptyBodyEchoesInput(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	got, err := c.Create(context.Background(), client.Students, ada)
	require.NoError(t, err)
	require.Equal(t, ada, got)
}

func TestUpdate(t *testing.T) {
	c, _ := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/updateStudent/a1", r.URL.Path)
		_, _ = io.Copy(w, r.Body)
	})

	got, err := c.Update(context.Background(), client.Students, "a1", ada)
	require.NoError(t, err)
	require.Equal(t, ada, got)
}

func TestDelete(t *testing.T) {
	c, calls := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/deleteTeacher/t9", r.URL.Path)
		_, _ = io.WriteString(w, `whatever`)
	})

	require.NoError(t, c.Delete(context.Background(), client.Teachers, "t9"))
	require.EqualValues(t, 1, calls.Load())
}

func TestNoRequestWithoutIDOrRoute(t *testing.T) {
	c, calls := stub(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	var verr *types.ValidationError
	require.True(t, errors.As(c.Delete(ctx, client.Students, ""), &verr))
	_, err := c.Get(ctx, client.Students, "")
	require.True(t, errors.As(err, &verr))
	_, err = c.Update(ctx, client.Students, "", ada)
	require.True(t, errors.As(err, &verr))

	_, err = c.Create(ctx, client.Teachers, ada)
	require.ErrorIs(t, err, client.ErrUnsupported)
	_, err = c.Get(ctx, client.Teachers, "t1")
	require.ErrorIs(t, err, client.ErrUnsupported)

	require.EqualValues(t, 0, calls.Load())
}

func TestResourceFor(t *testing.T) {
	res, ok := client.ResourceFor(types.KindTeacher)
	require.True(t, ok)
	require.Equal(t, client.Teachers, res)
	require.True(t, res.Supports(client.OpDelete))
	require.False(t, res.Supports(client.OpUpdate))

	_, ok = client.ResourceFor("principal")
	require.False(t, ok)
}
