package ragflow

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseHandler writes the given payload lines in SSE framing.
func sseHandler(t *testing.T, lines ...string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "text/event-stream")

		f, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, line := range lines {
			fmt.Fprintf(w, "data:%s\n\n", line)
			f.Flush()
		}
	})
}

func collect(seq func(func(Fragment, error) bool)) (frags []Fragment, errs []error) {
	for frag, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frags = append(frags, frag)
	}
	return frags, errs
}

func TestAsk_StreamsFullSnapshots(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, sseHandler(t,
		`{"code":0,"data":{"answer":"H"}}`,
		`{"code":0,"data":{"answer":"He"}}`,
		`{"code":0,"data":{"answer":"Hello","reference":{"chunks":[{"document_name":"greetings.md","similarity":0.92}]}}}`,
		`{"code":0,"data":true}`,
	))

	frags, errs := collect(c.Ask(context.Background(), "chat-1", "sess-1", "hi"))
	require.Empty(t, errs)
	require.Len(t, frags, 3)

	assert.Equal(t, "H", frags[0].Answer)
	assert.Equal(t, "He", frags[1].Answer)
	assert.Equal(t, "Hello", frags[2].Answer)

	assert.Empty(t, frags[0].References)
	require.Len(t, frags[2].References, 1)
}

func TestAsk_ServerErrorMidStream(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, sseHandler(t,
		`{"code":0,"data":{"answer":"partial"}}`,
		`{"code":500,"message":"model backend crashed"}`,
	))

	frags, errs := collect(c.Ask(context.Background(), "chat-1", "sess-1", "hi"))
	require.Len(t, frags, 1)
	assert.Equal(t, "partial", frags[0].Answer)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "model backend crashed")
}

func TestAsk_ConsumerBreaksEarly(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, sseHandler(t,
		`{"code":0,"data":{"answer":"one"}}`,
		`{"code":0,"data":{"answer":"two"}}`,
		`{"code":0,"data":true}`,
	))

	var got []string
	for frag, err := range c.Ask(context.Background(), "chat-1", "sess-1", "hi") {
		require.NoError(t, err)
		got = append(got, frag.Answer)
		break // early exit must not deadlock or panic
	}
	assert.Equal(t, []string{"one"}, got)
}

func TestAsk_Unauthorized(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, errs := collect(c.Ask(context.Background(), "chat-1", "sess-1", "hi"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnauthorized)
}

func TestAsk_IgnoresKeepAliveNoise(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(":keep-alive\n\n"))
		_, _ = w.Write([]byte("data:\n\n"))
		_, _ = w.Write([]byte("data:{\"code\":0,\"data\":{\"answer\":\"ok\"}}\n\n"))
		_, _ = w.Write([]byte("data:{\"code\":0,\"data\":true}\n\n"))
	}))

	frags, errs := collect(c.Ask(context.Background(), "chat-1", "sess-1", "hi"))
	require.Empty(t, errs)
	require.Len(t, frags, 1)
	assert.Equal(t, "ok", frags[0].Answer)
}
