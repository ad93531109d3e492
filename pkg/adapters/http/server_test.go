package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/pkg/adapters/memory"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/dsl"
	"github.com/aretw0/weave/pkg/nodes"
	"github.com/aretw0/weave/pkg/observability"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/session"
)

type fixture struct {
	handler http.Handler
	streams *StreamManager
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	streams := NewStreamManager(nil)
	reg := prometheus.NewRegistry()
	eng, err := weave.New("",
		weave.WithLifecycleHooks(streams.Hooks()),
		weave.WithMetrics(observability.NewMetrics(reg)),
	)
	require.NoError(t, err)

	handler := NewHandler(eng,
		WithStreams(streams),
		WithSessions(session.NewManager(memory.NewStore())),
		WithGatherer(reg),
	)
	return &fixture{handler: handler, streams: streams, reg: reg}
}

func (f *fixture) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func countdownJSON(t *testing.T, id string) []byte {
	t.Helper()
	b := dsl.New("")
	open := b.Add(nodes.WhileLoopOpenClass, "open").Set("initial_value0", 3)
	sub := b.Add(nodes.IntMathClass, "sub").Set("operation", "subtract").Set("a", open.Out(1)).Set("b", 1)
	cond := b.Add(nodes.ToBoolClass, "cond").Set("value", sub.Out(0))
	b.Add(nodes.WhileLoopCloseClass, "close").
		Set("flow_control", open.Out(0)).
		Set("condition", cond.Out(0)).
		Set("initial_value0", sub.Out(0))
	p, err := b.BuildPrompt(id)
	require.NoError(t, err)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return data
}

func TestServer_HealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do("GET", "/info", nil)
	assert.Contains(t, w.Body.String(), `"app":"weave-http"`)
}

func TestServer_Classes(t *testing.T) {
	f := newFixture(t)

	w := f.do("GET", "/classes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var classes []ClassInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &classes))
	assert.Len(t, classes, len(nodes.All()))

	w = f.do("GET", "/classes/"+nodes.MakeListClass, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value#N"`)

	w = f.do("GET", "/classes/Nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ResolveNode(t *testing.T) {
	f := newFixture(t)

	body, _ := json.Marshal(ResolveRequest{
		Class:  nodes.MakeListClass,
		Inputs: map[string]string{"value1": "INT", "value2": "INT"},
	})
	w := f.do("POST", "/resolve", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resolved schema.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, 3, resolved.Count(nodes.ListGroup))
	assert.Equal(t, "LIST<INT>", resolved.Outputs[0].Type.String())

	w = f.do("POST", "/resolve", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ResolvePrompt(t *testing.T) {
	f := newFixture(t)

	w := f.do("POST", "/prompt/resolve", countdownJSON(t, "p"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var schemas map[string]schema.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schemas))
	assert.Equal(t, "INT", schemas["close"].Outputs[0].Type.String())
}

func TestServer_Validate(t *testing.T) {
	f := newFixture(t)

	w := f.do("POST", "/validate", countdownJSON(t, "p"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	bad := `{"nodes":[
		{"id":"flag","class":"ToBool","inputs":{"value":1}},
		{"id":"math","class":"IntMath","inputs":{"a":{"from":"flag","output":0}}}
	]}`
	w = f.do("POST", "/validate", []byte(bad))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], `node "math"`)

	metrics := f.do("GET", "/metrics", nil)
	assert.Contains(t, metrics.Body.String(), "weave_validation_rejections_total 1")
}

func TestServer_Run(t *testing.T) {
	f := newFixture(t)

	w := f.do("POST", "/run", countdownJSON(t, "p"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, 2, resp.Report.Expansions)
	v, ok := resp.Report.Output("close", 0)
	require.True(t, ok)
	assert.EqualValues(t, 0, v)

	stalled := `{"nodes":[{"id":"close","class":"WhileLoopClose","inputs":{"condition":true}}]}`
	w = f.do("POST", "/run", []byte(stalled))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "missing flow handle")
}

func TestServer_StoredPrompts(t *testing.T) {
	f := newFixture(t)

	w := f.do("PUT", "/prompts/countdown", countdownJSON(t, "ignored"))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do("GET", "/prompts/", nil)
	assert.JSONEq(t, `["countdown"]`, w.Body.String())

	w = f.do("GET", "/prompts/countdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"countdown"`)

	w = f.do("GET", "/prompts/countdown/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.Contains(t, w.Body.String(), "subgraph loop_close")

	w = f.do("POST", "/prompts/countdown/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do("DELETE", "/prompts/countdown", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do("GET", "/prompts/countdown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do("POST", "/prompts/countdown/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RunEvents(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusNoContent, f.do("PUT", "/prompts/p1", countdownJSON(t, "p1")).Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/prompts/p1/events", nil).WithContext(ctx)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		f.handler.ServeHTTP(sub, req)
	}()

	require.Eventually(t, func() bool { return f.streams.Subscribers("p1") == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, f.do("POST", "/prompts/p1/run", nil).Code)

	// Events are buffered per subscriber; give the stream a moment to drain.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-finished

	output := sub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"type":"node_start"`)
	assert.Contains(t, output, `"type":"expansion"`)
	assert.Contains(t, output, `"prompt_id":"p1"`)
}

func TestServer_ReloadEventsNeedWatchableLoader(t *testing.T) {
	f := newFixture(t)
	w := f.do("GET", "/events", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("p")
	for i := 0; i < streamBuffer+5; i++ {
		sm.Broadcast("p", "msg")
	}
	assert.Len(t, ch, cap(ch))
	cancel()
	assert.Equal(t, 0, sm.Subscribers("p"))

	// Events without a prompt id go nowhere.
	sm.Hooks().OnNodeStart(context.Background(), &domain.NodeEvent{})
}
