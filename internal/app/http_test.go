package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/ice-bot/internal/ice"
	"github.com/ykvlv/ice-bot/internal/relay"
)

type stubHandler struct {
	got ice.Command
	p   *relay.Payload
	err error
}

func (h *stubHandler) Handle(_ context.Context, cmd ice.Command) (*relay.Payload, error) {
	h.got = cmd
	return h.p, h.err
}

type recordingSink struct{ sent []relay.Payload }

func (s *recordingSink) Send(_ context.Context, p relay.Payload) error {
	s.sent = append(s.sent, p)
	return nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/commands", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCommandsEndpointRelaysFeedback(t *testing.T) {
	p := &relay.Payload{Dst: relay.Destination, To: "alice", Subject: relay.DefaultSubject, Text: "ok"}
	h := &stubHandler{p: p}
	sink := &recordingSink{}
	mux := newMux(h, sink, zap.NewNop())

	rec := post(t, mux, `{"tag":"add-mails","user":"alice","src":"mail","emails":["a@x.com"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ice.Command{Tag: ice.TagAddMails, User: "alice", Src: "mail", Emails: []string{"a@x.com"}}, h.got)

	var got relay.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *p, got)
	assert.Equal(t, []relay.Payload{*p}, sink.sent)
}

func TestCommandsEndpointErrors(t *testing.T) {
	sink := &recordingSink{}

	rec := post(t, newMux(&stubHandler{}, sink, zap.NewNop()), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, newMux(&stubHandler{err: ice.ErrUnknownCommand}, sink, zap.NewNop()), `{"tag":"x","user":"a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, newMux(&stubHandler{err: errors.New("db gone")}, sink, zap.NewNop()), `{"tag":"get-ice","user":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = post(t, newMux(&stubHandler{}, sink, zap.NewNop()), `{"tag":"get-ice"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, sink.sent)

	req := httptest.NewRequest(http.MethodGet, "/v1/commands", nil)
	w := httptest.NewRecorder()
	newMux(&stubHandler{}, sink, zap.NewNop()).ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	newMux(&stubHandler{}, &recordingSink{}, zap.NewNop()).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
