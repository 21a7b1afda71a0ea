package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/royaldns/core/telegram"
	"github.com/m3rciful/royaldns/core/telegram/commands"
)

type fakeContext struct {
	tele.Context
	text      string
	cb        *tele.Callback
	store     map[string]any
	responses []*tele.CallbackResponse
}

func newFake() *fakeContext { return &fakeContext{store: map[string]any{}} }

func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Update() tele.Update      { return tele.Update{ID: 7} }
func (f *fakeContext) Sender() *tele.User       { return &tele.User{ID: 1} }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: 1} }
func (f *fakeContext) Get(k string) any         { return f.store[k] }
func (f *fakeContext) Set(k string, v any)      { f.store[k] = v }
func (f *fakeContext) Respond(r ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, r...)
	return nil
}

func registry(t *testing.T, calls *[]string) *tg.Registry {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{
		Handler:     func(tele.Context) error { *calls = append(*calls, "start"); return nil },
		Description: "Open",
		Aliases:     []string{"menu"},
	}))
	return reg
}

func TestTextRoute(t *testing.T) {
	var calls []string
	reg := registry(t, &calls)
	route := TextRoute(reg)
	assert.Equal(t, tele.OnText, route.Endpoint)

	c := newFake()
	c.text = "menu"
	require.NoError(t, route.Handler(c))
	assert.Equal(t, []string{"start"}, calls)

	c = newFake()
	c.text = "what is this"
	require.NoError(t, route.Handler(c))
	assert.Equal(t, []string{"start"}, calls)

	reg.SetTextFallback(func(tele.Context) error { calls = append(calls, "fallback"); return nil })
	require.NoError(t, route.Handler(c))
	assert.Equal(t, []string{"start", "fallback"}, calls)
}

func TestCallbackRoute_NotFoundAnswers(t *testing.T) {
	var calls []string
	route := CallbackRoute(registry(t, &calls))

	c := newFake()
	c.cb = &tele.Callback{Data: "speed_usa"}
	require.NoError(t, route.Handler(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, tg.UnsupportedNotice, c.responses[0].Text)
}

func TestCallbackRoute_UsesHandler(t *testing.T) {
	var calls []string
	reg := registry(t, &calls)
	reg.SetCallbackHandler(func(c tele.Context) error {
		calls = append(calls, c.Callback().Data)
		return c.Respond()
	})
	c := newFake()
	c.cb = &tele.Callback{Data: "menu_1"}
	require.NoError(t, CallbackRoute(reg).Handler(c))
	assert.Equal(t, []string{"menu_1"}, calls)
}

func TestCommandRoutes(t *testing.T) {
	var calls []string
	routes := CommandRoutes(registry(t, &calls))
	require.Len(t, routes, 1)
	assert.Equal(t, "/start", routes[0].Endpoint)
	require.NoError(t, routes[0].Handler(newFake()))
	assert.Equal(t, []string{"start"}, calls)
	assert.Nil(t, CommandRoutes(nil))
}

func TestHandlerName(t *testing.T) {
	assert.Equal(t, "start", handlerName("/Start"))
	assert.Equal(t, "unknown", handlerName(" "))
	assert.Equal(t, "speed_usa", handlerName("speed usa"))
}
