package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/royaldns/dns/menu"
	"github.com/m3rciful/royaldns/dns/visits"
)

// fakeContext records the calls the handler makes. Unused methods panic via the nil embed.
type fakeContext struct {
	tele.Context

	cb      *tele.Callback
	text    string
	store   map[string]any
	editErr error

	sent      []string
	sentOpts  []*tele.SendOptions
	edits     []string
	editOpts  []*tele.SendOptions
	responses []*tele.CallbackResponse
	acks      int
}

func newFakeContext(data string) *fakeContext {
	return &fakeContext{cb: &tele.Callback{ID: "cb1", Data: data}, store: map[string]any{}}
}

func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Update() tele.Update      { return tele.Update{ID: 7} }
func (f *fakeContext) Sender() *tele.User       { return &tele.User{ID: 42, Username: "ann"} }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: 42} }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }

func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, what.(string))
	f.sentOpts = append(f.sentOpts, firstOpts(opts))
	return nil
}

func (f *fakeContext) Edit(what any, opts ...any) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, what.(string))
	f.editOpts = append(f.editOpts, firstOpts(opts))
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.acks++
	if len(resp) > 0 {
		f.responses = append(f.responses, resp[0])
	}
	return nil
}

func (f *fakeContext) notice() string {
	if len(f.responses) == 0 {
		return ""
	}
	return f.responses[len(f.responses)-1].Text
}

func firstOpts(opts []any) *tele.SendOptions {
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			return so
		}
	}
	return nil
}

type fakeServers map[string]string

func (f fakeServers) Lookup(code string) (string, bool, bool) {
	s, ok := f[code]
	return s, false, ok
}

type fakeRecorder struct {
	visits []visits.Visit
}

func (f *fakeRecorder) Record(_ context.Context, v visits.Visit) error {
	f.visits = append(f.visits, v)
	return nil
}

func newHandler(t *testing.T) (*Handler, *fakeRecorder) {
	t.Helper()
	nav, err := menu.Default()
	require.NoError(t, err)
	rec := &fakeRecorder{}
	return New(nav, fakeServers{"speed_usa": "us-east-1"}, rec), rec
}

func TestStart_SendsWelcomeWithMenu(t *testing.T) {
	h, rec := newHandler(t)
	c := newFakeContext("")

	require.NoError(t, h.Start(c))
	require.Len(t, c.sent, 1)
	assert.Equal(t, menu.WelcomeText, c.sent[0])
	require.NotNil(t, c.sentOpts[0].ReplyMarkup)
	assert.Len(t, c.sentOpts[0].ReplyMarkup.InlineKeyboard, 3)
	require.Len(t, rec.visits, 1)
	assert.Equal(t, "/start", rec.visits[0].Code)
}

func TestCallback_BackToMainMatchesStart(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext(menu.CodeBackToMain)

	require.NoError(t, h.Callback(c))
	require.Len(t, c.edits, 1)
	assert.Equal(t, menu.WelcomeText, c.edits[0])
	assert.Equal(t, 1, c.acks)
	assert.Equal(t, "", c.notice())
}

func TestCallback_SpeedSelectsCountry(t *testing.T) {
	h, rec := newHandler(t)
	c := newFakeContext("speed_usa")

	require.NoError(t, h.Callback(c))
	require.Len(t, c.edits, 1)
	assert.Equal(t, tele.ModeMarkdown, c.editOpts[0].ParseMode)
	assert.Equal(t, "USA selected", c.notice())
	require.Len(t, rec.visits, 1)
	assert.Equal(t, "country", rec.visits[0].Kind)
}

func TestCallback_DurationSummary(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext("dur_3m")

	require.NoError(t, h.Callback(c))
	require.Len(t, c.edits, 1)
	assert.Contains(t, c.edits[0], "3 Months")
	assert.Equal(t, "Selected 3 month(s)!", c.notice())
	buttons := c.editOpts[0].ReplyMarkup.InlineKeyboard
	require.Len(t, buttons, 2)
	assert.Equal(t, menu.CodeCountry, buttons[0][0].Data)
}

func TestCallback_UnknownCodeOnlyAcknowledges(t *testing.T) {
	h, rec := newHandler(t)
	c := newFakeContext("no_such_button")

	require.NoError(t, h.Callback(c))
	assert.Empty(t, c.edits)
	assert.Equal(t, menu.UnknownNotice, c.notice())
	assert.Empty(t, rec.visits)
}

func TestCallback_UnavailablePlan(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext("dur_99")

	require.NoError(t, h.Callback(c))
	assert.Empty(t, c.edits)
	assert.Equal(t, PlanUnavailableNotice, c.notice())
}

func TestCallback_EditFailureAcknowledgesError(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext(menu.CodeGetKey)
	c.editErr = errors.New("telegram: bad gateway")

	require.NoError(t, h.Callback(c))
	assert.Equal(t, 1, c.acks)
	assert.Equal(t, ErrorNotice, c.notice())
}

func TestCallback_NotModifiedIsSuccess(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext(menu.CodeGetKey)
	c.editErr = errors.New("telegram: Bad Request: message is not modified (400)")

	require.NoError(t, h.Callback(c))
	assert.Equal(t, "", c.notice())
	assert.Equal(t, 1, c.acks)
}

func TestCallback_EmptyViewRemovesKeyboard(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext(menu.CodeMyKeys)

	require.NoError(t, h.Callback(c))
	require.Len(t, c.editOpts, 1)
	assert.Nil(t, c.editOpts[0].ReplyMarkup)
}

func TestText_IgnoresCommands(t *testing.T) {
	h, _ := newHandler(t)
	c := newFakeContext("")
	c.text = "/unknown"
	require.NoError(t, h.Text(c))
	assert.Empty(t, c.sent)

	c.text = "hello"
	require.NoError(t, h.Text(c))
	assert.Equal(t, []string{menu.WelcomeText}, c.sent)
}
