// Package bot binds the DNS menu navigator to Telegram updates.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/metrics"
	"github.com/m3rciful/royaldns/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/royaldns/core/telegram/helpers"
	"github.com/m3rciful/royaldns/core/telegram/keyboard"
	"github.com/m3rciful/royaldns/dns/menu"
	"github.com/m3rciful/royaldns/dns/visits"
)

const (
	// ErrorNotice acknowledges a selection that could not be handled.
	ErrorNotice = "Error occurred."
	// PlanUnavailableNotice acknowledges a duration with no plan.
	PlanUnavailableNotice = "This plan is not available."

	recordTimeout = 2 * time.Second
)

// ServerLookup resolves a callback code to the server that serves it.
type ServerLookup interface {
	Lookup(code string) (server string, international bool, ok bool)
}

// Handler serves /start and menu callbacks.
type Handler struct {
	nav     *menu.Navigator
	servers ServerLookup
	visits  visits.Recorder
}

// New wires a handler. servers and rec may be nil.
func New(nav *menu.Navigator, servers ServerLookup, rec visits.Recorder) *Handler {
	if rec == nil {
		rec = visits.Nop{}
	}
	return &Handler{nav: nav, servers: servers, visits: rec}
}

// Start sends the welcome view as a new message.
func (h *Handler) Start(c tele.Context) error {
	v := h.nav.Start()
	if err := tghelpers.SendText(c, v.Text, SendOptions(v)); err != nil {
		return err
	}
	h.record(c, "/start", "start")
	return nil
}

// Callback applies a button press: it edits the message in place and
// acknowledges the press. Failures end in a generic notice and never
// propagate, so the conversation stays on its last view.
func (h *Handler) Callback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	code := callbacks.CallbackCode(c)

	res, err := h.nav.Transition(code)
	if err != nil {
		notice := ErrorNotice
		var de *menu.DurationError
		if errors.As(err, &de) {
			notice = PlanUnavailableNotice
		}
		metrics.ObserveTransition(res.Route, "error")
		h.fail(ctx, c, code, notice, err)
		return nil
	}
	metrics.ObserveTransition(res.Route, string(res.Kind))

	if res.Kind == menu.KindCountry {
		h.logServer(ctx, code, res.Country)
	}

	if res.View != nil {
		if err := tghelpers.EditText(c, res.View.Text, SendOptions(*res.View)); err != nil {
			h.fail(ctx, c, code, ErrorNotice, err)
			return nil
		}
	}

	if err := tghelpers.Acknowledge(c, res.Notice); err != nil {
		logger.Menu.LogAttrs(ctx, slog.LevelWarn, "acknowledge failed",
			slog.String("event", "menu.ack"),
			slog.String("code", code),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	attrs := []slog.Attr{
		slog.String("event", "menu.transition"),
		slog.String("code", logger.SanitizeLimit(code, 64)),
		slog.String("route", res.Route),
		slog.String("kind", string(res.Kind)),
	}
	if res.Node != "" {
		attrs = append(attrs, slog.String("node", res.Node))
	}
	if res.Months > 0 {
		attrs = append(attrs, slog.Int("months", res.Months), slog.Int("expiry_days", res.ExpiryDays))
	}
	logger.Menu.LogAttrs(ctx, slog.LevelDebug, "menu transition", attrs...)

	if res.Kind != menu.KindUnknown {
		h.record(c, code, string(res.Kind))
	}
	return nil
}

// Text answers free text with the welcome view so the user can find the menu again.
func (h *Handler) Text(c tele.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	return h.Start(c)
}

func (h *Handler) fail(ctx context.Context, c tele.Context, code, notice string, err error) {
	attrs := []slog.Attr{
		slog.String("event", "menu.transition"),
		slog.String("code", logger.SanitizeLimit(code, 64)),
		slog.String("notice", notice),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		attrs = append(attrs, slog.String("err_code", coded.Code()))
	}
	logger.Menu.LogAttrs(ctx, slog.LevelWarn, "menu transition failed", attrs...)

	if ackErr := tghelpers.Acknowledge(c, notice); ackErr != nil {
		logger.Menu.LogAttrs(ctx, slog.LevelWarn, "acknowledge failed",
			slog.String("event", "menu.ack"),
			slog.String("code", code),
			slog.String("err", logger.SanitizeLimit(ackErr.Error(), 256)),
		)
	}
}

func (h *Handler) logServer(ctx context.Context, code, country string) {
	if h.servers == nil {
		return
	}
	server, international, ok := h.servers.Lookup(code)
	if !ok {
		logger.Routing.LogAttrs(ctx, slog.LevelWarn, "no server for country",
			slog.String("event", "routing.lookup"),
			slog.String("code", code),
			slog.String("country", country),
		)
		return
	}
	logger.Routing.LogAttrs(ctx, slog.LevelInfo, "server resolved",
		slog.String("event", "routing.lookup"),
		slog.String("country", country),
		slog.String("server", server),
		slog.Bool("international", international),
	)
}

func (h *Handler) record(c tele.Context, code, kind string) {
	user := c.Sender()
	if user == nil {
		return
	}
	v := visits.Visit{UserID: user.ID, Username: user.Username, Code: code, Kind: kind}
	if chat := c.Chat(); chat != nil {
		v.ChatID = chat.ID
	}
	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), recordTimeout)
	defer cancel()
	_ = h.visits.Record(ctx, v)
}

// SendOptions converts a view into Telegram send options.
func SendOptions(v menu.View) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: Markup(v)}
	if v.Format == menu.FormatMarkdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

// Markup builds the inline keyboard for a view; nil when it has no choices.
func Markup(v menu.View) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(v.Rows))
	for _, row := range v.Rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, ch := range row {
			btns = append(btns, keyboard.InlineBtn{Text: ch.Label, Data: ch.Code})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}
