package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const repliesKey = "replies"

// Replies counts what a handler sent back for one update.
type Replies struct {
	sent     atomic.Int32
	edited   atomic.Int32
	answered atomic.Bool
}

// Sent is the number of new messages.
func (r *Replies) Sent() int { return int(r.sent.Load()) }

// Edited is the number of edited messages.
func (r *Replies) Edited() int { return int(r.edited.Load()) }

// Answered reports whether the callback query was answered.
func (r *Replies) Answered() bool { return r.answered.Load() }

type countingContext struct {
	tele.Context
	r *Replies
}

func (c countingContext) Send(what any, opts ...any) error {
	err := c.Context.Send(what, opts...)
	if err == nil {
		c.r.sent.Add(1)
	}
	return err
}

func (c countingContext) Edit(what any, opts ...any) error {
	err := c.Context.Edit(what, opts...)
	if err == nil {
		c.r.edited.Add(1)
	}
	return err
}

func (c countingContext) Respond(resp ...*tele.CallbackResponse) error {
	err := c.Context.Respond(resp...)
	if err == nil {
		c.r.answered.Store(true)
	}
	return err
}

// CountReplies wraps the context so sends, edits and callback answers are counted.
// Sends queued on the dispatcher are counted when they complete.
func CountReplies(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		r := &Replies{}
		c.Set(repliesKey, r)
		return next(countingContext{Context: c, r: r})
	}
}

// RepliesFrom returns the counters installed by CountReplies, or zero counters.
func RepliesFrom(c tele.Context) *Replies {
	if r, ok := c.Get(repliesKey).(*Replies); ok {
		return r
	}
	return &Replies{}
}
