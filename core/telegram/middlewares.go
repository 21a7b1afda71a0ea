package telegram

import (
	"github.com/m3rciful/royaldns/core/telegram/middleware"
)

// DefaultMiddlewares is the global chain. Trace runs first so a recovered
// panic is logged with the update's rid.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "trace", Use: middleware.Trace},
		{Name: "recover", Use: middleware.Recover},
		{Name: "replies", Use: middleware.CountReplies},
	}
}
