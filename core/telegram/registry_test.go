package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/royaldns/core/telegram/commands"
)

func nop(tele.Context) error { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: nop, Description: "Open", Aliases: []string{"menu"}}))
	require.NoError(t, reg.RegisterCommand("/debug", commands.Command{Handler: nop, Description: "Debug", Hidden: true}))

	for _, in := range []string{"/start", "start", " menu ", "/menu"} {
		key, _, ok := reg.LookupCommand(in)
		assert.True(t, ok, in)
		assert.Equal(t, "/start", key, in)
	}
	_, _, ok := reg.LookupCommand("hello")
	assert.False(t, ok)

	assert.Equal(t, []tele.Command{{Text: "start", Description: "Open"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	assert.ErrorIs(t, reg.RegisterCommand("start", commands.Command{Handler: nop, Description: "x"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/start", commands.Command{Description: "x"}), ErrInvalidCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/start", commands.Command{Handler: nop}), ErrInvalidCommand)

	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: nop, Description: "x"}))
	assert.ErrorIs(t, reg.RegisterCommand("/start", commands.Command{Handler: nop, Description: "y"}), ErrDuplicateCommand)
	assert.ErrorIs(t, reg.RegisterCommand("/other", commands.Command{Handler: nop, Description: "y", Aliases: []string{"start"}}), ErrDuplicateCommand)
}

func TestRegistry_CallbackFallback(t *testing.T) {
	reg := NewRegistry()
	assert.NotNil(t, reg.CallbackNotFound())
	reg.SetCallbackNotFound(nil)
	assert.NotNil(t, reg.CallbackNotFound())
	assert.Nil(t, reg.CallbackHandler())
}
