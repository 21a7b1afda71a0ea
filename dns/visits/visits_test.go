package visits

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	query string
	arg   Visit
}

type fakeDB struct {
	calls   []execCall
	failOn  int
	pingErr error
}

func (f *fakeDB) NamedExecContext(_ context.Context, query string, arg any) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, arg: arg.(Visit)})
	if f.failOn == len(f.calls) {
		return nil, errors.New("connection reset")
	}
	return nil, nil
}

func (f *fakeDB) PingContext(context.Context) error { return f.pingErr }

func TestRecord_UpsertsUserThenInsertsVisit(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	err := store.Record(context.Background(), Visit{UserID: 42, ChatID: 42, Username: "ann", Code: "speed_usa", Kind: "country"})
	require.NoError(t, err)
	require.Len(t, db.calls, 2)
	assert.Equal(t, upsertUserSQL, db.calls[0].query)
	assert.Equal(t, insertVisitSQL, db.calls[1].query)
	assert.Equal(t, fixed, db.calls[1].arg.CreatedAt)
	assert.Equal(t, "speed_usa", db.calls[1].arg.Code)
}

func TestRecord_Errors(t *testing.T) {
	store := NewStore(&fakeDB{})
	assert.Error(t, store.Record(context.Background(), Visit{Code: "menu_1"}))

	db := &fakeDB{failOn: 2}
	store = NewStore(db)
	err := store.Record(context.Background(), Visit{UserID: 1, Code: "menu_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert visit")
}

func TestPingAndNop(t *testing.T) {
	down := errors.New("down")
	assert.ErrorIs(t, NewStore(&fakeDB{pingErr: down}).Ping(context.Background()), down)
	assert.NoError(t, Nop{}.Record(context.Background(), Visit{}))
}
