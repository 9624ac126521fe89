package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/events"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func newTestEngine() (*Engine, *events.Recorder) {
	e := NewEngine(NewMemoryState(), nil, nil)
	rec := &events.Recorder{}
	e.SetEmitter(rec)
	e.SetNowFunc(func() int64 { return 1000 })
	return e, rec
}

func TestRegister(t *testing.T) {
	e, rec := newTestEngine()
	alice := addr(1)

	require.NoError(t, e.Register(alice, "alice"))

	ok, err := e.IsRegistered(alice)
	require.NoError(t, err)
	require.True(t, ok)

	profile, ok, err := e.Profile(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", profile.Name)
	require.Equal(t, int64(1000), profile.RegistrationTime)

	total, err := e.TotalRegistered()
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)

	first, ok, err := e.RegisteredAtIndex(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, alice, first)

	require.Equal(t, []string{events.TypeUserRegistered}, rec.Types())
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	e, _ := newTestEngine()
	alice := addr(1)
	require.NoError(t, e.Register(alice, "alice"))

	err := e.Register(alice, "alice-again")
	require.True(t, errors.Is(err, coreerrors.ErrAlreadyRegistered))
}

func TestRegisterNameInvalid(t *testing.T) {
	e, _ := newTestEngine()
	alice := addr(1)

	require.True(t, errors.Is(e.Register(alice, ""), coreerrors.ErrNameInvalid))
	require.True(t, errors.Is(e.Register(alice, strings.Repeat("a", 51)), coreerrors.ErrNameInvalid))

	ok, err := e.IsRegistered(alice)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateName(t *testing.T) {
	e, rec := newTestEngine()
	alice := addr(1)
	require.NoError(t, e.Register(alice, "alice"))

	require.NoError(t, e.UpdateName(alice, "alice2"))
	profile, _, err := e.Profile(alice)
	require.NoError(t, err)
	require.Equal(t, "alice2", profile.Name)

	require.Equal(t, []string{events.TypeUserRegistered, events.TypeUserProfileUpdated}, rec.Types())
}

func TestUpdateNameNotRegistered(t *testing.T) {
	e, _ := newTestEngine()
	err := e.UpdateName(addr(1), "alice")
	require.True(t, errors.Is(err, coreerrors.ErrNotRegistered))
}
