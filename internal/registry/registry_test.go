package registry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/option/optiontest"
)

func ids(items []option.Option) []int {
	out := make([]int, len(items))
	for i, o := range items {
		out[i] = o.ID()
	}
	return out
}

func names(items []option.Option) []string {
	out := make([]string, len(items))
	for i, o := range items {
		out[i] = o.Name()
	}
	return out
}

func TestRegister_SortsFullItems(t *testing.T) {
	r := New(nil)

	for _, id := range []int{1200, 200, 1600, 100} {
		require.NoError(t, r.Register(optiontest.New("opt", id, option.LayoutFullOneTextOneIcon)))
	}

	assert.Equal(t, []int{100, 200, 1200, 1600}, ids(r.Full()))
	assert.Equal(t, 4, r.CountFull())
	assert.Equal(t, 0, r.CountHalf())
}

func TestRegister_EqualIDsKeepRegistrationOrder(t *testing.T) {
	r := New(nil)

	require.NoError(t, r.Register(optiontest.New("a", 500, option.LayoutHalf)))
	require.NoError(t, r.Register(optiontest.New("b", 100, option.LayoutHalf)))
	require.NoError(t, r.Register(optiontest.New("c", 500, option.LayoutHalf)))
	require.NoError(t, r.Register(optiontest.New("d", 500, option.LayoutHalf)))
	require.NoError(t, r.Register(optiontest.New("e", 300, option.LayoutHalf)))

	assert.Equal(t, []string{"b", "e", "a", "c", "d"}, names(r.Half()))
}

func TestRegister_Partition(t *testing.T) {
	r := New(nil)

	require.NoError(t, r.Register(optiontest.New("half1", 1400, option.LayoutHalf)))
	require.NoError(t, r.Register(optiontest.New("icon", 100, option.LayoutFullOneTextOneIcon)))
	require.NoError(t, r.Register(optiontest.New("two", 150, option.LayoutFullTwoText)))
	require.NoError(t, r.Register(optiontest.New("half2", 1200, option.LayoutHalf)))

	for _, o := range r.Full() {
		assert.True(t, o.LayoutClass().IsFull(), o.Name())
	}
	for _, o := range r.Half() {
		assert.Equal(t, option.LayoutHalf, o.LayoutClass(), o.Name())
	}
	assert.Equal(t, []string{"icon", "two"}, names(r.Full()))
	assert.Equal(t, []string{"half2", "half1"}, names(r.Half()))
	assert.Equal(t, []string{"icon", "two", "half2", "half1"}, names(r.All()))
	assert.Equal(t, 4, r.Len())
}

func TestRegister_Invalid(t *testing.T) {
	r := New(nil)

	err := r.Register(nil)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)

	err = r.Register(optiontest.New("bad", 1, option.LayoutUnknown))
	assert.ErrorIs(t, err, option.ErrInvalidArgument)

	err = r.Register(optiontest.New("worse", 1, option.LayoutClass(99)))
	assert.ErrorIs(t, err, option.ErrInvalidArgument)

	// Later registrations are unaffected.
	require.NoError(t, r.Register(optiontest.New("good", 1, option.LayoutHalf)))
	assert.Equal(t, 1, r.Len())
}

func TestRegister_DuplicatesAppearTwice(t *testing.T) {
	r := New(nil)
	o := optiontest.New("wifi", 1400, option.LayoutHalf)

	require.NoError(t, r.Register(o))
	require.NoError(t, r.Register(o))

	assert.Equal(t, 2, r.CountHalf())
}

func TestRegister_SortInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		r := New(nil)
		var registered []*optiontest.Fake

		for i := 0; i < 30; i++ {
			class := option.LayoutHalf
			if rng.Intn(2) == 0 {
				class = option.LayoutFullTwoText
			}
			f := optiontest.New("opt", rng.Intn(10)*100, class)
			registered = append(registered, f)
			require.NoError(t, r.Register(f))

			assertSortedStable(t, r.Full(), registered)
			assertSortedStable(t, r.Half(), registered)
		}
	}
}

// assertSortedStable checks non-decreasing ids, and that equal ids appear in
// the order they were registered.
func assertSortedStable(t *testing.T, items []option.Option, order []*optiontest.Fake) {
	t.Helper()

	position := make(map[option.Option]int, len(order))
	for i, f := range order {
		position[f] = i
	}

	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		require.LessOrEqual(t, prev.ID(), cur.ID())
		if prev.ID() == cur.ID() {
			require.Less(t, position[prev], position[cur])
		}
	}
}

func TestViewsAreCopies(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(optiontest.New("a", 1, option.LayoutHalf)))

	view := r.Half()
	view[0] = nil

	assert.NotNil(t, r.Half()[0])
}

func TestLookupAndReset(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(optiontest.New("sound", 1600, option.LayoutHalf)))

	o, ok := r.Lookup("sound")
	require.True(t, ok)
	assert.Equal(t, 1600, o.ID())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	r.Reset()
	assert.Equal(t, 0, r.Len())
}
