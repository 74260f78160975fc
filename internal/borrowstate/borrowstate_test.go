package borrowstate

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stateCmp = cmp.AllowUnexported(State{})

// TestState_Constructors tests the three variants and Shared(0).
func TestState_Constructors(t *testing.T) {
	tests := []struct {
		name  string
		state State
		kind  Kind
		count uint
		str   string
	}{
		{"unshared", Unshared(), KindUnshared, 0, "Unshared"},
		{"shared 1", Shared(1), KindShared, 1, "Shared(1)"},
		{"shared 7", Shared(7), KindShared, 7, "Shared(7)"},
		{"shared 0 normalises", Shared(0), KindUnshared, 0, "Unshared"},
		{"exclusive", Exclusive(), KindExclusive, 0, "Exclusive"},
		{"zero value", State{}, KindUnshared, 0, "Unshared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.state.Kind())
			assert.Equal(t, tt.count, tt.state.Count())
			assert.Equal(t, tt.str, tt.state.String())
			assert.True(t, tt.state.Valid())
		})
	}
}

// TestState_Predicates tests the Is* helpers.
func TestState_Predicates(t *testing.T) {
	assert.True(t, Unshared().IsUnshared())
	assert.False(t, Unshared().IsShared())
	assert.True(t, Shared(2).IsShared())
	assert.False(t, Shared(2).IsExclusive())
	assert.True(t, Exclusive().IsExclusive())
	assert.False(t, Exclusive().IsUnshared())
}

// TestState_Invalid tests Valid on malformed states.
func TestState_Invalid(t *testing.T) {
	assert.False(t, State{kind: KindShared}.Valid())
	assert.False(t, State{kind: KindExclusive, count: 3}.Valid())
	assert.False(t, State{kind: Kind(9)}.Valid())
	assert.Equal(t, "Kind(9)", State{kind: Kind(9)}.String())
}

// TestTransitions tests every edge of the state machine.
func TestTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		op     func(State) (State, bool)
		want   State
		wantOK bool
	}{
		{"unshared borrow", Unshared(), Borrow, Shared(1), true},
		{"shared borrow", Shared(3), Borrow, Shared(4), true},
		{"exclusive borrow refused", Exclusive(), Borrow, Exclusive(), false},
		{"unshared borrow mut", Unshared(), BorrowMut, Exclusive(), true},
		{"shared borrow mut refused", Shared(1), BorrowMut, Shared(1), false},
		{"exclusive borrow mut refused", Exclusive(), BorrowMut, Exclusive(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.op(tt.from)
			assert.Equal(t, tt.wantOK, ok)
			if diff := cmp.Diff(tt.want, got, stateCmp); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestRelease tests the release edges and their failure cases.
func TestRelease(t *testing.T) {
	tests := []struct {
		name    string
		guard   GuardKind
		from    State
		want    State
		wantErr bool
	}{
		{"shared last", GuardShared, Shared(1), Unshared(), false},
		{"shared many", GuardShared, Shared(5), Shared(4), false},
		{"shared from unshared", GuardShared, Unshared(), Unshared(), true},
		{"shared from exclusive", GuardShared, Exclusive(), Exclusive(), true},
		{"exclusive", GuardExclusive, Exclusive(), Unshared(), false},
		{"exclusive from unshared", GuardExclusive, Unshared(), Unshared(), true},
		{"exclusive from shared", GuardExclusive, Shared(2), Shared(2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Release(tt.guard, tt.from)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRelease))

				var re *ReleaseError
				require.True(t, errors.As(err, &re))
				assert.Equal(t, tt.guard, re.Guard)
				assert.Equal(t, tt.from, re.State)
			} else {
				require.NoError(t, err)
			}
			if diff := cmp.Diff(tt.want, got, stateCmp); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestReleaseError_Message tests the error text.
func TestReleaseError_Message(t *testing.T) {
	_, err := ReleaseExclusive(Shared(2))
	assert.EqualError(t, err, "exclusive guard released in state Shared(2)")

	_, err = ReleaseShared(Unshared())
	assert.EqualError(t, err, "shared guard released in state Unshared")
}

// TestSharedCounting checks that k borrows give Shared(k) and j releases give
// Shared(k-j), landing on Unshared at j == k.
func TestSharedCounting(t *testing.T) {
	for k := uint(1); k <= 16; k++ {
		s := Unshared()
		for i := uint(0); i < k; i++ {
			var ok bool
			s, ok = Borrow(s)
			require.True(t, ok)
		}
		require.Equal(t, Shared(k), s)

		for j := uint(1); j <= k; j++ {
			var err error
			s, err = ReleaseShared(s)
			require.NoError(t, err)
			require.Equal(t, Shared(k-j), s)
		}
		require.True(t, s.IsUnshared())
	}
}

// TestRandomWalk drives random operations against a reference model and
// checks mutual exclusion at every step.
func TestRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	var (
		s       = Unshared()
		readers uint
		writer  bool
	)

	for step := 0; step < 10000; step++ {
		switch rng.Intn(4) {
		case 0:
			next, ok := Borrow(s)
			require.Equal(t, !writer, ok, "step %d: borrow from %s", step, s)
			if ok {
				readers++
			}
			s = next
		case 1:
			next, ok := BorrowMut(s)
			require.Equal(t, !writer && readers == 0, ok, "step %d: borrow mut from %s", step, s)
			if ok {
				writer = true
			}
			s = next
		case 2:
			if readers == 0 {
				continue
			}
			next, err := ReleaseShared(s)
			require.NoError(t, err)
			readers--
			s = next
		case 3:
			if !writer {
				continue
			}
			next, err := ReleaseExclusive(s)
			require.NoError(t, err)
			writer = false
			s = next
		}

		require.True(t, s.Valid())
		require.False(t, writer && readers > 0, "step %d: writer alongside readers", step)
		switch {
		case writer:
			require.Equal(t, Exclusive(), s)
		case readers > 0:
			require.Equal(t, Shared(readers), s)
		default:
			require.Equal(t, Unshared(), s)
		}
	}
}

// TestGuardKind_String tests GuardKind names.
func TestGuardKind_String(t *testing.T) {
	assert.Equal(t, "shared", GuardShared.String())
	assert.Equal(t, "exclusive", GuardExclusive.String())
}
