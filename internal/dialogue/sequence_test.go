package dialogue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type slots struct {
	skipSecond bool
}

func TestSequenceSkipsConditionalSlots(t *testing.T) {
	seq := Sequence[slots]{
		{Prompt: "first"},
		{Prompt: "second", Skip: func(s *slots) bool { return s.skipSecond }},
		{Prompt: "third"},
	}

	c := &slots{}
	require.Equal(t, 1, seq.Next(0, c))
	q, ok := seq.Prompt(1, c)
	require.True(t, ok)
	require.Equal(t, "second", q)

	c.skipSecond = true
	require.Equal(t, 2, seq.Next(0, c))
	_, ok = seq.Prompt(1, c)
	require.False(t, ok)

	require.True(t, seq.Done(2, c))
	require.False(t, seq.Done(0, c))
	_, ok = seq.Prompt(3, c)
	require.False(t, ok)
	_, ok = seq.Prompt(-1, c)
	require.False(t, ok)
}

func TestParseHelpers(t *testing.T) {
	n, ok := firstNumber("we are 3 adults and 2 kids")
	require.True(t, ok)
	require.Equal(t, 3, n)

	_, ok = firstNumber("three adults, 2kids")
	require.False(t, ok)

	require.Equal(t, []int{4, 7, 1}, allNumbers("4, 7 and 1"))
	require.Empty(t, allNumbers("none"))

	d, ok := firstDate("leaving on 2025-06-01 morning")
	require.True(t, ok)
	require.Equal(t, "2025-06-01", d.Format(dateLayout))

	_, ok = firstDate("2025-13-40")
	require.False(t, ok)

	require.True(t, isAlpha("in"))
	require.False(t, isAlpha("i1"))
	require.False(t, isAlpha(""))
}

func TestPassengerSplit(t *testing.T) {
	child, infants := passengerSplit([]int{1, 5}, 2)
	require.Equal(t, 1, child)
	require.Equal(t, 1, infants)

	child, infants = passengerSplit([]int{0, 1, 1}, 2)
	require.Equal(t, 0, child)
	require.Equal(t, 2, infants)

	child, infants = passengerSplit(nil, 0)
	require.Zero(t, child)
	require.Zero(t, infants)
}
