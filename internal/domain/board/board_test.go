package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "akabo/internal/errors"
)

// 42-move sequence that fills the grid without a connect four.
const drawSequence = "344603526506503656131365205344011101424222"

func TestIsLegal(t *testing.T) {
	ru := Default

	assert.True(t, ru.IsLegal("", 0))
	assert.True(t, ru.IsLegal("", 6))
	assert.False(t, ru.IsLegal("", -1))
	assert.False(t, ru.IsLegal("", 7))

	full := strings.Repeat("3", 6)
	assert.False(t, ru.IsLegal(full, 3))
	assert.True(t, ru.IsLegal(full, 2))

	almostFull := strings.Repeat("3", 5)
	assert.True(t, ru.IsLegal(almostFull, 3))
}

func TestApply(t *testing.T) {
	ru := Default

	b, err := ru.Apply("", 4)
	require.NoError(t, err)
	assert.Equal(t, "4", b)

	b, err = ru.Apply(b, 4)
	require.NoError(t, err)
	assert.Equal(t, "44", b)
}

func TestApplyIllegal(t *testing.T) {
	ru := Default

	_, err := ru.Apply("", 7)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)

	full := strings.Repeat("0", 6)
	b, err := ru.Apply(full, 0)
	assert.ErrorIs(t, err, errs.ErrIllegalMove)
	assert.Equal(t, full, b, "board must be unchanged after an illegal apply")
}

func TestOutcomeNextMoverParity(t *testing.T) {
	ru := Default

	assert.Equal(t, OutcomeMoveOne, ru.Outcome(""))
	assert.Equal(t, OutcomeMoveTwo, ru.Outcome("3"))
	assert.Equal(t, OutcomeMoveOne, ru.Outcome("34"))
}

func TestOutcomeWins(t *testing.T) {
	ru := Default

	cases := []struct {
		name string
		seq  string
		want Outcome
	}{
		{"vertical", "0101010", OutcomeWinOne},
		{"horizontal", "0616263", OutcomeWinOne},
		// A win ending in the last column; catches off-by-one window bounds.
		{"horizontal right edge", "3040506", OutcomeWinOne},
		{"diagonal up-right", "0112522353633", OutcomeWinOne},
		{"diagonal down-right", "3221511050600", OutcomeWinOne},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// The win must appear exactly on the completing move,
			// never on a prefix.
			for i := range tc.seq {
				prefix := ru.Outcome(tc.seq[:i])
				require.Contains(t, []Outcome{OutcomeMoveOne, OutcomeMoveTwo}, prefix,
					"unexpected result on prefix of length %d", i)
			}
			assert.Equal(t, tc.want, ru.Outcome(tc.seq))
		})
	}
}

func TestOutcomeWinTwo(t *testing.T) {
	ru := Default

	// Player two stacks column 5 while player one wanders.
	assert.Equal(t, OutcomeWinTwo, ru.Outcome("05153505"))
}

func TestOutcomeDraw(t *testing.T) {
	ru := Default

	require.Len(t, drawSequence, 42)
	for i := range drawSequence {
		prefix := ru.Outcome(drawSequence[:i])
		require.Contains(t, []Outcome{OutcomeMoveOne, OutcomeMoveTwo}, prefix)
	}
	assert.Equal(t, OutcomeDraw, ru.Outcome(drawSequence))
}

func TestApplyFullSequence(t *testing.T) {
	ru := Default

	b := ""
	var err error
	for _, c := range drawSequence {
		b, err = ru.Apply(b, int(c-'0'))
		require.NoError(t, err)
	}
	assert.Equal(t, drawSequence, b)
	assert.Equal(t, OutcomeDraw, ru.Outcome(b))
}
