package sleep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnRunSleep(t *testing.T) {
	testCases := []struct {
		name    string
		input   Input
		wantErr string
	}{
		{name: "no duration", input: Input{}},
		{name: "short sleep", input: Input{Duration: "10ms"}},
		{name: "bad duration", input: Input{Duration: "soon"}, wantErr: `invalid duration "soon"`},
		{name: "requested failure", input: Input{Fail: true}, wantErr: "failure requested"},
		{name: "requested failure with reason", input: Input{Fail: true, Reason: "flaky"}, wantErr: "failure requested: flaky"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start := time.Now()
			err := OnRunSleep(context.Background(), &tc.input)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			if tc.input.Fail {
				assert.ErrorIs(t, err, ErrRequestedFailure)
			}
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestOnRunSleep_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := OnRunSleep(ctx, &Input{Duration: "1m"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
