package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesStagesInOrder(t *testing.T) {
	var order []string
	mk := func(name string) Stage {
		return Stage{Name: name, Run: func(context.Context, *State) error {
			order = append(order, name)
			return nil
		}}
	}

	p := New("build", nil, mk("stage_resolve"), mk("stage_stage"), mk("stage_wheel"))
	st := &State{}
	require.NoError(t, p.Run(context.Background(), st))

	assert.Equal(t, []string{"stage_resolve", "stage_stage", "stage_wheel"}, order)
	assert.Len(t, st.Timings, 3)
}

func TestRunHaltsOnFirstFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	p := New("doc", nil,
		Stage{Name: "ok", Run: func(context.Context, *State) error {
			order = append(order, "ok")
			return nil
		}},
		Stage{Name: "fails", Run: func(context.Context, *State) error {
			order = append(order, "fails")
			return boom
		}},
		Stage{Name: "never", Run: func(context.Context, *State) error {
			order = append(order, "never")
			return nil
		}},
	)

	err := p.Run(context.Background(), &State{})
	require.Error(t, err)
	assert.Equal(t, []string{"ok", "fails"}, order, "stage ran after a failure")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "fails", stageErr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestRunStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ran := 0
	p := New("build", nil,
		Stage{Name: "first", Run: func(context.Context, *State) error {
			ran++
			cancel() // cancel mid-run; next stage must not start
			return nil
		}},
		Stage{Name: "second", Run: func(context.Context, *State) error {
			ran++
			return nil
		}},
	)

	err := p.Run(ctx, &State{})
	require.Error(t, err)
	assert.Equal(t, 1, ran)
	assert.ErrorIs(t, err, context.Canceled)
}
