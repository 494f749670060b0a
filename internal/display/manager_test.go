package display

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRunner scripts utility responses by full argument string and
// records every call.
type fakeRunner struct {
	replies map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.replies[key], nil
}

func newTestManager(runner *fakeRunner) *Manager {
	return NewManager(runner, zap.NewNop())
}

func TestListParsesWellFormedLines(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display list": strings.Join([]string{
			"m1ddc 1.2.0",
			"[1] DellU2720Q (DISP-1)",
			"some diagnostic noise",
			"[2] LG27UL (DISP-2)",
		}, "\n"),
	}}

	displays, err := newTestManager(runner).List(context.Background())
	require.NoError(t, err)
	require.Len(t, displays, 2)

	assert.Equal(t, Display{Number: 1, Name: "DellU2720Q", ID: "DISP-1"}, displays[0])
	assert.Equal(t, Display{Number: 2, Name: "LG27UL", ID: "DISP-2"}, displays[1])
}

func TestListKeepsNameVerbatim(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display list": "[3] Dell U2720Q 27in (ABC-123-def)",
	}}

	displays, err := newTestManager(runner).List(context.Background())
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "Dell U2720Q 27in", displays[0].Name)
	assert.Equal(t, "ABC-123-def", displays[0].ID)
}

func TestListNoMatchingLinesIsEmptyNotError(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display list": "nothing useful here",
	}}

	displays, err := newTestManager(runner).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, displays)
}

func TestFindResolutionOrder(t *testing.T) {
	list := strings.Join([]string{
		"[1] DellU2720Q (DISP-1)",
		"[2] LG27UL (DISP-2)",
	}, "\n")
	runner := &fakeRunner{replies: map[string]string{"display list": list}}
	mgr := newTestManager(runner)
	ctx := context.Background()

	byID, err := mgr.Find(ctx, "DISP-2")
	require.NoError(t, err)
	assert.Equal(t, 2, byID.Number)

	byNumber, err := mgr.Find(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "DISP-1", byNumber.ID)

	byName, err := mgr.Find(ctx, "lg27")
	require.NoError(t, err)
	assert.Equal(t, "DISP-2", byName.ID)

	_, err = mgr.Find(ctx, "nonexistent")
	assert.Error(t, err)
}

func TestSetRejectsOutOfRangeWithoutMutating(t *testing.T) {
	for _, value := range []int{-1, 101} {
		runner := &fakeRunner{replies: map[string]string{
			"display DISP-1 max contrast": "100",
		}}
		mgr := newTestManager(runner)

		err := mgr.Set(context.Background(), "DISP-1", Contrast, value)

		var oor *OutOfRangeError
		require.ErrorAs(t, err, &oor, "value %d", value)
		assert.Equal(t, Contrast, oor.Property)
		assert.Equal(t, 100, oor.Max)
		for _, call := range runner.calls {
			assert.NotContains(t, call, " set ", "no mutating command for value %d", value)
		}
	}
}

func TestSetWithinBoundsIssuesCommand(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display DISP-1 max luminance": "100",
	}}
	mgr := newTestManager(runner)

	require.NoError(t, mgr.Set(context.Background(), "DISP-1", Luminance, 80))
	assert.Equal(t, []string{
		"display DISP-1 max luminance",
		"display DISP-1 set luminance 80",
	}, runner.calls)
}

func TestSetInputSkipsBoundCheck(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newTestManager(runner)

	require.NoError(t, mgr.SetInput(context.Background(), "DISP-1", InputHDMI))
	assert.Equal(t, []string{"display DISP-1 set input 17"}, runner.calls)
}

func TestSetMuteUsesLiteralTokens(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newTestManager(runner)
	ctx := context.Background()

	require.NoError(t, mgr.SetMute(ctx, "DISP-1", true))
	require.NoError(t, mgr.SetMute(ctx, "DISP-1", false))
	assert.Equal(t, []string{
		"display DISP-1 set mute on",
		"display DISP-1 set mute off",
	}, runner.calls)
}

func TestMaxParseError(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display DISP-1 max contrast": "not-a-number",
	}}
	mgr := newTestManager(runner)

	_, err := mgr.Max(context.Background(), "DISP-1", Contrast)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, Contrast, perr.Property)
}

func TestMaxRejectsUnboundedProperties(t *testing.T) {
	mgr := newTestManager(&fakeRunner{})

	for _, prop := range []Property{Input, Mute} {
		_, err := mgr.Max(context.Background(), "DISP-1", prop)
		assert.Error(t, err, "property %s", prop)
	}
}

func TestChangeSoftFailsOutOfRange(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display DISP-1 get luminance": "50",
		"display DISP-1 max luminance": "100",
	}}
	mgr := newTestManager(runner)

	// 50+60 > 100: dropped, logged, nil error
	require.NoError(t, mgr.Change(context.Background(), "DISP-1", Luminance, 60))
	for _, call := range runner.calls {
		assert.NotContains(t, call, " chg ")
	}

	// 50-60 < 0: same
	require.NoError(t, mgr.Change(context.Background(), "DISP-1", Luminance, -60))
	for _, call := range runner.calls {
		assert.NotContains(t, call, " chg ")
	}
}

func TestChangeInRangeUsesRelativeVerb(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display DISP-1 get volume": "30",
		"display DISP-1 max volume": "100",
	}}
	mgr := newTestManager(runner)

	require.NoError(t, mgr.Change(context.Background(), "DISP-1", Volume, -10))
	assert.Equal(t, "display DISP-1 chg volume -10", runner.calls[len(runner.calls)-1])
	for _, call := range runner.calls {
		assert.NotContains(t, call, " set ")
	}
}

func TestChangeUnparseableCurrentValue(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"display DISP-1 get contrast": "???",
	}}
	mgr := newTestManager(runner)

	err := mgr.Change(context.Background(), "DISP-1", Contrast, 5)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestListPropagatesRunnerError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"display list": errors.New("i2c bus error"),
	}}
	mgr := newTestManager(runner)

	_, err := mgr.List(context.Background())
	assert.ErrorContains(t, err, "i2c bus error")
}
