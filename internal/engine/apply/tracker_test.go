package apply

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerRecordAndList(t *testing.T) {
	tr, err := OpenTracker(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	defer tr.Close()

	ctx := context.Background()
	require.NoError(t, tr.Record(ctx, testJob(), OutcomeSuccess))

	other := testJob()
	other.ID = "4099999999"
	other.Company = "Globex"
	require.NoError(t, tr.Record(ctx, other, OutcomeFailed))

	all, err := tr.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest first.
	require.Equal(t, "Globex", all[0].Company)
	require.Equal(t, string(OutcomeFailed), all[0].Outcome)
	require.Equal(t, "4012345678", all[1].JobID)
	require.NotEmpty(t, all[1].CreatedAt)

	failed, err := tr.List(ctx, string(OutcomeFailed), 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, "Globex", failed[0].Company)
}

func TestTrackerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tracker.db")
	tr, err := OpenTracker(path)
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.Record(context.Background(), testJob(), OutcomeSuccess))
}
