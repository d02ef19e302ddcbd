package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

func newXLSXStore(t *testing.T) (*XLSXStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.xlsx")
	st, err := OpenXLSX(path, "Posts", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestXLSXCreateWritesHeaders(t *testing.T) {
	_, path := newXLSXStore(t)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Posts")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, sheetHeaders, rows[0])
}

func TestXLSXAppendAndReadAll(t *testing.T) {
	st, _ := newXLSXStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, "https://www.instagram.com/p/AAA/"))
	require.NoError(t, st.Append(ctx, "https://www.instagram.com/reel/BBB/"))

	jobs, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "https://www.instagram.com/p/AAA/", jobs[0].RawReference)
	assert.Equal(t, constants.JobStatusPending, jobs[0].Status)
	assert.Nil(t, jobs[0].Attributes)
}

func TestXLSXWriteRowRoundTrip(t *testing.T) {
	st, path := newXLSXStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, "https://www.instagram.com/p/AAA/"))

	canonical := "AAA"
	job := entity.Job{
		RawReference: "https://www.instagram.com/p/AAA/",
		CanonicalID:  &canonical,
		Status:       constants.JobStatusSuccess,
		AttemptCount: 3,
		LastUpdated:  time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC),
		Attributes: &entity.AttributeSet{
			Account:     "someuser",
			Likes:       1234567,
			Comments:    89,
			Views:       0,
			ContentType: constants.ContentTypePhoto,
			PostedAt:    "01/08/2025 17:30 IST",
			Caption:     "hello world",
			TagCount:    2,
			Location:    "Lagos",
			FetchedAt:   "15/08/2025 15:00 IST",
		},
	}
	require.NoError(t, st.WriteRow(ctx, 0, job))

	// Counts are stored with grouping separators, handle with an @ prefix.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	likes, err := f.GetCellValue("Posts", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1,234,567", likes)
	handle, err := f.GetCellValue("Posts", "B2")
	require.NoError(t, err)
	assert.Equal(t, "@someuser", handle)
	status, err := f.GetCellValue("Posts", "L2")
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusSuccess), status)

	// ReadAll reconstructs the integers from the display cells.
	jobs, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].Attributes)
	assert.Equal(t, int64(1234567), jobs[0].Attributes.Likes)
	assert.Equal(t, "someuser", jobs[0].Attributes.Account)
	assert.Equal(t, 3, jobs[0].AttemptCount)
}

func TestXLSXFailureRowHasNoAttributes(t *testing.T) {
	st, _ := newXLSXStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, "https://www.instagram.com/p/AAA/"))

	// Succeed first, then fail: the failure must blank the attribute cells.
	canonical := "AAA"
	require.NoError(t, st.WriteRow(ctx, 0, entity.Job{
		RawReference: "https://www.instagram.com/p/AAA/",
		CanonicalID:  &canonical,
		Status:       constants.JobStatusSuccess,
		LastUpdated:  time.Now(),
		Attributes:   &entity.AttributeSet{Account: "someuser", Likes: 10},
	}))
	require.NoError(t, st.WriteRow(ctx, 0, entity.Job{
		RawReference: "https://www.instagram.com/p/AAA/",
		Status:       constants.JobStatusExhausted,
		AttemptCount: 5,
		LastUpdated:  time.Now(),
	}))

	jobs, err := st.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.JobStatusExhausted, jobs[0].Status)
	assert.Nil(t, jobs[0].Attributes)
}

func TestXLSXReopenExistingWorkbook(t *testing.T) {
	st, path := newXLSXStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, "https://www.instagram.com/p/AAA/"))
	require.NoError(t, st.Close())

	st2, err := OpenXLSX(path, "Posts", nil)
	require.NoError(t, err)
	defer st2.Close()

	jobs, err := st2.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://www.instagram.com/p/AAA/", jobs[0].RawReference)
}
