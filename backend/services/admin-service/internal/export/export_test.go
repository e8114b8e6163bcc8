package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/mockdata"
	"evadmin/backend/services/admin-service/internal/models"
	"evadmin/backend/services/admin-service/internal/provider"
)

func stationResource(n int) (catalog.Resource, *provider.Memory[models.Station]) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	records := mockdata.Stations(mockdata.NewRand(3), n, now)
	mem := provider.NewMemory(catalog.Stations(), records, nil, 1)
	return catalog.NewResource(catalog.Stations(), mem, nil), mem
}

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteIncludesEveryRecord(t *testing.T) {
	res, _ := stationResource(450)
	var buf bytes.Buffer

	n, err := Write(context.Background(), &buf, res, listview.Query{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 450, n)

	rows := readRows(t, buf.Bytes(), "stations")
	require.Len(t, rows, 451)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "ST-0001", rows[1][0])
	assert.Equal(t, "ST-0450", rows[450][0])
}

func TestWriteHonoursFilterAndSort(t *testing.T) {
	res, mem := stationResource(120)
	want := 0
	for _, s := range mem.Records() {
		if s.Status == "online" {
			want++
		}
	}

	var buf bytes.Buffer
	n, err := Write(context.Background(), &buf, res, listview.Query{
		Filter: listview.Filter{"status": "online"},
		Sort:   listview.Sort{Field: "id", Direction: listview.Desc},
	})
	require.NoError(t, err)
	assert.Equal(t, want, n)

	rows := readRows(t, buf.Bytes(), "stations")
	require.Len(t, rows, want+1)
	for _, row := range rows[1:] {
		assert.Equal(t, "online", row[4])
	}
	if want > 1 {
		assert.Greater(t, rows[1][0], rows[2][0])
	}
}

func TestWriteStopsAtRowCap(t *testing.T) {
	res, _ := stationResource(MaxRows + 150)
	var buf bytes.Buffer

	n, err := Write(context.Background(), &buf, res, listview.Query{})
	require.NoError(t, err)
	assert.Equal(t, MaxRows, n)
}

type failingResource struct {
	catalog.Resource
}

func (failingResource) ListAll(context.Context, listview.Query, int) ([]any, error) {
	return nil, errors.New("db down")
}

func TestWriteReportsListErrors(t *testing.T) {
	res, _ := stationResource(1)
	_, err := Write(context.Background(), &bytes.Buffer{}, failingResource{res}, listview.Query{})
	assert.ErrorContains(t, err, "db down")
}

// churningResource reshuffles statuses whenever it is read, as the simulator
// does between requests.
type churningResource struct {
	catalog.Resource
	mem *provider.Memory[models.Station]
}

func (c churningResource) List(ctx context.Context, q listview.Query) (listview.Page[any], error) {
	page, err := c.Resource.List(ctx, q)
	_, _ = c.mem.MutateRandom(ctx, 100)
	return page, err
}

func (c churningResource) ListAll(ctx context.Context, q listview.Query, limit int) ([]any, error) {
	items, err := c.Resource.ListAll(ctx, q, limit)
	_, _ = c.mem.MutateRandom(ctx, 100)
	return items, err
}

func TestWriteIsConsistentUnderChurn(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	records := mockdata.Stations(mockdata.NewRand(3), 600, now)
	mem := provider.NewMemory(catalog.Stations(), records, mockdata.MutateStation, 5)
	res := churningResource{Resource: catalog.NewResource(catalog.Stations(), mem, nil), mem: mem}

	var buf bytes.Buffer
	n, err := Write(context.Background(), &buf, res, listview.Query{
		Sort: listview.Sort{Field: "status", Direction: listview.Asc},
	})
	require.NoError(t, err)
	assert.Equal(t, 600, n)

	rows := readRows(t, buf.Bytes(), "stations")
	require.Len(t, rows, 601)
	seen := make(map[string]bool, n)
	for _, row := range rows[1:] {
		assert.False(t, seen[row[0]], "duplicate row %s", row[0])
		seen[row[0]] = true
	}
	assert.Len(t, seen, 600)
	for i := 2; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1][4], rows[i][4])
	}
}
