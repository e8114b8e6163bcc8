package listview

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type station struct {
	ID      string
	Name    string
	City    string
	Status  string
	Devices int
	Created time.Time
}

func stationSchema() *Schema[station] {
	return NewSchema[station]().
		Text("id", func(s station) string { return s.ID }).
		Text("name", func(s station) string { return s.Name }).
		Text("city", func(s station) string { return s.City }).
		Text("status", func(s station) string { return s.Status }).
		Number("devices", func(s station) float64 { return float64(s.Devices) }).
		Time("created", func(s station) time.Time { return s.Created }).
		Contains("q", "name", "city").
		Equals("status", "").
		Match("min_devices", func(s station, v string) bool {
			var n int
			_, err := fmt.Sscanf(v, "%d", &n)
			return err == nil && s.Devices >= n
		})
}

func fourStations() []station {
	return []station{
		{ID: "ST-1", Name: "Central Plaza", City: "Shanghai", Status: "online", Devices: 24},
		{ID: "ST-2", Name: "Airport Hub", City: "Beijing", Status: "charging", Devices: 32},
		{ID: "ST-3", Name: "Tech Park", City: "Shenzhen", Status: "maintenance", Devices: 18},
		{ID: "ST-4", Name: "Harbor Point", City: "Shanghai", Status: "online", Devices: 28},
	}
}

func manyStations(n int) []station {
	out := make([]station, n)
	statuses := []string{"online", "charging", "maintenance", "offline"}
	for i := range out {
		out[i] = station{
			ID:      fmt.Sprintf("ST-%03d", i+1),
			Name:    fmt.Sprintf("Station %d", i+1),
			City:    []string{"Shanghai", "Beijing", "Shenzhen"}[i%3],
			Status:  statuses[i%len(statuses)],
			Devices: (i * 7) % 40,
		}
	}
	return out
}

func deviceCounts(items []station) []int {
	out := make([]int, len(items))
	for i, s := range items {
		out[i] = s.Devices
	}
	return out
}

func ids(items []station) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestToggleSortCyclesThroughThreeStates(t *testing.T) {
	ctx := context.Background()
	c := NewController[station](FromSlice(stationSchema(), fourStations()), 20)

	page, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{24, 32, 18, 28}, deviceCounts(page.Items))

	page, err = c.ToggleSort(ctx, "devices")
	require.NoError(t, err)
	assert.Equal(t, []int{18, 24, 28, 32}, deviceCounts(page.Items))
	assert.Equal(t, Sort{Field: "devices", Direction: Asc}, page.Sort)

	page, err = c.ToggleSort(ctx, "devices")
	require.NoError(t, err)
	assert.Equal(t, []int{32, 28, 24, 18}, deviceCounts(page.Items))

	page, err = c.ToggleSort(ctx, "devices")
	require.NoError(t, err)
	assert.Equal(t, []int{24, 32, 18, 28}, deviceCounts(page.Items))
	assert.False(t, page.Sort.Active())
}

func TestToggleSortOnOtherFieldStartsAscending(t *testing.T) {
	ctx := context.Background()
	c := NewController[station](FromSlice(stationSchema(), fourStations()), 20)

	_, err := c.ToggleSort(ctx, "devices")
	require.NoError(t, err)
	_, err = c.ToggleSort(ctx, "devices")
	require.NoError(t, err)

	page, err := c.ToggleSort(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: "name", Direction: Asc}, page.Sort)
	assert.Equal(t, []string{"ST-2", "ST-1", "ST-4", "ST-3"}, ids(page.Items))
}

func TestThreeTogglesRestoreOriginalOrderForEveryField(t *testing.T) {
	ctx := context.Background()
	records := manyStations(57)
	schema := stationSchema()

	for _, field := range schema.Fields() {
		c := NewController[station](FromSlice(schema, records), 100)
		original, err := c.Refresh(ctx)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err = c.ToggleSort(ctx, field.Name)
			require.NoError(t, err)
		}
		assert.Equal(t, ids(original.Items), ids(c.Current().Items), field.Name)
	}
}

func TestSortIsStableForTies(t *testing.T) {
	records := []station{
		{ID: "a", Devices: 2}, {ID: "b", Devices: 1}, {ID: "c", Devices: 2}, {ID: "d", Devices: 1},
	}
	asc := Apply(records, stationSchema(), Query{Sort: Sort{Field: "devices", Direction: Asc}})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(asc.Items))

	desc := Apply(records, stationSchema(), Query{Sort: Sort{Field: "devices", Direction: Desc}})
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(desc.Items))
}

func TestPageSizesOverFortyFiveRecords(t *testing.T) {
	records := manyStations(45)
	schema := stationSchema()

	var sizes []int
	for p := 1; p <= 3; p++ {
		page := Apply(records, schema, Query{Page: p, PageSize: 20})
		assert.Equal(t, 3, page.Pages)
		sizes = append(sizes, len(page.Items))
	}
	assert.Equal(t, []int{20, 20, 5}, sizes)
}

func TestPageNeverExceedsSizeAndLastPageHoldsRemainder(t *testing.T) {
	schema := stationSchema()
	for _, n := range []int{0, 1, 19, 20, 21, 40, 45, 99} {
		records := manyStations(n)
		for _, size := range []int{1, 7, 20, 50} {
			pages := PageCount(n, size)
			for p := 1; p <= pages; p++ {
				page := Apply(records, schema, Query{Page: p, PageSize: size})
				assert.LessOrEqual(t, len(page.Items), size)
			}
			last := Apply(records, schema, Query{Page: pages, PageSize: size})
			want := n % size
			if want == 0 && n > 0 {
				want = size
			}
			assert.Equal(t, want, len(last.Items), "n=%d size=%d", n, size)
		}
	}
}

func TestOutOfRangePagesClamp(t *testing.T) {
	records := manyStations(45)
	schema := stationSchema()

	high := Apply(records, schema, Query{Page: 99, PageSize: 20})
	assert.Equal(t, 3, high.Page)
	assert.Len(t, high.Items, 5)

	low := Apply(records, schema, Query{Page: -4, PageSize: 20})
	assert.Equal(t, 1, low.Page)
	assert.Len(t, low.Items, 20)

	empty := Apply(nil, schema, Query{Page: 5})
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.Pages)
	assert.Empty(t, empty.Items)
}

func TestFilterCountIsMonotonicAsPredicatesAreAdded(t *testing.T) {
	records := manyStations(120)
	schema := stationSchema()

	steps := []Filter{
		{},
		{"q": "shang"},
		{"q": "shang", "status": "online"},
		{"q": "shang", "status": "online", "min_devices": "10"},
	}
	prev := len(records) + 1
	for _, f := range steps {
		page := Apply(records, schema, Query{Filter: f})
		assert.LessOrEqual(t, page.Total, prev)
		prev = page.Total
	}
	assert.Greater(t, Apply(records, schema, Query{Filter: steps[1]}).Total, 0)
}

func TestFilterWithNoMatchYieldsEmptyPage(t *testing.T) {
	page := Apply(fourStations(), stationSchema(), Query{Filter: Filter{"q": "nowhere"}})
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
}

func TestUnknownFilterAndSortAreIgnored(t *testing.T) {
	page := Apply(fourStations(), stationSchema(), Query{
		Filter: Filter{"bogus": "x", "status": ""},
		Sort:   Sort{Field: "bogus", Direction: Asc},
	})
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []string{"ST-1", "ST-2", "ST-3", "ST-4"}, ids(page.Items))
	assert.False(t, page.Sort.Active())
	assert.Empty(t, page.Filter)
}

func TestNoSortFieldsAreDisplayOnly(t *testing.T) {
	ctx := context.Background()
	schema := stationSchema().NoSort("city", "bogus")

	assert.False(t, schema.Sortable("city"))
	assert.True(t, schema.Sortable("name"))
	for _, f := range schema.Fields() {
		assert.Equal(t, f.Name != "city", f.Sortable, f.Name)
	}

	page := Apply(fourStations(), schema, Query{Sort: Sort{Field: "city", Direction: Desc}})
	assert.False(t, page.Sort.Active())
	assert.Equal(t, []string{"ST-1", "ST-2", "ST-3", "ST-4"}, ids(page.Items))

	page = Apply(fourStations(), schema, Query{Filter: Filter{"q": "shanghai"}})
	assert.Equal(t, 2, page.Total)

	c := NewController[station](FromSlice(schema, fourStations()), 10)
	page, err := c.ToggleSort(ctx, "city")
	require.NoError(t, err)
	assert.False(t, page.Sort.Active())
	assert.False(t, c.Query().Sort.Active())
}

func TestSelectReturnsWholeView(t *testing.T) {
	view := Select(manyStations(57), stationSchema(), Filter{"status": "online", "bogus": "x"}, Sort{Field: "devices", Direction: Desc})
	require.NotEmpty(t, view)
	for i, s := range view {
		assert.Equal(t, "online", s.Status)
		if i > 0 {
			assert.LessOrEqual(t, s.Devices, view[i-1].Devices)
		}
	}

	page := Apply(manyStations(57), stationSchema(), Query{Filter: Filter{"status": "online"}, PageSize: MaxPageSize})
	assert.Len(t, view, page.Total)
}

func TestSetFilterIsIdempotentAndResetsPage(t *testing.T) {
	ctx := context.Background()
	c := NewController[station](FromSlice(stationSchema(), manyStations(200)), 10)

	_, err := c.SetPage(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Query().Page)

	f := Filter{"city": "ignored", "status": "charging"}
	first, err := c.SetFilter(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)

	second, err := c.SetFilter(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, ids(first.Items), ids(second.Items))
	assert.Equal(t, first.Total, second.Total)
}

func TestControllerAdoptsClampedPage(t *testing.T) {
	ctx := context.Background()
	c := NewController[station](FromSlice(stationSchema(), manyStations(45)), 20)

	page, err := c.SetPage(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, c.Query().Page)

	page, err = c.SetPageSize(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 45)
}

func TestRefreshSeesBackingChanges(t *testing.T) {
	ctx := context.Background()
	records := fourStations()
	c := NewController[station](FromFunc(stationSchema(), func() []station { return records }), 20)

	page, err := c.SetFilter(ctx, Filter{"status": "offline"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	records[2].Status = "offline"
	page, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ST-3"}, ids(page.Items))
}

func TestRefreshKeepsPreviousPageOnError(t *testing.T) {
	ctx := context.Background()
	fail := false
	src := FetcherFunc[station](func(ctx context.Context, q Query) (Page[station], error) {
		if fail {
			return Page[station]{}, errors.New("boom")
		}
		return Apply(fourStations(), stationSchema(), q), nil
	})
	c := NewController[station](src, 20)

	good, err := c.Refresh(ctx)
	require.NoError(t, err)

	fail = true
	page, err := c.SetPage(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, ids(good.Items), ids(page.Items))
}

func TestQueryNormalize(t *testing.T) {
	q := Query{Page: 0, PageSize: 5000, Sort: Sort{Field: "name"}, Filter: Filter{"a": " ", "b": " x "}}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, Sort{}, q.Sort)
	assert.Equal(t, Filter{"b": "x"}, q.Filter)

	assert.Equal(t, DefaultPageSize, Query{}.Normalize().PageSize)
}

func TestDirectionHelpers(t *testing.T) {
	assert.Equal(t, Asc, None.Next())
	assert.Equal(t, Desc, Asc.Next())
	assert.Equal(t, None, Desc.Next())
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, None, ParseDirection("sideways"))
}
