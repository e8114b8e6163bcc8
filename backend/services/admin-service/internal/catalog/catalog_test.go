package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/libs/render"
	"evadmin/backend/services/admin-service/internal/feed"
	"evadmin/backend/services/admin-service/internal/models"
)

var errMissing = errors.New("missing")

type fakeStations struct {
	*listview.SliceSource[models.Station]
	items []models.Station
}

func newFakeStations(items []models.Station) *fakeStations {
	f := &fakeStations{items: items}
	f.SliceSource = listview.FromFunc(Stations().Schema, func() []models.Station { return f.items })
	return f
}

func (f *fakeStations) Get(_ context.Context, id string) (models.Station, error) {
	for _, s := range f.items {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Station{}, errMissing
}

func (f *fakeStations) SetStatus(_ context.Context, id, status string) (models.Station, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
			return f.items[i], nil
		}
	}
	return models.Station{}, errMissing
}

func (f *fakeStations) Transition(_ context.Context, id, status string) (models.Station, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			if err := Stations().CheckTransition(f.items[i].Status, status); err != nil {
				return models.Station{}, err
			}
			f.items[i].Status = status
			return f.items[i], nil
		}
	}
	return models.Station{}, errMissing
}

func (f *fakeStations) FetchAll(_ context.Context, q listview.Query, limit int) ([]models.Station, error) {
	view := listview.Select(f.items, Stations().Schema, q.Filter, q.Sort)
	return view[:min(limit, len(view))], nil
}

func (f *fakeStations) CountByStatus(context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, s := range f.items {
		out[s.Status]++
	}
	return out, nil
}

type capture struct{ updates []feed.Update }

func (c *capture) Publish(_ context.Context, u feed.Update) { c.updates = append(c.updates, u) }

func sampleStations() []models.Station {
	return []models.Station{
		{ID: "ST-0001", Name: "Central <Plaza>", City: "上海", Status: "online", DeviceCount: 24},
		{ID: "ST-0002", Name: "Airport Hub", City: "北京", Status: "charging", DeviceCount: 32},
		{ID: "ST-0003", Name: "Tech Park", City: "深圳", Status: "maintenance", DeviceCount: 18},
		{ID: "ST-0004", Name: "Harbor Point", City: "上海", Status: "offline", DeviceCount: 28},
	}
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		name     string
		check    func(from, to string) error
		from, to string
		want     error
	}{
		{"station to maintenance from anything", Stations().CheckTransition, "charging", "maintenance", nil},
		{"station back online only from maintenance", Stations().CheckTransition, "offline", "online", ErrInvalidTransition},
		{"station online after maintenance", Stations().CheckTransition, "maintenance", "online", nil},
		{"station same status", Stations().CheckTransition, "offline", "offline", ErrInvalidTransition},
		{"station unknown status", Stations().CheckTransition, "online", "exploded", ErrUnknownStatus},
		{"station status without operator action", Stations().CheckTransition, "online", "charging", ErrInvalidTransition},
		{"device fault recovers", Devices(nil).CheckTransition, "fault", "online", nil},
		{"order refund", Orders().CheckTransition, "completed", "refunded", nil},
		{"order refund while charging", Orders().CheckTransition, "charging", "refunded", ErrInvalidTransition},
		{"user unblock", Users().CheckTransition, "blocked", "active", nil},
		{"transaction settle", Transactions().CheckTransition, "pending", "failed", nil},
		{"transaction refund failed", Transactions().CheckTransition, "failed", "refunded", ErrInvalidTransition},
		{"plan start overdue", Maintenance().CheckTransition, "overdue", "in_progress", nil},
		{"plan complete from planned", Maintenance().CheckTransition, "planned", "completed", ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check(tc.from, tc.to)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDefinitionsAreConsistent(t *testing.T) {
	infos := []Info{
		NewResource(Stations(), nil, nil).Info(),
		NewResource(Devices(nil), nil, nil).Info(),
		NewResource(Orders(), nil, nil).Info(),
		NewResource(Users(), nil, nil).Info(),
		NewResource(Transactions(), nil, nil).Info(),
		NewResource(Maintenance(), nil, nil).Info(),
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
		for target := range info.Transitions {
			assert.Contains(t, info.Statuses, target, info.Name)
		}
		var hasStatusFilter bool
		for _, f := range info.Filters {
			if f.Name == "status" {
				hasStatusFilter = true
			}
		}
		assert.True(t, hasStatusFilter, info.Name)
		for _, c := range info.Columns {
			if c.Key == "status" {
				assert.True(t, c.Sortable, info.Name)
			}
		}
	}
	assert.Equal(t, models.Entities, names)
}

func TestUserPhoneIsNotSortable(t *testing.T) {
	info := NewResource(Users(), nil, nil).Info()
	for _, c := range info.Columns {
		assert.Equal(t, c.Key != "phone", c.Sortable, c.Key)
	}
	for _, f := range info.Fields {
		if f.Name == "phone" {
			assert.False(t, f.Sortable)
		}
	}

	users := []models.User{{ID: "U-2", Phone: "139"}, {ID: "U-1", Phone: "138"}}
	page := listview.Apply(users, Users().Schema, listview.Query{
		Filter: listview.Filter{"q": "139"},
		Sort:   listview.Sort{Field: "phone", Direction: listview.Asc},
	})
	assert.False(t, page.Sort.Active())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "U-2", page.Items[0].ID)
}

func TestResourceListAndCells(t *testing.T) {
	res := NewResource(Stations(), newFakeStations(sampleStations()), nil)

	page, err := res.List(context.Background(), listview.Query{
		Filter: listview.Filter{"city": "上海"},
		Sort:   listview.Sort{Field: "device_count", Direction: listview.Desc},
	})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "ST-0004", page.Items[0].(models.Station).ID)

	cells := res.Cells(page.Items[1], format.LangEN)
	require.Len(t, cells, len(res.Columns()))
	assert.Equal(t, "Central &lt;Plaza&gt;", render.String(cells[1]))
	assert.Equal(t, `<span class="badge badge-online">Online</span>`, render.String(cells[4]))

	values := res.Values(page.Items[1])
	assert.Equal(t, "ST-0001", values[0])
	assert.Equal(t, 24, values[5])

	assert.Nil(t, res.Cells("not a station", format.LangEN))
}

func TestResourceTransitionPublishes(t *testing.T) {
	pub := &capture{}
	fake := newFakeStations(sampleStations())
	res := NewResource(Stations(), fake, pub)
	ctx := context.Background()

	updated, err := res.Transition(ctx, "ST-0003", "online")
	require.NoError(t, err)
	assert.Equal(t, "online", updated.(models.Station).Status)
	require.Len(t, pub.updates, 1)
	assert.Equal(t, feed.Update{Entity: "stations", IDs: []string{"ST-0003"}, Source: SourceOperator}, pub.updates[0])

	_, err = res.Transition(ctx, "ST-0004", "online")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = res.Transition(ctx, "ST-9999", "offline")
	assert.ErrorIs(t, err, errMissing)
	assert.Len(t, pub.updates, 1)
}

func TestResourceListAllErasesRecords(t *testing.T) {
	res := NewResource(Stations(), newFakeStations(sampleStations()), nil)
	items, err := res.ListAll(context.Background(), listview.Query{
		Sort: listview.Sort{Field: "device_count", Direction: listview.Desc},
	}, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ST-0002", items[0].(models.Station).ID)
	assert.Equal(t, "ST-0004", items[1].(models.Station).ID)
}

func TestSourcesListsAllowedOrigins(t *testing.T) {
	sources, err := Orders().Sources("refunded")
	require.NoError(t, err)
	assert.Equal(t, []string{"completed"}, sources)

	sources, err = Stations().Sources("maintenance")
	require.NoError(t, err)
	assert.Empty(t, sources)

	_, err = Stations().Sources("charging")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Stations().Sources("exploded")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestResourceApplySkipsTransitionRules(t *testing.T) {
	fake := newFakeStations(sampleStations())
	res := NewResource(Stations(), fake, nil)

	require.NoError(t, res.Apply(context.Background(), "ST-0004", "charging"))
	got, _ := fake.Get(context.Background(), "ST-0004")
	assert.Equal(t, "charging", got.Status)

	assert.ErrorIs(t, res.Apply(context.Background(), "ST-0004", "bogus"), ErrUnknownStatus)
}

func TestSessionTogglesThroughErasedInterface(t *testing.T) {
	res := NewResource(Stations(), newFakeStations(sampleStations()), nil)
	s := res.NewSession(2)
	ctx := context.Background()

	counts := func(p listview.Page[any]) []int {
		var out []int
		for _, it := range p.Items {
			out = append(out, it.(models.Station).DeviceCount)
		}
		return out
	}

	page, err := s.ToggleSort(ctx, "device_count")
	require.NoError(t, err)
	assert.Equal(t, []int{18, 24}, counts(page))
	assert.Equal(t, 2, page.Pages)

	page, err = s.SetPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{28, 32}, counts(page))
	assert.Equal(t, 2, s.Query().Page)
	assert.Equal(t, counts(page), counts(s.Current()))
}

func TestOrderDateFilter(t *testing.T) {
	def := Orders()
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: "OD-1", StartTime: day},
		{ID: "OD-2", StartTime: day.AddDate(0, 0, -1)},
	}
	page := listview.Apply(orders, def.Schema, listview.Query{Filter: listview.Filter{"date": "2026-10-19"}})
	require.Len(t, page.Items, 1)
	assert.Equal(t, "OD-1", page.Items[0].ID)
}

func TestMaintenancePrioritySortsBySeverity(t *testing.T) {
	plans := []models.MaintenancePlan{
		{ID: "MP-1", Priority: "medium"},
		{ID: "MP-2", Priority: "urgent"},
		{ID: "MP-3", Priority: "low"},
	}
	page := listview.Apply(plans, Maintenance().Schema, listview.Query{Sort: listview.Sort{Field: "priority", Direction: listview.Desc}})
	assert.Equal(t, "MP-2", page.Items[0].ID)
	assert.Equal(t, "MP-3", page.Items[2].ID)

	filtered := listview.Apply(plans, Maintenance().Schema, listview.Query{Filter: listview.Filter{"priority": "low"}})
	assert.Equal(t, 1, filtered.Total)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(NewResource(Stations(), nil, nil), NewResource(Orders(), nil, nil))
	assert.Equal(t, []string{"stations", "orders"}, reg.Names())
	_, ok := reg.Lookup("orders")
	assert.True(t, ok)
	_, ok = reg.Lookup("unknown")
	assert.False(t, ok)
}
