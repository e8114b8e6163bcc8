package catalog

import (
	"time"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/models"
)

var priorityRank = map[string]float64{"low": 1, "medium": 2, "high": 3, "urgent": 4}

// Maintenance describes maintenance plans. Priority sorts by severity, not
// alphabetically.
func Maintenance() *Definition[models.MaintenancePlan] {
	schema := listview.NewSchema[models.MaintenancePlan]().
		Text("id", func(p models.MaintenancePlan) string { return p.ID }).
		Text("title", func(p models.MaintenancePlan) string { return p.Title }).
		Text("station_name", func(p models.MaintenancePlan) string { return p.StationName }).
		Text("device_id", func(p models.MaintenancePlan) string { return p.DeviceID }).
		Text("type", func(p models.MaintenancePlan) string { return p.Type }).
		Number("priority", func(p models.MaintenancePlan) float64 { return priorityRank[p.Priority] }).
		Text("status", func(p models.MaintenancePlan) string { return p.Status }).
		Text("assignee", func(p models.MaintenancePlan) string { return p.Assignee }).
		Time("scheduled_at", func(p models.MaintenancePlan) time.Time { return p.ScheduledAt }).
		Time("completed_at", func(p models.MaintenancePlan) time.Time { return p.CompletedAt }).
		Contains("q", "id", "title", "station_name", "device_id", "assignee").
		Equals("status", "").
		Equals("type", "").
		Match("priority", func(p models.MaintenancePlan, v string) bool { return p.Priority == v })

	return &Definition[models.MaintenancePlan]{
		Name:   models.EntityMaintenance,
		Title:  "Maintenance",
		Schema: schema,
		Columns: []Column[models.MaintenancePlan]{
			textCol("id", "ID", func(p models.MaintenancePlan) string { return p.ID }),
			textCol("title", "Title", func(p models.MaintenancePlan) string { return p.Title }),
			textCol("station_name", "Station", func(p models.MaintenancePlan) string { return p.StationName }),
			textCol("type", "Type", func(p models.MaintenancePlan) string { return p.Type }),
			textCol("priority", "Priority", func(p models.MaintenancePlan) string { return p.Priority }),
			statusCol(func(p models.MaintenancePlan) string { return p.Status }),
			textCol("assignee", "Assignee", func(p models.MaintenancePlan) string { return p.Assignee }),
			timeCol("scheduled_at", "Scheduled", func(p models.MaintenancePlan) time.Time { return p.ScheduledAt }),
			timeCol("completed_at", "Completed", func(p models.MaintenancePlan) time.Time { return p.CompletedAt }),
		},
		Statuses: models.MaintenanceStatuses,
		Transitions: map[string][]string{
			"in_progress": {"planned", "overdue"},
			"completed":   {"in_progress"},
			"cancelled":   {"planned", "overdue"},
		},
		ID:        func(p models.MaintenancePlan) string { return p.ID },
		Status:    func(p models.MaintenancePlan) string { return p.Status },
		SetStatus: func(p *models.MaintenancePlan, status string) { p.Status = status },
	}
}
