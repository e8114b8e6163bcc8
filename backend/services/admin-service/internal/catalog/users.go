package catalog

import (
	"time"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/models"
)

// Users describes the customer list.
func Users() *Definition[models.User] {
	schema := listview.NewSchema[models.User]().
		Text("id", func(u models.User) string { return u.ID }).
		Text("name", func(u models.User) string { return u.Name }).
		Text("phone", func(u models.User) string { return u.Phone }).
		Text("email", func(u models.User) string { return u.Email }).
		Text("level", func(u models.User) string { return u.Level }).
		Text("status", func(u models.User) string { return u.Status }).
		Number("balance", func(u models.User) float64 { return u.Balance }).
		Number("order_count", func(u models.User) float64 { return float64(u.OrderCount) }).
		Number("total_spent", func(u models.User) float64 { return u.TotalSpent }).
		Time("registered_at", func(u models.User) time.Time { return u.RegisteredAt }).
		NoSort("phone").
		Contains("q", "id", "name", "phone", "email").
		Equals("status", "").
		Equals("level", "")

	return &Definition[models.User]{
		Name:   models.EntityUsers,
		Title:  "Users",
		Schema: schema,
		Columns: []Column[models.User]{
			textCol("id", "ID", func(u models.User) string { return u.ID }),
			textCol("name", "Name", func(u models.User) string { return u.Name }),
			textCol("phone", "Phone", func(u models.User) string { return u.Phone }),
			textCol("level", "Level", func(u models.User) string { return u.Level }),
			statusCol(func(u models.User) string { return u.Status }),
			numberCol("balance", "Balance", func(u models.User) float64 { return u.Balance }, format.Currency),
			intCol("order_count", "Orders", func(u models.User) int { return u.OrderCount }),
			numberCol("total_spent", "Total spent", func(u models.User) float64 { return u.TotalSpent }, format.Currency),
			timeCol("registered_at", "Registered", func(u models.User) time.Time { return u.RegisteredAt }),
		},
		Statuses: models.UserStatuses,
		Transitions: map[string][]string{
			"blocked": {"active", "inactive"},
			"active":  {"blocked", "inactive"},
		},
		ID:        func(u models.User) string { return u.ID },
		Status:    func(u models.User) string { return u.Status },
		SetStatus: func(u *models.User, status string) { u.Status = status },
	}
}
