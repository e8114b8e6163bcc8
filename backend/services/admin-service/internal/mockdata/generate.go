// Package mockdata generates the synthetic records served in memory mode and
// the random mutations that stand in for live telemetry.
package mockdata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"evadmin/backend/services/admin-service/internal/models"
)

// Sizes controls how many records of each entity are generated.
type Sizes struct {
	Stations     int `yaml:"stations"`
	Devices      int `yaml:"devices"`
	Orders       int `yaml:"orders"`
	Users        int `yaml:"users"`
	Transactions int `yaml:"transactions"`
	Maintenance  int `yaml:"maintenance"`
}

// DefaultSizes matches the volumes of the original console pages.
var DefaultSizes = Sizes{
	Stations:     48,
	Devices:      600,
	Orders:       2000,
	Users:        1200,
	Transactions: 1500,
	Maintenance:  160,
}

// Dataset is one consistent set of generated records.
type Dataset struct {
	Stations     []models.Station
	Devices      []models.Device
	Orders       []models.Order
	Users        []models.User
	Transactions []models.Transaction
	Maintenance  []models.MaintenancePlan
}

var (
	cities       = []string{"上海", "北京", "深圳", "广州", "杭州", "成都", "南京", "武汉"}
	districts    = []string{"浦东", "朝阳", "南山", "天河", "西湖", "高新", "江宁", "光谷", "虹桥", "海淀"}
	landmarks    = []string{"中心广场", "科技园", "机场", "高铁站", "购物中心", "产业园", "体育中心", "会展中心"}
	operators    = []string{"国家电网", "特来电", "星星充电", "云快充", "小桔充电"}
	roads        = []string{"人民路", "中山路", "解放路", "建设路", "长江路", "滨江大道"}
	deviceModels = []string{"DP-7K-AC", "DP-11K-AC", "DP-60K-DC", "DP-120K-DC", "DP-180K-DC"}
	modelPower   = map[string]float64{"DP-7K-AC": 7, "DP-11K-AC": 11, "DP-60K-DC": 60, "DP-120K-DC": 120, "DP-180K-DC": 180}
	surnames     = []string{"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴"}
	givenNames   = []string{"伟", "芳", "娜", "敏", "静", "强", "磊", "洋", "艳", "军", "杰", "婷"}
	engineers    = []string{"赵工", "钱工", "孙工", "李工", "周工", "吴工"}
	channels     = []string{"wechat", "alipay", "unionpay", "bank"}
)

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate builds a dataset. The same seed, sizes and now yield the same data.
func Generate(seed uint64, sizes Sizes, now time.Time) Dataset {
	rng := NewRand(seed)
	ds := Dataset{}
	ds.Stations = Stations(rng, sizes.Stations, now)
	ds.Devices = Devices(rng, sizes.Devices, ds.Stations, now)
	ds.Users = Users(rng, sizes.Users, now)
	ds.Orders = Orders(rng, sizes.Orders, ds.Users, ds.Devices, now)
	ds.Transactions = Transactions(rng, sizes.Transactions, ds.Users, ds.Orders, now)
	ds.Maintenance = Maintenance(rng, sizes.Maintenance, ds.Devices, now)
	return ds
}

// Stations generates n stations.
func Stations(rng *rand.Rand, n int, now time.Time) []models.Station {
	out := make([]models.Station, n)
	for i := range out {
		city := oneOf(rng, cities)
		devices := 8 + rng.IntN(33)
		power := float64(devices) * oneOf(rng, []float64{7, 60, 120})
		out[i] = models.Station{
			ID:             fmt.Sprintf("ST-%04d", i+1),
			Name:           fmt.Sprintf("%s%s%s充电站", city, oneOf(rng, districts), oneOf(rng, landmarks)),
			City:           city,
			Address:        fmt.Sprintf("%s市%s%d号", city, oneOf(rng, roads), 1+rng.IntN(999)),
			Operator:       oneOf(rng, operators),
			Status:         weighted(rng, models.StationStatuses, []int{50, 35, 8, 7}),
			DeviceCount:    devices,
			PowerKW:        power,
			Utilization:    round(rng.Float64()*0.9, 3),
			TodayEnergyKWh: round(rng.Float64()*float64(devices)*80, 1),
			UpdatedAt:      now,
		}
		out[i].TodayRevenue = round(out[i].TodayEnergyKWh*(1.2+rng.Float64()*0.6), 2)
	}
	return out
}

// Devices generates n devices spread over stations.
func Devices(rng *rand.Rand, n int, stations []models.Station, now time.Time) []models.Device {
	out := make([]models.Device, n)
	for i := range out {
		d := models.Device{
			ID:            fmt.Sprintf("DV-%05d", i+1),
			Model:         oneOf(rng, deviceModels),
			Status:        weighted(rng, models.DeviceStatuses, []int{45, 35, 7, 8, 5}),
			Firmware:      fmt.Sprintf("v%d.%d.%d", 2+rng.IntN(2), rng.IntN(10), rng.IntN(20)),
			Temperature:   round(25+rng.Float64()*30, 1),
			LastHeartbeat: now.Add(-time.Duration(rng.IntN(600)) * time.Second),
		}
		if len(stations) > 0 {
			st := stations[rng.IntN(len(stations))]
			d.StationID, d.StationName = st.ID, st.Name
		}
		d.PowerKW = modelPower[d.Model]
		d.Type = "ac"
		if strings.HasSuffix(d.Model, "-DC") {
			d.Type = "dc"
		}
		out[i] = d
	}
	return out
}

// Users generates n customers.
func Users(rng *rand.Rand, n int, now time.Time) []models.User {
	out := make([]models.User, n)
	for i := range out {
		orders := rng.IntN(120)
		out[i] = models.User{
			ID:           fmt.Sprintf("U-%06d", i+1),
			Name:         oneOf(rng, surnames) + oneOf(rng, givenNames) + oneOf(rng, givenNames),
			Phone:        fmt.Sprintf("1%d%d****%04d", 3+rng.IntN(7), rng.IntN(10), rng.IntN(10000)),
			Email:        fmt.Sprintf("user%06d@example.com", i+1),
			Level:        weighted(rng, models.UserLevels, []int{60, 25, 11, 4}),
			Status:       weighted(rng, models.UserStatuses, []int{85, 10, 5}),
			Balance:      round(rng.Float64()*500, 2),
			OrderCount:   orders,
			TotalSpent:   round(float64(orders)*(20+rng.Float64()*60), 2),
			RegisteredAt: now.AddDate(0, 0, -rng.IntN(900)),
		}
	}
	return out
}

// Orders generates n charging orders over existing users and devices.
func Orders(rng *rand.Rand, n int, users []models.User, devices []models.Device, now time.Time) []models.Order {
	out := make([]models.Order, n)
	day := now.Format("20060102")
	for i := range out {
		start := now.Add(-time.Duration(rng.IntN(72*60)) * time.Minute)
		o := models.Order{
			ID:        fmt.Sprintf("OD-%s-%05d", day, i+1),
			Status:    weighted(rng, models.OrderStatuses, []int{15, 70, 7, 4, 4}),
			Payment:   oneOf(rng, models.PaymentMethods),
			StartTime: start,
			EnergyKWh: round(2+rng.Float64()*70, 2),
		}
		if len(users) > 0 {
			u := users[rng.IntN(len(users))]
			o.UserID, o.UserName = u.ID, u.Name
		}
		if len(devices) > 0 {
			d := devices[rng.IntN(len(devices))]
			o.DeviceID, o.StationName = d.ID, d.StationName
		}
		o.Amount = round(o.EnergyKWh*(1.2+rng.Float64()*0.6), 2)
		if o.Status != "charging" {
			o.EndTime = start.Add(time.Duration(20+rng.IntN(160)) * time.Minute)
		}
		out[i] = o
	}
	return out
}

// Transactions generates n finance entries.
func Transactions(rng *rand.Rand, n int, users []models.User, orders []models.Order, now time.Time) []models.Transaction {
	out := make([]models.Transaction, n)
	for i := range out {
		tx := models.Transaction{
			ID:        fmt.Sprintf("TX-%05d", i+1),
			Type:      weighted(rng, models.TransactionTypes, []int{60, 25, 10, 5}),
			Status:    weighted(rng, models.TransactionStatuses, []int{80, 10, 6, 4}),
			Channel:   oneOf(rng, channels),
			Amount:    round(5+rng.Float64()*300, 2),
			CreatedAt: now.Add(-time.Duration(rng.IntN(30*24*60)) * time.Minute),
		}
		if len(users) > 0 {
			tx.UserName = users[rng.IntN(len(users))].Name
		}
		if tx.Type == "charge" || tx.Type == "refund" {
			if len(orders) > 0 {
				o := orders[rng.IntN(len(orders))]
				tx.OrderID, tx.UserName, tx.Amount = o.ID, o.UserName, o.Amount
			}
		}
		out[i] = tx
	}
	return out
}

// Maintenance generates n maintenance plans against existing devices.
func Maintenance(rng *rand.Rand, n int, devices []models.Device, now time.Time) []models.MaintenancePlan {
	titles := map[string]string{
		"inspection": "例行巡检",
		"repair":     "故障维修",
		"upgrade":    "固件升级",
		"cleaning":   "设备清洁",
	}
	out := make([]models.MaintenancePlan, n)
	for i := range out {
		kind := oneOf(rng, models.MaintenanceTypes)
		p := models.MaintenancePlan{
			ID:          fmt.Sprintf("MP-%04d", i+1),
			Type:        kind,
			Priority:    weighted(rng, models.Priorities, []int{30, 40, 20, 10}),
			Status:      weighted(rng, models.MaintenanceStatuses, []int{35, 20, 30, 10, 5}),
			Assignee:    oneOf(rng, engineers),
			ScheduledAt: now.Add(time.Duration(rng.IntN(30*24)-15*24) * time.Hour),
		}
		p.Title = titles[kind]
		if len(devices) > 0 {
			d := devices[rng.IntN(len(devices))]
			p.DeviceID, p.StationName = d.ID, d.StationName
			p.Title = fmt.Sprintf("%s %s", p.Title, d.ID)
		}
		if p.Status == "completed" {
			p.CompletedAt = p.ScheduledAt.Add(time.Duration(1+rng.IntN(8)) * time.Hour)
		}
		out[i] = p
	}
	return out
}

func oneOf[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func weighted(rng *rand.Rand, values []string, weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.IntN(total)
	for i, w := range weights {
		if n < w {
			return values[i]
		}
		n -= w
	}
	return values[len(values)-1]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
