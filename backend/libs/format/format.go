// Package format holds the display helpers shared by every admin table:
// money, energy, power, ratios, durations, timestamps and status labels.
package format

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported interface languages.
const (
	LangZH = "zh-CN"
	LangEN = "en-US"
)

// DefaultLanguage is used when an admin has not chosen one.
const DefaultLanguage = LangZH

// Languages lists the accepted language tags.
var Languages = []string{LangZH, LangEN}

// SupportedLanguage reports whether tag is one of Languages.
func SupportedLanguage(tag string) bool {
	for _, l := range Languages {
		if l == tag {
			return true
		}
	}
	return false
}

var printer = message.NewPrinter(language.SimplifiedChinese)

// Currency renders an amount in yuan with grouping and two decimals.
func Currency(amount float64) string {
	if amount < 0 {
		return "-¥" + printer.Sprintf("%.2f", math.Abs(amount))
	}
	return "¥" + printer.Sprintf("%.2f", amount)
}

// Number renders n with thousands separators.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Energy renders kWh, switching to MWh from 1000 kWh.
func Energy(kwh float64) string {
	if math.Abs(kwh) >= 1000 {
		return fmt.Sprintf("%.2f MWh", kwh/1000)
	}
	return fmt.Sprintf("%.1f kWh", kwh)
}

// Power renders kW without trailing zeros.
func Power(kw float64) string {
	if kw == math.Trunc(kw) {
		return fmt.Sprintf("%d kW", int64(kw))
	}
	return fmt.Sprintf("%.1f kW", kw)
}

// Percent renders a 0..1 ratio as a percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Temperature renders degrees Celsius.
func Temperature(c float64) string {
	return fmt.Sprintf("%.1f°C", c)
}

// Duration renders d as "1h 05m", "12m 30s" or "45s".
func Duration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// DateTime renders t in the console's local style. Zero times render empty.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// Relative renders t relative to now, e.g. "5 min ago". Anything older than
// a week falls back to DateTime.
func Relative(t, now time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	zh := lang != LangEN
	switch {
	case d < time.Minute:
		return pick(zh, "刚刚", "just now")
	case d < time.Hour:
		return fmt.Sprintf(pick(zh, "%d 分钟前", "%d min ago"), int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf(pick(zh, "%d 小时前", "%d h ago"), int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf(pick(zh, "%d 天前", "%d d ago"), int(d/(24*time.Hour)))
	default:
		return DateTime(t)
	}
}

func pick(zh bool, a, b string) string {
	if zh {
		return a
	}
	return b
}
