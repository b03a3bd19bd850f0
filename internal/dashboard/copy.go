package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/osteele/liquid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/meter-dashboard/internal/config"
)

// Copy holds the liquid templates for every display string the pages carry.
type Copy struct {
	ProgressText string
	LastUpdate   string
	NoRoomData   string
	AllRooms     string
	RoomOption   string
	DayLegend    string
	NightLegend  string
	BudgetLine   string
	FetchError   string
	EmptyError   string
}

// DefaultCopy returns the stock Thai copy.
func DefaultCopy() Copy {
	return Copy{
		ProgressText: "{{ spent }} {{ currency }} / {{ limit }} {{ currency }}",
		LastUpdate:   "อัปเดตล่าสุด: {{ timestamp }}",
		NoRoomData:   "ไม่พบข้อมูลของห้องนี้",
		AllRooms:     "ภาพรวมทุกห้อง ({{ count }} ห้อง)",
		RoomOption:   "ห้อง {{ room }}",
		DayLegend:    "กลางวัน {{ percent }}% (Peak)",
		NightLegend:  "กลางคืน {{ percent }}% (Off-Peak)",
		BudgetLine:   "งบประมาณ ({{ limit }} บ.)",
		FetchError:   "เชื่อมต่อ Google Sheet ไม่สำเร็จ",
		EmptyError:   "ไม่พบข้อมูลใน Google Sheet",
	}
}

// CopyFromConfig overlays the configured templates on DefaultCopy.
func CopyFromConfig(c config.CopyConfig) Copy {
	out := DefaultCopy()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.ProgressText, c.ProgressText)
	set(&out.LastUpdate, c.LastUpdate)
	set(&out.NoRoomData, c.NoRoomData)
	set(&out.AllRooms, c.AllRooms)
	set(&out.RoomOption, c.RoomOption)
	set(&out.DayLegend, c.DayLegend)
	set(&out.NightLegend, c.NightLegend)
	set(&out.BudgetLine, c.BudgetLine)
	set(&out.FetchError, c.FetchError)
	set(&out.EmptyError, c.EmptyError)
	return out
}

// amountPrinter groups thousands the way the browser's toLocaleString did.
var amountPrinter = message.NewPrinter(language.English)

// FormatAmount floors v and formats it with thousands separators.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return amountPrinter.Sprintf("%d", int64(math.Floor(v)))
}

// formatNumber prints v without trailing zeros: 1500 -> "1500".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// copywriter renders Copy templates. Parsed templates are cached.
type copywriter struct {
	copy   Copy
	engine *liquid.Engine
	cache  sync.Map // template source -> *liquid.Template
}

func newCopywriter(c Copy) (*copywriter, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("amount", func(v any) string {
		switch n := v.(type) {
		case float64:
			return FormatAmount(n)
		case int:
			return FormatAmount(float64(n))
		case int64:
			return FormatAmount(float64(n))
		default:
			return fmt.Sprint(v)
		}
	})

	w := &copywriter{copy: c, engine: engine}
	for _, src := range []string{c.ProgressText, c.LastUpdate, c.NoRoomData, c.AllRooms, c.RoomOption, c.DayLegend, c.NightLegend, c.BudgetLine, c.FetchError, c.EmptyError} {
		if _, err := w.template(src); err != nil {
			return nil, fmt.Errorf("parse copy template %q: %w", src, err)
		}
	}
	return w, nil
}

func (w *copywriter) template(src string) (*liquid.Template, error) {
	if cached, ok := w.cache.Load(src); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := w.engine.ParseString(src)
	if err != nil {
		return nil, err
	}
	w.cache.Store(src, tpl)
	return tpl, nil
}

// render falls back to the raw template when rendering fails; templates are
// validated at construction so this only happens on bad bindings.
func (w *copywriter) render(src string, vars liquid.Bindings) string {
	tpl, err := w.template(src)
	if err != nil {
		return src
	}
	out, rerr := tpl.RenderString(vars)
	if rerr != nil {
		return src
	}
	return out
}

func (w *copywriter) progressText(spent, limit float64, currency string) string {
	return w.render(w.copy.ProgressText, liquid.Bindings{
		"spent":    int64(math.Floor(spent)),
		"limit":    formatNumber(limit),
		"currency": currency,
	})
}

func (w *copywriter) lastUpdate(ts string) string {
	return w.render(w.copy.LastUpdate, liquid.Bindings{"timestamp": ts})
}

func (w *copywriter) allRooms(count int) string {
	return w.render(w.copy.AllRooms, liquid.Bindings{"count": count})
}

func (w *copywriter) roomOption(room string) string {
	return w.render(w.copy.RoomOption, liquid.Bindings{"room": room})
}

func (w *copywriter) dayLegend(percent int) string {
	return w.render(w.copy.DayLegend, liquid.Bindings{"percent": percent})
}

func (w *copywriter) nightLegend(percent int) string {
	return w.render(w.copy.NightLegend, liquid.Bindings{"percent": percent})
}

func (w *copywriter) budgetLine(limit float64) string {
	return w.render(w.copy.BudgetLine, liquid.Bindings{"limit": formatNumber(limit)})
}
