package dashboard

// Plan is a static saving suggestion shown on the plan page.
type Plan struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

var plans = []Plan{
	{Key: "lite", Title: "แผน Lite", Description: "ปิดไฟดวงที่ไม่ใช้", Amount: "50-80 บาท"},
	{Key: "balance", Title: "แผน Balance", Description: "แอร์ 26°C + พัดลม", Amount: "150-200 บาท"},
	{Key: "max", Title: "แผน Max", Description: "งดน้ำอุ่น + แอร์เฉพาะตอนนอน", Amount: "300+ บาท"},
}

// Plans returns every plan suggestion.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByKey looks a plan up by key.
func PlanByKey(key string) (Plan, bool) {
	for _, p := range plans {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}
