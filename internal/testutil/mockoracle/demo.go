package mockoracle

// DemoReplies is the fixed question->SQL table served by cmd/mockoracle.
var DemoReplies = map[string]string{
	"show all customers":               "SELECT * FROM customers",
	"list all customers":               "SELECT * FROM customers",
	"how many customers are there":     "SELECT COUNT(*) AS count FROM customers",
	"count customers":                  "SELECT COUNT(*) AS count FROM customers",
	"show customer emails":             "SELECT name, email FROM customers ORDER BY name",
	"show the newest customer":         "SELECT * FROM customers ORDER BY created_at DESC LIMIT 1",
	"delete all customers":             "-- BLOCKED",
	"drop the customers table":         "-- BLOCKED",
	"update every customer email":      "-- BLOCKED",
	"what is the weather like today":   "-- TODO",
	"show customers; drop the table":   "SELECT * FROM customers; DROP TABLE customers",
	"show customers and their secrets": "SELECT name FROM customers UNION SELECT password FROM users",
}

// LoadDemo installs DemoReplies on h.
func (h *Handler) LoadDemo() {
	for question, sql := range DemoReplies {
		h.SetSQL(question, sql)
	}
}
