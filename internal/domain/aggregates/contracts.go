package aggregates

import "strings"

// Contract describes what an aggregate owns. Wiring logs it once so the
// table ownership of every write path is visible at startup.
type Contract struct {
	Name string
	// Tables lists the tables the aggregate writes inside its transaction.
	Tables []string
	// Guards names the concurrency guards the aggregate relies on.
	Guards []string
	Notes  string
}

// Aggregate is implemented by every aggregate write contract.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" writes=[")
	b.WriteString(strings.Join(c.Tables, ","))
	b.WriteString("]")
	if len(c.Guards) > 0 {
		b.WriteString(" guards=[")
		b.WriteString(strings.Join(c.Guards, ","))
		b.WriteString("]")
	}
	return b.String()
}

// Owns reports whether table is written by the aggregate.
func (c Contract) Owns(table string) bool {
	for _, t := range c.Tables {
		if t == table {
			return true
		}
	}
	return false
}
