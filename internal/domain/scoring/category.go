package scoring

import "strings"

// categoryTable classifies attribute names for the quotient rollup. Keys are lower-case.
var categoryTable = map[string]Category{
	"accountability":         CategoryTask,
	"analytical thinking":    CategoryTask,
	"decision making":        CategoryTask,
	"execution":              CategoryTask,
	"initiative":             CategoryTask,
	"innovation":             CategoryTask,
	"organizing":             CategoryTask,
	"planning":               CategoryTask,
	"problem solving":        CategoryTask,
	"quality focus":          CategoryTask,
	"result orientation":     CategoryTask,
	"strategic thinking":     CategoryTask,
	"time management":        CategoryTask,
	"coaching":               CategoryPeople,
	"collaboration":          CategoryPeople,
	"communication":          CategoryPeople,
	"conflict management":    CategoryPeople,
	"delegation":             CategoryPeople,
	"emotional intelligence": CategoryPeople,
	"empathy":                CategoryPeople,
	"listening":              CategoryPeople,
	"motivating others":      CategoryPeople,
	"relationship building":  CategoryPeople,
	"teamwork":               CategoryPeople,
	"trust building":         CategoryPeople,
}

// CategoryOf looks the attribute name up case-insensitively after trimming; unknown names are other.
func CategoryOf(attributeName string) Category {
	if category, ok := categoryTable[categoryKey(attributeName)]; ok {
		return category
	}
	return CategoryOther
}

func categoryKey(attributeName string) string {
	return strings.ToLower(strings.TrimSpace(attributeName))
}

// Categories holds per-report category choices that take precedence over CategoryOf.
// A nil Categories leaves every attribute at its default.
type Categories map[string]Category

// Set places the named attributes in category.
func (c Categories) Set(category Category, attributeNames ...string) {
	for _, name := range attributeNames {
		if key := categoryKey(name); key != "" {
			c[key] = category
		}
	}
}

// Chosen reports the explicit choice for the attribute, if any.
func (c Categories) Chosen(attributeName string) (Category, bool) {
	category, ok := c[categoryKey(attributeName)]
	return category, ok
}

func (c Categories) Of(attributeName string) Category {
	if category, ok := c.Chosen(attributeName); ok {
		return category
	}
	return CategoryOf(attributeName)
}

// Recategorize rewrites each row's category so CategoryRollup follows the choices in c.
func (c Categories) Recategorize(rows []Comparison) {
	for i := range rows {
		rows[i].Category = c.Of(rows[i].AttributeName)
	}
}
