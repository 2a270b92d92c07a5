// Package catalog holds the read-only lesson and rubric lookups. A Catalog
// is built once at startup and never mutated.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalogYAML []byte

type Level struct {
	Score       float64 `yaml:"score"`
	Description string  `yaml:"description"`
}

type Criterion struct {
	Name   string  `yaml:"name"`
	Label  string  `yaml:"label"`
	Weight float64 `yaml:"weight"`
	Levels []Level `yaml:"levels"`
}

type Rubric struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Criteria []Criterion `yaml:"criteria"`
}

// Weight returns the weight of criterion name, or 0.
func (r *Rubric) Weight(name string) float64 {
	for _, c := range r.Criteria {
		if c.Name == name {
			return c.Weight
		}
	}
	return 0
}

func (r *Rubric) CriterionNames() []string {
	out := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		out = append(out, c.Name)
	}
	return out
}

type Lesson struct {
	ID                 string   `yaml:"id" json:"id"`
	Title              string   `yaml:"title" json:"title"`
	Category           string   `yaml:"category" json:"category"`
	Tier               int      `yaml:"tier" json:"tier"`
	RubricID           string   `yaml:"rubricId" json:"rubricId"`
	Skills             []string `yaml:"skills" json:"skills"`
	LearningObjectives []string `yaml:"learningObjectives" json:"learningObjectives"`
	MinWords           int      `yaml:"minWords" json:"minWords"`
	WritingPrompt      string   `yaml:"writingPrompt" json:"writingPrompt"`
}

type file struct {
	Version int       `yaml:"version"`
	Lessons []*Lesson `yaml:"lessons"`
	Rubrics []*Rubric `yaml:"rubrics"`
}

type Catalog struct {
	lessons    map[string]*Lesson
	rubrics    map[string]*Rubric
	ordered    []*Lesson
	byCategory map[string][]*Lesson
}

// Load reads path, or the embedded default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Parse(defaultCatalogYAML)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func Default() (*Catalog, error) { return Parse(defaultCatalogYAML) }

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return build(f)
}

func build(f file) (*Catalog, error) {
	c := &Catalog{
		lessons:    map[string]*Lesson{},
		rubrics:    map[string]*Rubric{},
		byCategory: map[string][]*Lesson{},
	}
	var problems []string
	for _, r := range f.Rubrics {
		if r == nil || strings.TrimSpace(r.ID) == "" {
			problems = append(problems, "rubric with empty id")
			continue
		}
		if _, dup := c.rubrics[r.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate rubric %q", r.ID))
			continue
		}
		if len(r.Criteria) == 0 {
			problems = append(problems, fmt.Sprintf("rubric %q has no criteria", r.ID))
		}
		total := 0.0
		for _, cr := range r.Criteria {
			if strings.TrimSpace(cr.Name) == "" || cr.Weight <= 0 {
				problems = append(problems, fmt.Sprintf("rubric %q has a criterion without name or weight", r.ID))
			}
			total += cr.Weight
		}
		if len(r.Criteria) > 0 && math.Abs(total-1) > 0.001 {
			problems = append(problems, fmt.Sprintf("rubric %q weights sum to %.3f, want 1", r.ID, total))
		}
		c.rubrics[r.ID] = r
	}
	for _, l := range f.Lessons {
		if l == nil || strings.TrimSpace(l.ID) == "" {
			problems = append(problems, "lesson with empty id")
			continue
		}
		if _, dup := c.lessons[l.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate lesson %q", l.ID))
			continue
		}
		if _, ok := c.rubrics[l.RubricID]; !ok {
			problems = append(problems, fmt.Sprintf("lesson %q references unknown rubric %q", l.ID, l.RubricID))
		}
		if strings.TrimSpace(l.Category) == "" || len(l.Skills) == 0 {
			problems = append(problems, fmt.Sprintf("lesson %q needs a category and at least one skill", l.ID))
		}
		if l.Tier < 1 {
			problems = append(problems, fmt.Sprintf("lesson %q tier must be >= 1", l.ID))
		}
		if l.MinWords < 1 {
			problems = append(problems, fmt.Sprintf("lesson %q minWords must be >= 1", l.ID))
		}
		c.lessons[l.ID] = l
		c.ordered = append(c.ordered, l)
		c.byCategory[l.Category] = append(c.byCategory[l.Category], l)
	}
	if len(c.lessons) == 0 {
		problems = append(problems, "catalog has no lessons")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	for _, ls := range c.byCategory {
		sort.SliceStable(ls, func(i, j int) bool {
			if ls[i].Tier != ls[j].Tier {
				return ls[i].Tier < ls[j].Tier
			}
			return ls[i].ID < ls[j].ID
		})
	}
	return c, nil
}

func (c *Catalog) Lesson(id string) (*Lesson, bool) {
	l, ok := c.lessons[id]
	return l, ok
}

func (c *Catalog) Rubric(id string) (*Rubric, bool) {
	r, ok := c.rubrics[id]
	return r, ok
}

// RubricFor resolves a lesson and its rubric together.
func (c *Catalog) RubricFor(lessonID string) (*Lesson, *Rubric, bool) {
	l, ok := c.lessons[lessonID]
	if !ok {
		return nil, nil, false
	}
	r, ok := c.rubrics[l.RubricID]
	return l, r, ok
}

// Lessons returns every lesson in file order.
func (c *Catalog) Lessons() []*Lesson {
	return append([]*Lesson(nil), c.ordered...)
}

func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.byCategory))
	for k := range c.byCategory {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LessonsAtTier returns lessons of category at tier, ordered by id.
func (c *Catalog) LessonsAtTier(category string, tier int) []*Lesson {
	var out []*Lesson
	for _, l := range c.byCategory[category] {
		if l.Tier == tier {
			out = append(out, l)
		}
	}
	return out
}

// Remedial returns the first lesson in the same category one tier below id,
// falling back to the lowest tier of that category. ok is false when no
// easier lesson exists.
func (c *Catalog) Remedial(id string) (*Lesson, bool) {
	l, ok := c.lessons[id]
	if !ok {
		return nil, false
	}
	if ls := c.LessonsAtTier(l.Category, l.Tier-1); len(ls) > 0 {
		return ls[0], true
	}
	for _, cand := range c.byCategory[l.Category] {
		if cand.Tier < l.Tier {
			return cand, true
		}
	}
	return nil, false
}

// Advanced returns the first lesson in the same category one tier above id.
func (c *Catalog) Advanced(id string) (*Lesson, bool) {
	l, ok := c.lessons[id]
	if !ok {
		return nil, false
	}
	if ls := c.LessonsAtTier(l.Category, l.Tier+1); len(ls) > 0 {
		return ls[0], true
	}
	return nil, false
}
