package template

import (
	"strings"

	"github.com/khoaphan/careerframe/internal/domain/section"
)

// Field describes one input of the generic fallback editor for section types
// without a dedicated editor.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// SectionTemplate is a read-only descriptor of a section type: display
// metadata plus the field list driving the generic editor. Templates are
// never mutated by the section-editing flow.
type SectionTemplate struct {
	SectionType    string   `json:"section_type"`
	DisplayName    string   `json:"display_name"`
	Icon           string   `json:"icon_name"`
	IsCore         bool     `json:"is_core"`
	RecommendedFor []string `json:"recommended_for"`
	Fields         []Field  `json:"template_structure"`
}

var catalog = []SectionTemplate{
	{
		SectionType: section.TypeHero,
		DisplayName: "Hero",
		Icon:        "sparkles",
		IsCore:      true,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: "text"},
			{Name: "title", Label: "Title", Kind: "text"},
			{Name: "tagline", Label: "Tagline", Kind: "textarea"},
		},
	},
	{
		SectionType:    section.TypeCaseStudies,
		DisplayName:    "Case Studies",
		Icon:           "briefcase",
		RecommendedFor: []string{"consulting", "design", "engineering"},
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: "text"},
			{Name: "challenge", Label: "Challenge", Kind: "textarea"},
			{Name: "outcome", Label: "Outcome", Kind: "textarea"},
		},
	},
	{
		SectionType:    section.TypeSkillsMatrix,
		DisplayName:    "Skills Matrix",
		Icon:           "grid",
		RecommendedFor: []string{"engineering", "data", "marketing"},
		Fields: []Field{
			{Name: "skill", Label: "Skill", Kind: "text"},
			{Name: "proof", Label: "Proof", Kind: "textarea"},
			{Name: "level", Label: "Level", Kind: "number"},
		},
	},
	{
		SectionType:    section.TypeTimeline,
		DisplayName:    "Career Timeline",
		Icon:           "clock",
		RecommendedFor: []string{"consulting", "engineering", "operations"},
		Fields: []Field{
			{Name: "role", Label: "Role", Kind: "text"},
			{Name: "company", Label: "Company", Kind: "text"},
			{Name: "start_date", Label: "Start", Kind: "date"},
			{Name: "end_date", Label: "End", Kind: "date"},
		},
	},
	{
		SectionType:    section.TypeImpactCharts,
		DisplayName:    "Impact Charts",
		Icon:           "bar-chart",
		RecommendedFor: []string{"sales", "data", "marketing"},
		Fields: []Field{
			{Name: "label", Label: "Label", Kind: "text"},
			{Name: "value", Label: "Value", Kind: "number"},
			{Name: "unit", Label: "Unit", Kind: "text"},
		},
	},
	{
		SectionType:    section.TypeLanguages,
		DisplayName:    "Languages",
		Icon:           "globe",
		RecommendedFor: []string{"sales", "operations"},
		Fields: []Field{
			{Name: "language", Label: "Language", Kind: "text"},
			{Name: "fluency", Label: "Fluency", Kind: "text"},
		},
	},
	{
		SectionType:    section.TypeTestimonials,
		DisplayName:    "Testimonials",
		Icon:           "quote",
		RecommendedFor: []string{"consulting", "sales", "design"},
		Fields: []Field{
			{Name: "quote", Label: "Quote", Kind: "textarea"},
			{Name: "author", Label: "Author", Kind: "text"},
			{Name: "relation", Label: "Relation", Kind: "text"},
		},
	},
}

// Catalog returns the full template list.
func Catalog() []SectionTemplate {
	out := make([]SectionTemplate, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the template for a section type. Unknown types resolve to a
// generic non-core template so custom sections still render through the
// fallback editor.
func Lookup(sectionType string) SectionTemplate {
	for _, t := range catalog {
		if t.SectionType == sectionType {
			return t
		}
	}
	return SectionTemplate{
		SectionType: sectionType,
		DisplayName: displayName(sectionType),
		Icon:        "layout",
	}
}

// IsCore reports whether removal of this section type is off the table.
func IsCore(sectionType string) bool {
	return Lookup(sectionType).IsCore
}

// Recommended filters the catalog down to templates tagged for the given
// industry. Core templates are always included since every profile has them.
func Recommended(industry string) []SectionTemplate {
	out := make([]SectionTemplate, 0)
	for _, t := range catalog {
		if t.IsCore {
			out = append(out, t)
			continue
		}
		for _, tag := range t.RecommendedFor {
			if strings.EqualFold(tag, industry) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func displayName(sectionType string) string {
	words := strings.Split(sectionType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
