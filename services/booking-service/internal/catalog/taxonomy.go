package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy maps a service category to the staff specialization tags that may perform it.
// A specialization label matches a tag when the tag appears in it as a run of whole
// words after normalisation, so "Senior Hair Stylist" carries "hair stylist" but
// "Hairdresser" does not carry "hair". A category missing from the table is matched
// by its own name.
type Taxonomy struct {
	names map[string]string
	tags  map[string]map[string]struct{}
}

var defaultCategories = map[string][]string{
	"Hair":   {"Hair Stylist", "Hair", "Stylist"},
	"Nails":  {"Nail Artist", "Nail", "Manicure", "Pedicure"},
	"Spa":    {"Spa Specialist", "Massage Therapist", "Spa", "Massage"},
	"Makeup": {"Makeup Artist", "Makeup"},
}

func DefaultTaxonomy() *Taxonomy {
	t, _ := NewTaxonomy(defaultCategories)
	return t
}

func NewTaxonomy(categories map[string][]string) (*Taxonomy, error) {
	t := &Taxonomy{
		names: map[string]string{},
		tags:  map[string]map[string]struct{}{},
	}
	for category, labels := range categories {
		key := normalize(category)
		if key == "" {
			return nil, errors.New("taxonomy: empty category name")
		}
		set := map[string]struct{}{}
		for _, l := range labels {
			if n := normalize(l); n != "" {
				set[n] = struct{}{}
			}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("taxonomy: category %q has no specialization labels", category)
		}
		t.names[key] = strings.TrimSpace(category)
		t.tags[key] = set
	}
	return t, nil
}

type taxonomyFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// ParseTaxonomy reads a YAML document of the form
//
//	categories:
//	  Hair: [Hair Stylist, Hair, Stylist]
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, errors.New("taxonomy: no categories defined")
	}
	return NewTaxonomy(f.Categories)
}

// LoadTaxonomy reads path, or returns the built-in table when path is empty.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTaxonomy(data)
}

func (t *Taxonomy) Tags(category string) []string {
	key := normalize(category)
	set, ok := t.tags[key]
	if !ok {
		if key == "" {
			return nil
		}
		return []string{key}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Eligible reports whether a staff member with the given specialization may perform a
// service of category. An empty category places no restriction.
func (t *Taxonomy) Eligible(category, specialization string) bool {
	tags := t.Tags(category)
	if len(tags) == 0 {
		return true
	}
	for _, label := range SpecializationLabels(specialization) {
		for _, tag := range tags {
			if containsWords(label, tag) {
				return true
			}
		}
	}
	return false
}

// Known reports whether category has an explicit entry.
func (t *Taxonomy) Known(category string) bool {
	_, ok := t.tags[normalize(category)]
	return ok
}

func (t *Taxonomy) Categories() []string {
	out := make([]string, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SpecializationLabels splits a free-text specialization on commas and normalises each label.
func SpecializationLabels(specialization string) []string {
	var out []string
	for _, part := range strings.Split(specialization, ",") {
		if n := normalize(part); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// containsWords reports whether tag occurs in label on word boundaries. Both must be
// normalised.
func containsWords(label, tag string) bool {
	return strings.Contains(" "+label+" ", " "+tag+" ")
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
