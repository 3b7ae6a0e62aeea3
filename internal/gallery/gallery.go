// Package gallery lists portfolio images and folds duplicate rows and
// historical category spellings into what the site shows.
package gallery

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/domain"
)

// GraduationCategory is the canonical graduation label.
const GraduationCategory = "Graduation Photos"

// categoryAliases maps lowercased historical spellings to the canonical label.
var categoryAliases = map[string]string{
	"graduation photos": GraduationCategory,
	"grad photos":       GraduationCategory,
	"graduation":        GraduationCategory,
}

// graduationSpellings are the labels actually stored in the images table.
var graduationSpellings = []string{"Graduation Photos", "Grad Photos"}

// CategoryFilter returns the stored spellings to match for category. An
// empty category matches everything.
func CategoryFilter(category string) []string {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil
	}
	if canonical(category) == GraduationCategory {
		return append([]string(nil), graduationSpellings...)
	}
	return []string{category}
}

func canonical(category string) string {
	key := strings.ToLower(strings.Join(strings.Fields(category), " "))
	if alias, ok := categoryAliases[key]; ok {
		return alias
	}
	return ""
}

// DisplayCategory renders a stored label for the site, folding aliases.
func DisplayCategory(category string) string {
	if c := canonical(category); c != "" {
		return c
	}
	category = strings.Join(strings.Fields(strings.ReplaceAll(category, "-", " ")), " ")
	return cases.Title(language.English).String(category)
}

// Dedupe keeps one image per lowercased filename. Object store rows win over
// local rows; among rows of the same kind the newest wins. Output order
// follows the first appearance of each filename.
func Dedupe(images []domain.Image, isObjectStore func(url string) bool) []domain.Image {
	if isObjectStore == nil {
		isObjectStore = domain.IsRemoteURL
	}
	index := make(map[string]int, len(images))
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		key := strings.ToLower(strings.TrimSpace(img.Filename))
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, img)
			continue
		}
		if better(img, out[i], isObjectStore) {
			out[i] = img
		}
	}
	return out
}

func better(candidate, current domain.Image, isObjectStore func(string) bool) bool {
	candRemote, curRemote := isObjectStore(candidate.URL), isObjectStore(current.URL)
	if candRemote != curRemote {
		return candRemote
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}

// Category is one entry of the public category list.
type Category struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MergeCategories folds alias spellings together and sorts by label.
func MergeCategories(counts []domain.CategoryCount) []Category {
	merged := make(map[string]*Category)
	var order []string
	for _, c := range counts {
		if strings.TrimSpace(c.Category) == "" {
			continue
		}
		name := c.Category
		if alias := canonical(name); alias != "" {
			name = alias
		}
		key := strings.ToLower(name)
		entry, ok := merged[key]
		if !ok {
			entry = &Category{Name: name, Label: DisplayCategory(name)}
			merged[key] = entry
			order = append(order, key)
		}
		entry.Count += c.Count
	}
	out := make([]Category, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
