// Package guidelines provides the catalog of named guideline templates.
package guidelines

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/recode/internal/models"
)

// None is the catalog entry meaning "no template selected". Its body is empty.
const None = "None"

var builtin = []models.GuidelineTemplate{
	{Name: None, Body: ""},
	{Name: "Fix Off-By-One Errors", Body: `- Check every loop bound and array index for off-by-one mistakes.
- Prefer "i < n" over "i <= n - 1" and keep bounds consistent with buffer sizes.
- Make sure string buffers reserve space for the terminating NUL byte.
- Do not change behaviour other than correcting the boundary errors.`},
	{Name: "Add Comments", Body: `- Add a short comment above every function describing its purpose, parameters and return value.
- Comment non-obvious logic inline; do not comment trivial statements.
- Keep the code itself unchanged.`},
	{Name: "Improve Naming", Body: `- Rename variables and functions to descriptive names in snake_case.
- Replace magic numbers with named constants.
- Keep the public interface and behaviour unchanged.`},
	{Name: "Memory Safety", Body: `- Check the result of every allocation and handle failure.
- Free every allocation exactly once and set freed pointers to NULL.
- Replace unbounded string functions (strcpy, strcat, sprintf, gets) with bounded equivalents.
- Validate buffer lengths before copying.`},
	{Name: "Consistent Formatting", Body: `- Use 4-space indentation and K&R brace style.
- Limit lines to 100 characters.
- Put one declaration per line and separate functions with a blank line.`},
}

// Catalog is an ordered, read-only set of guideline templates.
type Catalog struct {
	templates []models.GuidelineTemplate
	index     map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(builtin)
}

// New builds a catalog from templates, keeping their order. A later template
// with the same name replaces an earlier one in place.
func New(templates []models.GuidelineTemplate) *Catalog {
	c := &Catalog{index: make(map[string]int, len(templates))}
	for _, t := range templates {
		if i, ok := c.index[t.Name]; ok {
			c.templates[i] = t
			continue
		}
		c.index[t.Name] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c
}

// Merge returns a new catalog with overlay applied on top of c.
func (c *Catalog) Merge(overlay []models.GuidelineTemplate) *Catalog {
	all := make([]models.GuidelineTemplate, 0, len(c.templates)+len(overlay))
	all = append(all, c.templates...)
	all = append(all, overlay...)
	return New(all)
}

// Templates returns the catalog entries in display order.
func (c *Catalog) Templates() []models.GuidelineTemplate {
	out := make([]models.GuidelineTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Names returns the template names in display order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.templates))
	for i, t := range c.templates {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the body of the named template.
func (c *Catalog) Lookup(name string) (string, bool) {
	i, ok := c.index[name]
	if !ok {
		return "", false
	}
	return c.templates[i].Body, true
}

// Resolve picks the guideline text for a rewrite. Uploaded guidelines, when
// present, take precedence over the selected template. Unknown names and the
// None sentinel resolve to empty text.
func (c *Catalog) Resolve(selected string, uploaded *string) string {
	if uploaded != nil {
		return *uploaded
	}
	body, _ := c.Lookup(selected)
	return body
}

type overlayFile struct {
	Templates []models.GuidelineTemplate `yaml:"templates"`
}

// LoadFile reads extra templates from a YAML file of the form:
//
//	templates:
//	  - name: House Style
//	    body: |
//	      - Use tabs.
func LoadFile(path string) ([]models.GuidelineTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}

	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates file %s: %w", path, err)
	}

	for i, t := range f.Templates {
		name := strings.TrimSpace(t.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("templates file %s: entry %d has no name", path, i+1)
		case name == None:
			return nil, fmt.Errorf("templates file %s: %q is reserved", path, None)
		}
		f.Templates[i].Name = name
	}
	return f.Templates, nil
}
