// Package catalog holds the static roadmap content and decides which part of
// it a learner may see.
package catalog

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	appfs "github.com/Bhaskar-J-Pathak/Acad-AI/fs"
)

const defaultPath = "catalog/roadmaps.yaml"

type Tier string

const (
	TierEssential Tier = "essential"
	TierExtra     Tier = "extra"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Label is the learner-facing name of the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "Essential"
	case PriorityMedium:
		return "Important"
	case PriorityLow:
		return "Nice to Have"
	}
	return ""
}

type (
	Resource struct {
		Name string `yaml:"name" json:"name"`
		URL  string `yaml:"url" json:"url"`
	}

	Topic struct {
		ID        string    `yaml:"id" json:"id"`
		Title     string    `yaml:"title" json:"title"`
		Priority  Priority  `yaml:"priority" json:"priority"`
		Tier      Tier      `yaml:"tier" json:"tier"`
		Subtopics []string  `yaml:"subtopics" json:"subtopics,omitempty"`
		Resource  *Resource `yaml:"resource" json:"resource,omitempty"`
	}

	Phase struct {
		ID          string  `yaml:"id" json:"id"`
		Title       string  `yaml:"title" json:"title"`
		Duration    string  `yaml:"duration" json:"duration"`
		Description string  `yaml:"description" json:"description"`
		Topics      []Topic `yaml:"topics" json:"topics"`
		Withheld    int     `yaml:"-" json:"withheld"` // set by Gate
	}

	Domain struct {
		ID          string  `yaml:"id" json:"id"`
		Title       string  `yaml:"title" json:"title"`
		Role        string  `yaml:"role" json:"role"`
		Description string  `yaml:"description" json:"description"`
		Accent      string  `yaml:"accent" json:"accent"`
		Phases      []Phase `yaml:"phases" json:"phases,omitempty"`
	}

	Catalog struct {
		domains []Domain
		byID    map[string]int
	}
)

// DomainNotFoundError is returned for a domain absent from the catalog.
// Its message is shown to the learner in place of the roadmap.
type DomainNotFoundError struct {
	Domain string
}

func (e *DomainNotFoundError) Error() string {
	return fmt.Sprintf("Could not find a roadmap for %q. Please select another domain.", e.Domain)
}

// Default loads the catalog shipped within the binary.
func Default() (*Catalog, error) {
	return LoadFS(appfs.FS, defaultPath)
}

func LoadFS(fsys fs.FS, path string) (*Catalog, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog")
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML catalog and checks ids are unique and tiers known.
func Load(r io.Reader) (*Catalog, error) {
	var doc struct {
		Domains []Domain `yaml:"domains"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}

	c := &Catalog{domains: doc.Domains, byID: make(map[string]int, len(doc.Domains))}
	for i, d := range doc.Domains {
		if d.ID == "" {
			return nil, errors.Errorf("catalog: domain #%d has no id", i)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, errors.Errorf("catalog: duplicate domain %q", d.ID)
		}
		c.byID[d.ID] = i

		topicIDs := make(map[string]struct{})
		for _, p := range d.Phases {
			for _, t := range p.Topics {
				if _, dup := topicIDs[t.ID]; dup || t.ID == "" {
					return nil, errors.Errorf("catalog: %s: invalid or duplicate topic id %q", d.ID, t.ID)
				}
				topicIDs[t.ID] = struct{}{}
				if t.Tier != TierEssential && t.Tier != TierExtra {
					return nil, errors.Errorf("catalog: %s/%s: unknown tier %q", d.ID, t.ID, t.Tier)
				}
				if t.Priority.Label() == "" {
					return nil, errors.Errorf("catalog: %s/%s: unknown priority %q", d.ID, t.ID, t.Priority)
				}
			}
		}
	}
	return c, nil
}

// Domains lists the domains without their roadmap, in catalog order.
func (c *Catalog) Domains() []Domain {
	domains := make([]Domain, 0, len(c.domains))
	for _, d := range c.domains {
		d.Phases = nil
		domains = append(domains, d)
	}
	return domains
}

func (c *Catalog) Domain(id string) (Domain, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Domain{}, false
	}
	return c.domains[i], true
}

// View is the part of a domain roadmap a learner may see.
type View struct {
	Domain   Domain  `json:"domain"`
	Phases   []Phase `json:"phases"`
	Premium  bool    `json:"premium"`
	Withheld int     `json:"withheld"` // premium topics not shown
}

func (c *Catalog) View(domainID string, premium bool) (View, error) {
	d, ok := c.Domain(domainID)
	if !ok {
		return View{}, &DomainNotFoundError{Domain: domainID}
	}
	phases, withheld := Gate(premium, d.Phases)
	d.Phases = nil
	return View{Domain: d, Phases: phases, Premium: premium, Withheld: withheld}, nil
}
