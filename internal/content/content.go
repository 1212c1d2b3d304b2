// Package content holds the static site catalog: programs, quiz questions,
// mentors, events, mentorship topics and dashboard rewards.
package content

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seed []byte

type Program struct {
	Key         string `yaml:"key" json:"key"`
	Title       string `yaml:"title" json:"title"`
	Image       string `yaml:"image" json:"image"`
	Description string `yaml:"description" json:"description"`
}

// Question is a yes/no quiz prompt; a yes scores one point for Program.
type Question struct {
	Text    string `yaml:"text" json:"text"`
	Program string `yaml:"program" json:"program"`
}

type Mentor struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Programs  []string `yaml:"programs" json:"programs"`
	Bio       string   `yaml:"bio" json:"bio"`
	Tags      []string `yaml:"tags" json:"tags"`
	Languages []string `yaml:"languages" json:"languages"`
	Timezone  string   `yaml:"timezone" json:"timezone"`
}

type Event struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Date     string `yaml:"date" json:"date"`
	Time     string `yaml:"time" json:"time"`
	Location string `yaml:"location" json:"location"`
}

type Reward struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Type        string `yaml:"type" json:"type"`
	Cost        int    `yaml:"cost" json:"cost"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
}

type Catalog struct {
	Programs  []Program  `yaml:"programs"`
	Questions []Question `yaml:"questions"`
	Mentors   []Mentor   `yaml:"mentors"`
	Topics    []string   `yaml:"topics"`
	Events    []Event    `yaml:"events"`
	Rewards   []Reward   `yaml:"rewards"`
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load parses the embedded seed on first use and returns the shared catalog.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(seed)
	})
	return loaded, loadErr
}

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode content seed failed: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Programs) == 0 {
		return fmt.Errorf("content seed has no programs")
	}
	for i, q := range c.Questions {
		if c.Program(q.Program) == nil {
			return fmt.Errorf("question %d references unknown program %q", i+1, q.Program)
		}
	}
	seen := make(map[string]struct{}, len(c.Mentors))
	for _, m := range c.Mentors {
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate mentor id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	for _, r := range c.Rewards {
		if r.Cost < 0 {
			return fmt.Errorf("reward %q has negative cost", r.ID)
		}
	}
	return nil
}

func (c *Catalog) Program(key string) *Program {
	for i := range c.Programs {
		if c.Programs[i].Key == key {
			return &c.Programs[i]
		}
	}
	return nil
}

func (c *Catalog) Mentor(id string) *Mentor {
	for i := range c.Mentors {
		if c.Mentors[i].ID == id {
			return &c.Mentors[i]
		}
	}
	return nil
}

func (c *Catalog) Reward(id string) *Reward {
	for i := range c.Rewards {
		if c.Rewards[i].ID == id {
			return &c.Rewards[i]
		}
	}
	return nil
}

func (c *Catalog) HasTopic(topic string) bool {
	for _, t := range c.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
