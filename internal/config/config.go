package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendJSONFile Backend = "jsonfile"
)

const DefaultNamespace = "target-achiever-storage"

type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Statistics StatisticsConfig `toml:"statistics"`
	Categories Categories       `toml:"categories"`
}

type StorageConfig struct {
	Backend   Backend `toml:"backend"`
	Path      string  `toml:"path"`
	Namespace string  `toml:"namespace"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile string `toml:"dev_file"`
}

type StatisticsConfig struct {
	UpcomingLimit int `toml:"upcoming_limit"`
}

type Category struct {
	ID            string        `toml:"id"`
	Name          string        `toml:"name"`
	Subcategories []Subcategory `toml:"subcategories"`
}

type Subcategory struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Categories is the target category catalog.
type Categories []Category

// Find returns the category with id.
func (c Categories) Find(id string) (Category, bool) {
	for _, category := range c {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

// Label returns "Category / Subcategory" for display, falling back to raw ids for unknown entries.
func (c Categories) Label(categoryID, subcategoryID string) string {
	if categoryID == "" {
		return ""
	}
	category, ok := c.Find(categoryID)
	if !ok {
		return categoryID
	}
	if subcategoryID == "" {
		return category.Name
	}
	for _, sub := range category.Subcategories {
		if sub.ID == subcategoryID {
			return category.Name + " / " + sub.Name
		}
	}
	return category.Name + " / " + subcategoryID
}

func defaultCategories() Categories {
	return Categories{
		{ID: "health", Name: "Health & Fitness", Subcategories: []Subcategory{
			{ID: "exercise", Name: "Exercise"},
			{ID: "nutrition", Name: "Nutrition"},
			{ID: "sleep", Name: "Sleep"},
		}},
		{ID: "career", Name: "Career", Subcategories: []Subcategory{
			{ID: "skills", Name: "Skills"},
			{ID: "promotion", Name: "Promotion"},
			{ID: "networking", Name: "Networking"},
		}},
		{ID: "learning", Name: "Learning", Subcategories: []Subcategory{
			{ID: "languages", Name: "Languages"},
			{ID: "reading", Name: "Reading"},
			{ID: "courses", Name: "Courses"},
		}},
		{ID: "finance", Name: "Finance", Subcategories: []Subcategory{
			{ID: "saving", Name: "Saving"},
			{ID: "investing", Name: "Investing"},
			{ID: "debt", Name: "Debt"},
		}},
		{ID: "personal", Name: "Personal", Subcategories: []Subcategory{
			{ID: "relationships", Name: "Relationships"},
			{ID: "hobbies", Name: "Hobbies"},
			{ID: "mindfulness", Name: "Mindfulness"},
		}},
	}
}

func Default(dbPath string) Config {
	return Config{
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			Path:      dbPath,
			Namespace: DefaultNamespace,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Statistics: StatisticsConfig{
			UpcomingLimit: 10,
		},
		Categories: defaultCategories(),
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// A [[categories]] block replaces the default catalog instead of merging into it.
	cfg.Categories = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.Categories == nil {
		cfg.Categories = defaults.Categories
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendJSONFile:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Namespace) == "" {
		return errors.New("storage.namespace is required")
	}

	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if c.Statistics.UpcomingLimit < 1 {
		return fmt.Errorf("statistics.upcoming_limit must be >= 1, got %d", c.Statistics.UpcomingLimit)
	}

	seenCategory := map[string]struct{}{}
	for idx, category := range c.Categories {
		id := strings.TrimSpace(category.ID)
		if id == "" {
			return fmt.Errorf("categories[%d].id is required", idx)
		}
		if strings.TrimSpace(category.Name) == "" {
			return fmt.Errorf("categories[%d].name is required", idx)
		}
		if _, ok := seenCategory[id]; ok {
			return fmt.Errorf("categories[%d].id is duplicated: %s", idx, id)
		}
		seenCategory[id] = struct{}{}

		seenSub := map[string]struct{}{}
		for subIdx, sub := range category.Subcategories {
			subID := strings.TrimSpace(sub.ID)
			if subID == "" || strings.TrimSpace(sub.Name) == "" {
				return fmt.Errorf("categories[%d].subcategories[%d] needs id and name", idx, subIdx)
			}
			if _, ok := seenSub[subID]; ok {
				return fmt.Errorf("categories[%d].subcategories[%d].id is duplicated: %s", idx, subIdx, subID)
			}
			seenSub[subID] = struct{}{}
		}
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
