package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/aggregate"
	"github.com/brogergvhs/pollsmooth/internal/clean"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the envconfig name of every scalar field.
const EnvPrefix = "POLLSMOOTH"

const DefaultURL = "https://en.wikipedia.org/wiki/Opinion_polling_for_the_2025_Australian_federal_election"

// ChartSpec describes one summary chart rendered by `pollsmooth chart`.
type ChartSpec struct {
	Title      string   `yaml:"title" validate:"required"`
	Columns    []string `yaml:"columns" validate:"required,min=1,dive,required"`
	Smoother   string   `yaml:"smoother" validate:"oneof=ewm lowess"`
	Halflife   float64  `yaml:"halflife_days,omitempty" validate:"required_if=Smoother ewm,gte=0"`
	Window     float64  `yaml:"window_days,omitempty" validate:"required_if=Smoother lowess,gte=0"`
	Color      string   `yaml:"color,omitempty"`
	PointColor string   `yaml:"point_color,omitempty"`
	Label      string   `yaml:"label,omitempty"`
	ByPollster bool     `yaml:"by_pollster,omitempty"`
	Suffix     string   `yaml:"suffix,omitempty"`
}

// BuildSmoother returns the aggregate smoother the chart asks for.
func (s ChartSpec) BuildSmoother() aggregate.Smoother {
	if s.Smoother == "lowess" {
		return aggregate.LowessSmoother(s.Window)
	}
	return aggregate.EWMSmoother(time.Duration(s.Halflife * float64(24*time.Hour)))
}

type Config struct {
	Output string `yaml:"output" envconfig:"OUTPUT" validate:"required"`
	Debug  bool   `yaml:"debug" envconfig:"DEBUG"`

	DefaultURL   string   `yaml:"default_url" envconfig:"URL" validate:"omitempty,url"`
	InputFile    string   `yaml:"input_file" envconfig:"INPUT_FILE"`
	TableIndex   int      `yaml:"table_index" envconfig:"TABLE_INDEX" validate:"gte=0"`
	DateColumn   string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	BrandColumns []string `yaml:"brand_columns" envconfig:"BRAND_COLUMNS"`

	NumericFields clean.Schema `yaml:"numeric_fields" ignored:"true"`

	Cookie           string `yaml:"cookie" envconfig:"COOKIE"`
	CookieFile       string `yaml:"cookie_file" envconfig:"COOKIE_FILE"`
	UserAgent        string `yaml:"user_agent" envconfig:"USER_AGENT"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass" envconfig:"CLOUDFLARE_BYPASS"`

	LFooter           string  `yaml:"lfooter" envconfig:"LFOOTER"`
	RFooter           string  `yaml:"rfooter" envconfig:"RFOOTER"`
	ConciseDates      bool    `yaml:"concise_dates" envconfig:"CONCISE_DATES"`
	StraightenTicks   bool    `yaml:"straighten_ticks" envconfig:"STRAIGHTEN_TICKS"`
	ConfidencePercent float64 `yaml:"confidence_percent" envconfig:"CONFIDENCE_PERCENT" validate:"gte=50,lte=100"`

	Charts []ChartSpec `yaml:"charts" ignored:"true" validate:"dive"`
}

// Options carries command line overrides. Zero values leave the loaded
// config alone; TableIndex is a pointer so that table 0 can be asked for.
type Options struct {
	IgnoreConfig     bool
	Debug            bool
	Output           string
	DefaultURL       string
	InputFile        string
	TableIndex       *int
	Cookie           string
	CookieFile       string
	UserAgent        string
	CloudflareBypass bool
	LFooter          string
	RFooter          string
}

func DefaultConfig() *Config {
	cleaning := clean.DefaultOptions()
	return &Config{
		Output:            "charts",
		DefaultURL:        DefaultURL,
		TableIndex:        0,
		DateColumn:        cleaning.DateColumn,
		BrandColumns:      cleaning.BrandColumns,
		NumericFields:     cleaning.Schema,
		LFooter:           "Source: Wikipedia",
		ConciseDates:      true,
		ConfidencePercent: 95,
		Charts: []ChartSpec{
			{
				Title:    "ALP two-party preferred",
				Columns:  []string{"2pp vote ALP"},
				Smoother: "ewm",
				Halflife: 14,
				Color:    "labor",
				Label:    "ALP",
				Suffix:   "ewm",
			},
			{
				Title:    "Coalition two-party preferred",
				Columns:  []string{"2pp vote L/NP"},
				Smoother: "lowess",
				Window:   91,
				Color:    "coalition",
				Label:    "L/NP",
				Suffix:   "lowess",
			},
			{
				Title:      "Other primary vote",
				Columns:    []string{"Primary vote ONP", "Primary vote OTH"},
				Smoother:   "ewm",
				Halflife:   21,
				Color:      "other",
				ByPollster: true,
			},
		},
	}
}

// CleanOptions are the cleaner settings this config selects.
func (c *Config) CleanOptions() clean.Options {
	return clean.Options{
		Schema:       c.NumericFields,
		DateColumn:   c.DateColumn,
		BrandColumns: c.BrandColumns,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	// lists and maps in the file replace the defaults rather than merging
	c.Charts = nil
	c.NumericFields = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the active profile, then applies POLLSMOOTH_*
// environment variables and finally the command line options. The
// second return value describes where the config came from.
func LoadMerged(opts Options) (*Config, string, error) {
	var (
		cfg  *Config
		used string
	)

	activePath, err := ActiveConfigPath()
	switch {
	case opts.IgnoreConfig:
		cfg, used = DefaultConfig(), "(ignored config)"
	case err == ErrNoConfig || activePath == "":
		cfg = DefaultConfig()
		used = "(default config in memory)\nRun `pollsmooth config init` to create an actual config\n"
	case err != nil:
		return nil, "", err
	default:
		cfg, err = loadYAML(activePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
		}
		used = activePath
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, "", fmt.Errorf("environment: %w", err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

var validate = validator.New()

// Validate checks field constraints and reports every failing field.
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Debug {
		c.Debug = true
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.InputFile != "" {
		c.InputFile = o.InputFile
	}
	if o.TableIndex != nil {
		c.TableIndex = *o.TableIndex
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
	if o.LFooter != "" {
		c.LFooter = o.LFooter
	}
	if o.RFooter != "" {
		c.RFooter = o.RFooter
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.DateColumn == "" {
		c.DateColumn = clean.DefaultDateColumn
	}
	if len(c.NumericFields) == 0 {
		c.NumericFields = clean.DefaultSchema()
	}
	if c.ConfidencePercent == 0 {
		c.ConfidencePercent = 95
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.InputFile != "" {
		fmt.Printf(" -input_file: %s\n", c.InputFile)
	} else if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	fmt.Printf(" -table_index: %d\n", c.TableIndex)
	fmt.Printf(" -date_column: %s\n", c.DateColumn)
	if len(c.BrandColumns) > 0 {
		fmt.Printf(" -brand_columns: %s\n", strings.Join(c.BrandColumns, ", "))
	}
	fmt.Printf(" -numeric_fields: %s\n", strings.Join(c.NumericFields.Fields(), ", "))
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.CloudflareBypass {
		fmt.Printf(" -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	fmt.Printf(" -confidence_percent: %g\n", c.ConfidencePercent)
	for _, ch := range c.Charts {
		fmt.Printf(" -chart: %s [%s] %s\n", ch.Title, strings.Join(ch.Columns, " + "), ch.Smoother)
	}
}
