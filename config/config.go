package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/midbel/sheetcalc/format"
	"github.com/midbel/sheetcalc/formula/cache"
	"github.com/midbel/sheetcalc/grid"
)

var ErrConfig = errors.New("invalid configuration")

type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), `"`)
	v, err := time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("%s: %w", str, ErrConfig)
	}
	*d = Duration(v)
	return nil
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type Formats struct {
	Number string `json:"number,omitempty"`
	Bool   string `json:"bool,omitempty"`
}

type Config struct {
	Shards       int      `json:"shards"`
	AsyncTimeout Duration `json:"asyncTimeout"`
	Log          Log      `json:"log"`
	Formats      Formats  `json:"formats"`
}

func Default() Config {
	return Config{
		Shards:       cache.DefaultShards,
		AsyncTimeout: Duration(grid.DefaultAsyncTimeout),
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from file. Fields not set keep their default
// value.
func Load(file string) (Config, error) {
	r, err := os.Open(file)
	if err != nil {
		return Config{}, err
	}
	defer r.Close()
	return Read(r)
}

func Read(r io.Reader) (Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Shards <= 0 {
		return fmt.Errorf("%w: shards must be positive", ErrConfig)
	}
	if c.AsyncTimeout <= 0 {
		return fmt.Errorf("%w: async timeout must be positive", ErrConfig)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: %s: unknown log format", ErrConfig, c.Log.Format)
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, fmt.Errorf("%w: %s: unknown log level", ErrConfig, c.Log.Level)
	}
	return level, nil
}

// Logger builds the logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := c.level()
	opts := slog.HandlerOptions{
		Level: level,
	}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &opts))
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}

// Formatter builds the formatter used to display values without a format
// of their own.
func (c Config) Formatter() (*format.ValueFormatter, error) {
	vf := format.FormatValue()
	if c.Formats.Number != "" {
		if err := vf.Number(c.Formats.Number); err != nil {
			return nil, err
		}
	}
	if c.Formats.Bool != "" {
		if err := vf.Bool(c.Formats.Bool); err != nil {
			return nil, err
		}
	}
	return vf, nil
}

// Options gives the options of a document built from the configuration.
func (c Config) Options(logger *slog.Logger) ([]grid.Option, error) {
	vf, err := c.Formatter()
	if err != nil {
		return nil, err
	}
	options := []grid.Option{
		grid.WithLogger(logger),
		grid.WithShards(c.Shards),
		grid.WithAsyncTimeout(time.Duration(c.AsyncTimeout)),
		grid.WithFormatter(vf),
	}
	return options, nil
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
