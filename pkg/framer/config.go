// Package framer adds a metadata caption strip to batches of photos.
package framer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/tstromberg/framer/pkg/layout"
)

// ErrConfig is returned for settings that cannot be used.
var ErrConfig = errors.New("invalid configuration")

// DefaultLogo is the mandatory logo.options entry used when no brand matches.
const DefaultLogo = "default"

// Config holds configuration for framer.
type Config struct {
	Font     FontConfig     `mapstructure:"font"`
	Text     TextConfig     `mapstructure:"text"`
	Logo     LogoConfig     `mapstructure:"logo"`
	Border   BorderConfig   `mapstructure:"border"`
	Basic    BasicConfig    `mapstructure:"basic"`
	Image    ImageConfig    `mapstructure:"image"`
	Exiftool ExiftoolConfig `mapstructure:"exiftool"`
	Metadata MetadataConfig `mapstructure:"metadata"`
}

// FontConfig is the caption font.
type FontConfig struct {
	Path  string `mapstructure:"path"`
	Size  int    `mapstructure:"size"`
	Color string `mapstructure:"color"`
}

// TextConfig positions the caption text.
type TextConfig struct {
	Padding int `mapstructure:"padding"`
	// LeftMargin anchors text when there is no logo; negative reuses the logo padding.
	LeftMargin int `mapstructure:"left_margin"`
}

// LogoConfig selects and sizes the brand logo.
type LogoConfig struct {
	Padding int `mapstructure:"padding"`
	Size    int `mapstructure:"size"`
	// Options maps a brand substring to a logo file.
	Options map[string]string `mapstructure:"options"`
}

// BorderConfig sizes the borders around the photo and which sides get one.
type BorderConfig struct {
	Height        int    `mapstructure:"height"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	IncludeTop    bool   `mapstructure:"include_top"`
	IncludeBottom bool   `mapstructure:"include_bottom"`
	IncludeLeft   bool   `mapstructure:"include_left"`
	IncludeRight  bool   `mapstructure:"include_right"`
}

// BasicConfig holds the size rates used in rate-priority mode and the worker settings.
type BasicConfig struct {
	SizeRatePriority    bool    `mapstructure:"size_rate_priority"`
	LogoPaddingSizeRate float64 `mapstructure:"logo_padding_size_rate"`
	TextPaddingSizeRate float64 `mapstructure:"text_padding_size_rate"`
	TextMarginSizeRate  float64 `mapstructure:"text_margin_size_rate"`
	FontSizeRate        float64 `mapstructure:"font_size_rate"`
	BorderSizeRate      float64 `mapstructure:"border_size_rate"`
	LogoSizeRate        float64 `mapstructure:"logo_size_rate"`
	UseMultithreading   bool    `mapstructure:"use_multithreading"`
	ThreadNums          int     `mapstructure:"thread_nums"`
}

// ImageConfig holds input and output locations and encoding.
type ImageConfig struct {
	InputFolder   string `mapstructure:"input_folder"`
	OutputFolder  string `mapstructure:"output_folder"`
	OutputQuality int    `mapstructure:"output_quality"`
	OutputPrefix  string `mapstructure:"output_prefix"`
	Recursive     bool   `mapstructure:"recursive"`
}

// ExiftoolConfig locates the exiftool binary.
type ExiftoolConfig struct {
	Path string `mapstructure:"path"`
}

// MetadataConfig selects the metadata extraction backend.
type MetadataConfig struct {
	// Backend is "exiftool" or "goexif".
	Backend string `mapstructure:"backend"`
}

var defaults = map[string]any{
	"font.path":                    "resources/fonts/Lato-Bold.ttf",
	"font.size":                    27,
	"font.color":                   "#000000",
	"text.padding":                 20,
	"text.left_margin":             -1,
	"logo.padding":                 20,
	"logo.size":                    100,
	"logo.options":                 map[string]string{},
	"border.height":                50,
	"border.width":                 50,
	"border.color":                 "#FFFFFF",
	"border.include_top":           true,
	"border.include_bottom":        true,
	"border.include_left":          true,
	"border.include_right":         true,
	"basic.size_rate_priority":     false,
	"basic.logo_padding_size_rate": 0.02,
	"basic.text_padding_size_rate": 0.02,
	"basic.text_margin_size_rate":  -1.0,
	"basic.font_size_rate":         0.027,
	"basic.border_size_rate":       0.05,
	"basic.logo_size_rate":         0.1,
	"basic.use_multithreading":     false,
	"basic.thread_nums":            4,
	"image.input_folder":           "input",
	"image.output_folder":          "output",
	"image.output_quality":         95,
	"image.output_prefix":          "EXIF_",
	"image.recursive":              false,
	"exiftool.path":                "",
	"metadata.backend":             "exiftool",
}

// Load reads a settings file; an empty path yields the defaults. FRAMER_* environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("framer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		klog.V(1).Infof("loaded config from %s", v.ConfigFileUsed())
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks settings that would otherwise fail per image.
func (c *Config) Validate() error {
	if len(c.Logo.Options) > 0 {
		if _, ok := c.Logo.Options[DefaultLogo]; !ok {
			return fmt.Errorf("%w: logo.options needs a %q entry", ErrConfig, DefaultLogo)
		}
	}

	if c.Image.OutputQuality < 1 || c.Image.OutputQuality > 100 {
		return fmt.Errorf("%w: image.output_quality %d is outside 1-100", ErrConfig, c.Image.OutputQuality)
	}

	if c.Basic.ThreadNums < 1 {
		return fmt.Errorf("%w: basic.thread_nums must be at least 1", ErrConfig)
	}

	for _, s := range []string{c.Font.Color, c.Border.Color} {
		if _, err := layout.ParseColor(s); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}

	switch c.Metadata.Backend {
	case BackendExiftool, BackendGoexif:
	default:
		return fmt.Errorf("%w: unknown metadata.backend %q", ErrConfig, c.Metadata.Backend)
	}

	return nil
}

// Workers is the number of images processed at once.
func (c *Config) Workers() int {
	if c.Basic.UseMultithreading {
		return c.Basic.ThreadNums
	}
	return 1
}

// Layout returns the geometry settings for the layout engine.
func (c *Config) Layout() layout.Config {
	return layout.Config{
		FontSize:      c.Font.Size,
		LogoSize:      c.Logo.Size,
		BorderWidth:   c.Border.Width,
		BorderHeight:  c.Border.Height,
		TextPadding:   c.Text.Padding,
		LogoPadding:   c.Logo.Padding,
		TextMargin:    c.Text.LeftMargin,
		IncludeTop:    c.Border.IncludeTop,
		IncludeBottom: c.Border.IncludeBottom,
		IncludeLeft:   c.Border.IncludeLeft,
		IncludeRight:  c.Border.IncludeRight,
		RatePriority:  c.Basic.SizeRatePriority,
		Rates: layout.Rates{
			FontSize:    c.Basic.FontSizeRate,
			LogoSize:    c.Basic.LogoSizeRate,
			Border:      c.Basic.BorderSizeRate,
			TextPadding: c.Basic.TextPaddingSizeRate,
			LogoPadding: c.Basic.LogoPaddingSizeRate,
			TextMargin:  c.Basic.TextMarginSizeRate,
		},
	}
}
