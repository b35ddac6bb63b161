package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"tocidx/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// FontConfig selects style and size, family always comes from FontsConfig.
	FontConfig struct {
		Style string  `yaml:"style" validate:"omitempty,oneof=B I BI"`
		Size  float64 `yaml:"size" validate:"gt=0,lte=72"`
	}

	// FontsConfig replaces core Helvetica with TrueType family when regular
	// face is specified. Missing styles fall back to regular face.
	FontsConfig struct {
		Family     string `yaml:"family" validate:"required_with=Regular"`
		Regular    string `yaml:"regular" sanitize:"assure_file_access"`
		Bold       string `yaml:"bold" sanitize:"assure_file_access"`
		Italic     string `yaml:"italic" sanitize:"assure_file_access"`
		BoldItalic string `yaml:"bold_italic" sanitize:"assure_file_access"`
	}

	PageConfig struct {
		Width        float64 `yaml:"width" validate:"gt=0"`
		Height       float64 `yaml:"height" validate:"gt=0"`
		MarginTop    float64 `yaml:"margin_top" validate:"gte=0"`
		MarginBottom float64 `yaml:"margin_bottom" validate:"gte=0"`
		MarginLeft   float64 `yaml:"margin_left" validate:"gte=0"`
		MarginRight  float64 `yaml:"margin_right" validate:"gte=0"`
		ColumnGap    float64 `yaml:"column_gap" validate:"gte=0"`
		MatchBody    bool    `yaml:"match_body"`
	}

	OutlineConfig struct {
		Title         string              `yaml:"title"`
		Dedup         common.OutlineDedup `yaml:"dedup" validate:"gte=0"`
		MaxDepth      int                 `yaml:"max_depth" validate:"gte=0"`
		TitleFont     FontConfig          `yaml:"title_font"`
		Level1Font    FontConfig          `yaml:"level1_font"`
		LevelNFont    FontConfig          `yaml:"levelN_font"`
		Indent        float64             `yaml:"indent" validate:"gte=0"`
		NumberReserve string              `yaml:"number_reserve" validate:"required"`
		LeaderGap     float64             `yaml:"leader_gap" validate:"gte=0"`
	}

	IndexConfig struct {
		Title         string     `yaml:"title"`
		Language      string     `yaml:"language" validate:"required,bcp47_language_tag"`
		TitleFont     FontConfig `yaml:"title_font"`
		HeaderFont    FontConfig `yaml:"header_font"`
		TermFont      FontConfig `yaml:"term_font"`
		RefFont       FontConfig `yaml:"ref_font"`
		HangingIndent float64    `yaml:"hanging_indent" validate:"gte=0"`
		CatchAll      string     `yaml:"catch_all" validate:"required"`
	}

	MetainformationConfig struct {
		TitleTemplate string `yaml:"title_template"`
		Author        string `yaml:"author"`
		Keywords      string `yaml:"keywords"`
	}

	DocumentConfig struct {
		Numbering             common.NumberingMode  `yaml:"numbering" validate:"gte=0"`
		LineSpacing           float64               `yaml:"line_spacing" validate:"gte=1,lte=3"`
		OutputNameTemplate    string                `yaml:"output_name_template"`
		FileNameTransliterate bool                  `yaml:"file_name_transliterate"`
		Page                  PageConfig            `yaml:"page"`
		Fonts                 FontsConfig           `yaml:"fonts"`
		Outline               OutlineConfig         `yaml:"outline"`
		Index                 IndexConfig           `yaml:"index"`
		Metainformation       MetainformationConfig `yaml:"metainformation"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, these are expanded at run time
	// with values of particular document
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	MetaTitleTemplateFieldName  TemplateFieldName = "title_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(MetaTitleTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
