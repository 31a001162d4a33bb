// Package config 读取 chordbook 的 YAML 配置：内置默认值在前，用户文件覆盖在后。
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/ByLCY/chordbook/layout"
)

//go:embed config.yaml
var DefaultConfig []byte

type (
	FontsConfig struct {
		Regular string `yaml:"regular" validate:"required"`
		Bold    string `yaml:"bold" validate:"required"`
	}

	MarginsConfig struct {
		Top    string `yaml:"top" validate:"length"`
		Side   string `yaml:"side" validate:"length"`
		Bottom string `yaml:"bottom" validate:"length"`
	}

	BookConfig struct {
		Title            string        `yaml:"title"`
		Author           string        `yaml:"author"`
		Subject          string        `yaml:"subject"`
		Keywords         []string      `yaml:"keywords"`
		PageSize         string        `yaml:"page_size" validate:"pagesize"`
		Renderer         string        `yaml:"renderer" validate:"oneof=fpdf canvas"`
		Fonts            FontsConfig   `yaml:"fonts"`
		FontSize         string        `yaml:"font_size" validate:"length"`
		TitleFontSize    string        `yaml:"title_font_size" validate:"length"`
		NoteFontSize     string        `yaml:"note_font_size" validate:"length"`
		LineSpacing      string        `yaml:"line_spacing" validate:"length"`
		ChordPadding     string        `yaml:"chord_padding" validate:"length"`
		VersePadding     string        `yaml:"verse_padding" validate:"length"`
		Margins          MarginsConfig `yaml:"margins"`
		IndexPages       int           `yaml:"index_pages" validate:"gte=0"`
		IndexPageNumbers bool          `yaml:"index_page_numbers"`
		EvenPages        bool          `yaml:"even_pages"`
		Footer           string        `yaml:"footer" validate:"oneof=numbers identifiers none"`
		Overflow         string        `yaml:"overflow" validate:"oneof=split error"`
	}

	TitleBlockConfig struct {
		Text   string `yaml:"text,omitempty" validate:"required_without=Image"`
		Image  string `yaml:"image,omitempty"`
		Size   string `yaml:"size,omitempty" validate:"omitempty,length"`
		Bold   bool   `yaml:"bold,omitempty"`
		Width  string `yaml:"width,omitempty" validate:"omitempty,length"`
		Height string `yaml:"height,omitempty" validate:"omitempty,length"`
		Gap    string `yaml:"gap,omitempty" validate:"omitempty,length"`
	}

	TitlePageConfig struct {
		Offset string             `yaml:"offset" validate:"omitempty,length"`
		Blocks []TitleBlockConfig `yaml:"blocks" validate:"dive"`
	}

	LibraryConfig struct {
		Numbering string `yaml:"numbering" validate:"oneof=alpha numbers"`
		IndexFile string `yaml:"index_file" validate:"required"`
	}

	HTMLConfig struct {
		Title      string `yaml:"title"`
		Stylesheet string `yaml:"stylesheet"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Book      BookConfig      `yaml:"book"`
		TitlePage TitlePageConfig `yaml:"title_page"`
		Library   LibraryConfig   `yaml:"library"`
		HTML      HTMLConfig      `yaml:"html"`
		Logging   LoggingConfig   `yaml:"logging"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("length", func(fl validator.FieldLevel) bool {
		_, err := layout.ParseLength(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("pagesize", func(fl validator.FieldLevel) bool {
		_, _, err := layout.ParsePageSize(fl.Field().String())
		return err == nil
	})
	return v
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// 只接受已定义的字段，拼写错误的键直接报错
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the embedded defaults and performs validation.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(DefaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Dump returns the configuration as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
