package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Fixture is the seed file layout. JSON, TOML and YAML are accepted.
type Fixture struct {
	Categories []CategoryFixture `mapstructure:"categories"`
	Brands     []BrandFixture    `mapstructure:"brands"`
	Products   []ProductFixture  `mapstructure:"products"`
}

// CategoryFixture describes one category
type CategoryFixture struct {
	Name string `mapstructure:"name"`
	Slug string `mapstructure:"slug"`
}

// BrandFixture describes one brand
type BrandFixture struct {
	Name    string `mapstructure:"name"`
	Website string `mapstructure:"website"`
}

// ProductFixture describes one product. Category is matched by slug or name,
// Brand by name. ImageFile is a local path uploaded to object storage.
type ProductFixture struct {
	Name             string `mapstructure:"name"`
	Slug             string `mapstructure:"slug"`
	Category         string `mapstructure:"category"`
	Brand            string `mapstructure:"brand"`
	Price            string `mapstructure:"price"`
	Stock            int    `mapstructure:"stock"`
	ShortDescription string `mapstructure:"short_description"`
	LongDescription  string `mapstructure:"long_description"`
	MainImage        string `mapstructure:"main_image"`
	ImageFile        string `mapstructure:"image_file"`
	Inactive         bool   `mapstructure:"inactive"`
}

// LoadFixture reads a seed file. The format follows the file extension.
func LoadFixture(path string) (*Fixture, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	var f Fixture
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	for i, p := range f.Products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("products[%d]: name is required", i)
		}
		if p.Category == "" || p.Brand == "" {
			return fmt.Errorf("products[%d] %q: category and brand are required", i, p.Name)
		}
		if _, err := decimal.NewFromString(p.Price); err != nil {
			return fmt.Errorf("products[%d] %q: invalid price %q", i, p.Name, p.Price)
		}
		if p.Stock < 0 {
			return fmt.Errorf("products[%d] %q: stock cannot be negative", i, p.Name)
		}
	}
	return nil
}
