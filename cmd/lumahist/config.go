// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ajroetker/go-lumahist/hist"
)

// ErrNoSize is returned when neither flags nor the config file name a
// bitmap size.
var ErrNoSize = errors.New("bitmap size was not set")

// Config is the sweep configuration, read from a TOML file and then
// overridden by command-line flags.
//
//	sizes = [1000, 1000000]
//	nthreads = 4
//	repeat = 3
//	strategies = ["sequential", "atomic"]
//	print_histogram = false
//
//	[families]
//	locking = "direct"
type Config struct {
	Sizes          []int             `toml:"sizes"`
	NThreads       int               `toml:"nthreads"`
	Repeat         int               `toml:"repeat"`
	Strategies     []string          `toml:"strategies"`
	Families       map[string]string `toml:"families"`
	PrintHistogram bool              `toml:"print_histogram"`
	Raw            bool              `toml:"raw"`
}

// LoadConfig decodes the TOML file at path.
func LoadConfig(path string) (*Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	return &c, nil
}

// Validate checks the configuration without running anything.
func (c *Config) Validate() error {
	if len(c.Sizes) == 0 {
		return ErrNoSize
	}
	for _, n := range c.Sizes {
		if n <= 0 {
			return fmt.Errorf("bitmap size must be positive, got %d", n)
		}
	}
	if c.NThreads < 0 {
		return fmt.Errorf("nthreads must not be negative, got %d", c.NThreads)
	}
	if c.Repeat < 0 {
		return fmt.Errorf("repeat must not be negative, got %d", c.Repeat)
	}
	if _, err := c.Kinds(); err != nil {
		return err
	}
	if _, err := c.FamilyOverrides(); err != nil {
		return err
	}
	return nil
}

// Kinds returns the strategies to run. An empty list means every
// available strategy; naming an unavailable one is an error.
func (c *Config) Kinds() ([]hist.Kind, error) {
	if len(c.Strategies) == 0 {
		return hist.Available(), nil
	}
	kinds := make([]hist.Kind, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		k, err := hist.ParseKind(s)
		if err != nil {
			return nil, err
		}
		if !hist.Supported(k) {
			return nil, fmt.Errorf("%w: %s", hist.ErrUnsupported, k)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// FamilyOverrides parses the families table.
func (c *Config) FamilyOverrides() (map[hist.Kind]hist.Family, error) {
	out := make(map[hist.Kind]hist.Family, len(c.Families))
	for ks, fs := range c.Families {
		k, err := hist.ParseKind(ks)
		if err != nil {
			return nil, err
		}
		f, err := hist.ParseFamily(fs)
		if err != nil {
			return nil, err
		}
		out[k] = f
	}
	return out, nil
}

// parseFamilyFlag parses a "kind=family" flag value into c.Families.
func (c *Config) parseFamilyFlag(v string) error {
	ks, fs, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("family %q: want kind=family", v)
	}
	if c.Families == nil {
		c.Families = make(map[string]string)
	}
	c.Families[strings.TrimSpace(ks)] = strings.TrimSpace(fs)
	return nil
}
