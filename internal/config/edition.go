package config

// EditionConfig holds overrides for walking one language edition of the
// encyclopedia. The first-link phenomenon is language-specific: each
// edition has its own target article name and its own link conventions.
type EditionConfig struct {
	// BaseURL overrides the edition's base URL, e.g.
	// "https://de.wikipedia.org".
	BaseURL string `yaml:"baseURL,omitempty"`

	// Target overrides the target article name, e.g. "Philosophie".
	Target string `yaml:"target,omitempty"`

	// RandomPage overrides the random-article endpoint. If empty it is
	// derived from the edition's base URL.
	RandomPage string `yaml:"randomPage,omitempty"`

	// MaxSteps overrides the per-walk step budget.
	// If zero, the global MaxSteps is used.
	MaxSteps int `yaml:"maxSteps,omitempty"`

	// SkipParenthetical overrides the parenthetical-link rule for this
	// edition. Nil leaves the global setting in place.
	SkipParenthetical *bool `yaml:"skipParenthetical,omitempty"`
}

// File represents the structure of the .wikiwalk configuration file.
type File struct {
	// Editions maps edition names (conventionally the host, e.g.
	// "de.wikipedia.org") to their overrides.
	Editions map[string]EditionConfig `yaml:"editions,omitempty"`

	// Defaults contains overrides applied to every edition unless the
	// edition-specific section overrides them again.
	Defaults EditionConfig `yaml:"defaults,omitempty"`
}

// GetEditionConfig returns the configuration for a named edition.
// It merges the edition-specific configuration over the file's defaults.
func (cf *File) GetEditionConfig(name string) EditionConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with edition-specific configuration if present
	if edition, ok := cf.Editions[name]; ok {
		if edition.BaseURL != "" {
			result.BaseURL = edition.BaseURL
		}
		if edition.Target != "" {
			result.Target = edition.Target
		}
		if edition.RandomPage != "" {
			result.RandomPage = edition.RandomPage
		}
		if edition.MaxSteps != 0 {
			result.MaxSteps = edition.MaxSteps
		}
		if edition.SkipParenthetical != nil {
			result.SkipParenthetical = edition.SkipParenthetical
		}
	}

	return result
}

// HasEdition reports whether the file defines the named edition.
func (cf *File) HasEdition(name string) bool {
	_, ok := cf.Editions[name]
	return ok
}

// ApplyEdition overlays an edition's overrides onto the configuration.
// Zero-valued overrides leave the corresponding setting unchanged.
func (c *Config) ApplyEdition(edition EditionConfig) {
	if edition.BaseURL != "" {
		c.BaseURL = edition.BaseURL
		// A new base invalidates a derived random page; an explicit
		// override below still wins.
		c.RandomPage = ""
	}
	if edition.Target != "" {
		c.TargetArticle = edition.Target
	}
	if edition.RandomPage != "" {
		c.RandomPage = edition.RandomPage
	}
	if edition.MaxSteps != 0 {
		c.MaxSteps = edition.MaxSteps
	}
	if edition.SkipParenthetical != nil {
		c.SkipParenthetical = *edition.SkipParenthetical
	}
}
