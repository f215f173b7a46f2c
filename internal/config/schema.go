package config

// Config is the top-level booklets configuration. It is loaded once at
// startup and passed explicitly to everything that needs it.
type Config struct {
	CatalogPath string         `mapstructure:"catalog_path" yaml:"catalog_path,omitempty"`
	CacheDir    string         `mapstructure:"cache_dir" yaml:"cache_dir"`
	Preview     PreviewConfig  `mapstructure:"preview" yaml:"preview"`
	Download    DownloadConfig `mapstructure:"download" yaml:"download"`
	Wiki        WikiConfig     `mapstructure:"wiki" yaml:"wiki"`
}

// PreviewConfig sets the fixed preview box. Width and Height are in
// device-independent units; Scale converts them to pixels.
type PreviewConfig struct {
	Width   int     `mapstructure:"width" yaml:"width"`
	Height  int     `mapstructure:"height" yaml:"height"`
	Scale   float64 `mapstructure:"scale" yaml:"scale"`
	Command string  `mapstructure:"command" yaml:"command,omitempty"` // pdftoppm binary
}

// DownloadConfig holds transfer settings.
type DownloadConfig struct {
	UserAgent   string `mapstructure:"user_agent" yaml:"user_agent"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
}

// WikiConfig holds encyclopedia lookup settings.
type WikiConfig struct {
	APIBase           string  `mapstructure:"api_base" yaml:"api_base"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// PixelSize returns the preview bitmap size in pixels.
func (p PreviewConfig) PixelSize() (int, int) {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	return int(float64(p.Width)*scale + 0.5), int(float64(p.Height)*scale + 0.5)
}

// EffectiveConcurrency returns the bulk download fan-out, at least 1.
func (d DownloadConfig) EffectiveConcurrency() int {
	if d.Concurrency < 1 {
		return 1
	}
	return d.Concurrency
}
