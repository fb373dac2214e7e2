package config

// PipelineKind selects how decksh source is turned into slides
type PipelineKind string

const (
	PipelineInProcess PipelineKind = "inprocess"
	PipelineNative    PipelineKind = "native"
	PipelineWazero    PipelineKind = "wazero"
)

// StoreBackend selects where presenter data is kept
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreFile   StoreBackend = "file"
	StoreSQLite StoreBackend = "sqlite"
)

// Config is the deckshow configuration, corresponding to deckshow.yml
type Config struct {
	Deck      string       `yaml:"deck" koanf:"deck"`
	DecksDir  string       `yaml:"decks_dir" koanf:"decks_dir"`
	RemoteURL string       `yaml:"remote_url" koanf:"remote_url"`
	Pipeline  PipelineKind `yaml:"pipeline" koanf:"pipeline"`
	BinDir    string       `yaml:"bin_dir" koanf:"bin_dir"`
	WasmPath  string       `yaml:"wasm_path" koanf:"wasm_path"`
	Width     int          `yaml:"width" koanf:"width"`
	Height    int          `yaml:"height" koanf:"height"`

	Store StoreConfig `yaml:"store" koanf:"store"`

	TimerMinutes   int     `yaml:"timer_minutes" koanf:"timer_minutes"`
	SwipeThreshold float64 `yaml:"swipe_threshold" koanf:"swipe_threshold"`
	// IdleHide is the chrome hide delay in presentation mode, in seconds
	IdleHide int `yaml:"idle_hide" koanf:"idle_hide"`
	// Sections maps section names to 1-based slide numbers
	Sections map[string]int `yaml:"sections,omitempty" koanf:"sections"`
	Theme    string         `yaml:"theme" koanf:"theme"`

	Server ServerConfig `yaml:"server" koanf:"server"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
}

// StoreConfig configures the KV backend
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend" koanf:"backend"`
	// Path is the directory (file) or database file (sqlite)
	Path   string `yaml:"path" koanf:"path"`
	Prefix string `yaml:"prefix" koanf:"prefix"`
}

// ServerConfig configures the HTTP host
type ServerConfig struct {
	Addr            string `yaml:"addr" koanf:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
}
