package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"tasktide/internal/domain/entity"
)

const (
	defaultConfigFileName = "config.yml"
	defaultConfigDirName  = ".config/tasktide"
	defaultDataDirName    = ".local/share/tasktide"
	defaultDatabaseName   = "tasktide.db"
)

// Config holds application configuration
type Config struct {
	LogLevel    string            `yaml:"log_level" toml:"log_level" env:"TASKTIDE_LOG_LEVEL" env-upd:""`
	Storage     StorageConfig     `yaml:"storage" toml:"storage"`
	Daemon      DaemonConfig      `yaml:"daemon" toml:"daemon"`
	Web         WebConfig         `yaml:"web" toml:"web"`
	Board       BoardConfig       `yaml:"board" toml:"board"`
	TUI         TUIConfig         `yaml:"tui" toml:"tui"`
	Keybindings KeybindingsConfig `yaml:"keybindings" toml:"keybindings"`
}

// StorageConfig holds data service configuration
type StorageConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string `yaml:"driver" toml:"driver" env:"TASKTIDE_DB_DRIVER" env-upd:""`
	DSN    string `yaml:"dsn" toml:"dsn" env:"TASKTIDE_DB_DSN" env-upd:""`
}

// DaemonConfig holds daemon-related configuration
type DaemonConfig struct {
	SocketDir  string `yaml:"socket_dir" toml:"socket_dir"`
	SocketName string `yaml:"socket_name" toml:"socket_name"`
}

// WebConfig holds the HTTP API configuration
type WebConfig struct {
	Enabled        bool     `yaml:"enabled" toml:"enabled"`
	ListenAddr     string   `yaml:"listen_addr" toml:"listen_addr" env:"TASKTIDE_WEB_ADDR" env-upd:""`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
	JWTSecret      string   `yaml:"jwt_secret" toml:"jwt_secret" env:"TASKTIDE_JWT_SECRET" env-upd:""`
	RequestTimeout string   `yaml:"request_timeout" toml:"request_timeout"`
}

// BoardConfig holds board engine configuration
type BoardConfig struct {
	UserID           string          `yaml:"user_id" toml:"user_id" env:"TASKTIDE_USER_ID" env-upd:""`
	ActiveProject    int64           `yaml:"active_project,omitempty" toml:"active_project,omitempty"`
	DialogDebounceMS int             `yaml:"dialog_debounce_ms" toml:"dialog_debounce_ms"`
	Columns          []entity.Column `yaml:"columns" toml:"columns"`
}

// TUIConfig holds TUI styling configuration
type TUIConfig struct {
	Styles StylesConfig `yaml:"styles" toml:"styles"`
}

// StylesConfig holds color and styling configuration
type StylesConfig struct {
	Column         ColumnStyle   `yaml:"column" toml:"column"`
	FocusedColumn  ColumnStyle   `yaml:"focused_column" toml:"focused_column"`
	ColumnTitle    TextStyle     `yaml:"column_title" toml:"column_title"`
	TaskCard       TaskCardStyle `yaml:"task_card" toml:"task_card"`
	SelectedCard   TaskCardStyle `yaml:"selected_task_card" toml:"selected_task_card"`
	BlockedCard    TaskCardStyle `yaml:"blocked_task_card" toml:"blocked_task_card"`
	Help           TextStyle     `yaml:"help" toml:"help"`
	Notice         TextStyle     `yaml:"notice" toml:"notice"`
	ErrorNotice    TextStyle     `yaml:"error_notice" toml:"error_notice"`
	DueDateUrgency DueDateColors `yaml:"due_date_urgency" toml:"due_date_urgency"`
}

// ColumnStyle represents column styling
type ColumnStyle struct {
	PaddingVertical   int    `yaml:"padding_vertical" toml:"padding_vertical"`
	PaddingHorizontal int    `yaml:"padding_horizontal" toml:"padding_horizontal"`
	BorderStyle       string `yaml:"border_style" toml:"border_style"`
	BorderColor       string `yaml:"border_color" toml:"border_color"`
}

// TextStyle represents text styling
type TextStyle struct {
	Foreground        string `yaml:"foreground,omitempty" toml:"foreground,omitempty"`
	Background        string `yaml:"background,omitempty" toml:"background,omitempty"`
	Bold              bool   `yaml:"bold,omitempty" toml:"bold,omitempty"`
	Italic            bool   `yaml:"italic,omitempty" toml:"italic,omitempty"`
	PaddingVertical   int    `yaml:"padding_vertical,omitempty" toml:"padding_vertical,omitempty"`
	PaddingHorizontal int    `yaml:"padding_horizontal,omitempty" toml:"padding_horizontal,omitempty"`
	Align             string `yaml:"align,omitempty" toml:"align,omitempty"`
}

// TaskCardStyle represents task card border styling
type TaskCardStyle struct {
	BorderColor string `yaml:"border_color" toml:"border_color"`
}

// DueDateColors holds colors for the due date urgency levels
type DueDateColors struct {
	Overdue string `yaml:"overdue" toml:"overdue"`
	DueSoon string `yaml:"due_soon" toml:"due_soon"`
	Normal  string `yaml:"normal" toml:"normal"`
	Done    string `yaml:"done" toml:"done"`
}

// KeybindingsConfig holds keybinding configuration
type KeybindingsConfig struct {
	Up            []string `yaml:"up" toml:"up"`
	Down          []string `yaml:"down" toml:"down"`
	Left          []string `yaml:"left" toml:"left"`
	Right         []string `yaml:"right" toml:"right"`
	MoveRight     []string `yaml:"move_right" toml:"move_right"`
	MoveLeft      []string `yaml:"move_left" toml:"move_left"`
	Add           []string `yaml:"add" toml:"add"`
	Edit          []string `yaml:"edit" toml:"edit"`
	Complete      []string `yaml:"complete" toml:"complete"`
	Delete        []string `yaml:"delete" toml:"delete"`
	Confirm       []string `yaml:"confirm" toml:"confirm"`
	Cancel        []string `yaml:"cancel" toml:"cancel"`
	NextProject   []string `yaml:"next_project" toml:"next_project"`
	ToggleDetails []string `yaml:"toggle_details" toml:"toggle_details"`
	Quit          []string `yaml:"quit" toml:"quit"`
}

// DialogDebounce returns the dialog close debounce window
func (c *Config) DialogDebounce() time.Duration {
	if c.Board.DialogDebounceMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Board.DialogDebounceMS) * time.Millisecond
}

// Columns returns the configured columns, falling back to the defaults
func (c *Config) Columns() []entity.Column {
	if len(c.Board.Columns) == 0 {
		return entity.DefaultColumns()
	}
	return c.Board.Columns
}

// WebRequestTimeout parses web.request_timeout, defaulting to 5s
func (c *Config) WebRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Web.RequestTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// SocketPath returns the daemon's unix socket path
func (c *Config) SocketPath() string {
	return filepath.Join(c.Daemon.SocketDir, c.Daemon.SocketName)
}

// Validate checks values that would make the services fail later
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Board.UserID) == "" {
		return fmt.Errorf("board.user_id must be set")
	}
	terminal := false
	for _, col := range c.Columns() {
		if col.IsTerminal() {
			terminal = true
		}
	}
	if !terminal {
		return fmt.Errorf("columns must include the terminal column id %d", entity.CompletedColumnID)
	}
	return nil
}

// Loader handles loading and saving configuration
type Loader struct {
	configPath string
}

// NewLoader creates a config loader for ~/.config/tasktide/config.yml
func NewLoader() (*Loader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, defaultConfigDirName)
	configPath := filepath.Join(configDir, defaultConfigFileName)

	return &Loader{
		configPath: configPath,
	}, nil
}

// NewLoaderFor creates a loader for an explicit config file. Files ending
// in .toml are read and written as TOML, anything else as YAML.
func NewLoaderFor(path string) *Loader {
	return &Loader{configPath: path}
}

// LoadFrom loads the config at path, or the default location when path is empty
func LoadFrom(path string) (*Config, *Loader, error) {
	var (
		loader *Loader
		err    error
	)
	if path == "" {
		loader, err = NewLoader()
		if err != nil {
			return nil, nil, err
		}
	} else {
		loader = NewLoaderFor(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

// Load loads the configuration, creating defaults if it doesn't exist.
// Environment variables override file values.
func (l *Loader) Load() (*Config, error) {
	// Check if config file exists
	if _, err := os.Stat(l.configPath); os.IsNotExist(err) {
		return l.createDefaultConfig()
	}

	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if l.isTOML() {
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cleanenv.UpdateEnv(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return config, nil
}

// Save persists the configuration to disk
func (l *Loader) Save(config *Config) error {
	configDir := filepath.Dir(l.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if l.isTOML() {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(l.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (l *Loader) GetConfigPath() string {
	return l.configPath
}

func (l *Loader) isTOML() bool {
	return strings.EqualFold(filepath.Ext(l.configPath), ".toml")
}

// createDefaultConfig creates and saves a default configuration
func (l *Loader) createDefaultConfig() (*Config, error) {
	config, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	if err := l.Save(config); err != nil {
		return nil, err
	}

	if err := cleanenv.UpdateEnv(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return config, nil
}

// DefaultConfig returns the configuration written on first run
func DefaultConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, defaultDataDirName)
	userID := os.Getenv("USER")
	if userID == "" {
		userID = "local"
	}

	return &Config{
		LogLevel: "INFO",
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(dataDir, defaultDatabaseName),
		},
		Daemon: DaemonConfig{
			SocketDir:  dataDir,
			SocketName: "tasktided.sock",
		},
		Web: WebConfig{
			Enabled:        false,
			ListenAddr:     "127.0.0.1:8740",
			AllowedOrigins: []string{"http://localhost:3000"},
			RequestTimeout: "5s",
		},
		Board: BoardConfig{
			UserID:           userID,
			DialogDebounceMS: 100,
			Columns:          entity.DefaultColumns(),
		},
		TUI: TUIConfig{
			Styles: StylesConfig{
				Column: ColumnStyle{
					PaddingVertical:   0,
					PaddingHorizontal: 1,
					BorderStyle:       "rounded",
					BorderColor:       "240",
				},
				FocusedColumn: ColumnStyle{
					PaddingVertical:   0,
					PaddingHorizontal: 1,
					BorderStyle:       "rounded",
					BorderColor:       "62",
				},
				ColumnTitle: TextStyle{
					Foreground: "99",
					Bold:       true,
					Align:      "center",
				},
				TaskCard:     TaskCardStyle{BorderColor: "#444444"},
				SelectedCard: TaskCardStyle{BorderColor: "#A8DADC"},
				BlockedCard:  TaskCardStyle{BorderColor: "#FF6B6B"},
				Help: TextStyle{
					Foreground:        "241",
					PaddingHorizontal: 1,
				},
				Notice: TextStyle{
					Foreground: "#95E1D3",
					Bold:       true,
				},
				ErrorNotice: TextStyle{
					Foreground: "#FF6B6B",
					Bold:       true,
				},
				DueDateUrgency: DueDateColors{
					Overdue: "#FF6B6B",
					DueSoon: "#FFE66D",
					Normal:  "#999999",
					Done:    "#95E1D3",
				},
			},
		},
		Keybindings: KeybindingsConfig{
			Up:            []string{"up", "k"},
			Down:          []string{"down", "j"},
			Left:          []string{"left", "h"},
			Right:         []string{"right", "l"},
			MoveRight:     []string{"m", "L"},
			MoveLeft:      []string{"M", "H"},
			Add:           []string{"a"},
			Edit:          []string{"e"},
			Complete:      []string{"c", " "},
			Delete:        []string{"d"},
			Confirm:       []string{"enter", "y"},
			Cancel:        []string{"esc", "n"},
			NextProject:   []string{"p", "tab"},
			ToggleDetails: []string{"?"},
			Quit:          []string{"q", "ctrl+c"},
		},
	}, nil
}
