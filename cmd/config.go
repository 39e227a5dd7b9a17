package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/recode/internal/config"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recode"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage recode configuration.

Running bare 'recode config' is the same as 'recode config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# recode configuration
# See: recode config show (for effective values and sources)

# State directory for the serve PID and log files (default: ~/.config/recode)
# state_dir: {{ .StateDir }}

completion:
  # mistral (Codestral), openai, or anthropic
  provider: "{{ .Provider }}"

  # API key. Prefer RECODE_COMPLETION_API_KEY or the provider's own
  # variable (MISTRAL_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY).
  # api_key: ""

  # Endpoint and model; empty means the provider default.
  base_url: "{{ .BaseURL }}"
  model: "{{ .Model }}"

  max_tokens: {{ .MaxTokens }}
  temperature: {{ .Temperature }}
  timeout: {{ .Timeout }}

rewrite:
  # Language named in the prompt
  language: "{{ .Language }}"

templates:
  # Optional YAML file with extra guideline templates
  file: "{{ .TemplatesFile }}"

output:
  # Name offered for downloaded improved code
  filename: "{{ .OutputFilename }}"

session:
  # Idle time before a web session is discarded
  ttl: {{ .SessionTTL }}

# Port for recode serve
port: {{ .Port }}

log:
  level: {{ .LogLevel }}
  format: {{ .LogFormat }}
`

type configTemplateData struct {
	StateDir       string
	Provider       string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	Timeout        string
	Language       string
	TemplatesFile  string
	OutputFilename string
	SessionTTL     string
	Port           int
	LogLevel       string
	LogFormat      string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:       viper.GetString("state_dir"),
		Provider:       viper.GetString("completion.provider"),
		BaseURL:        viper.GetString("completion.base_url"),
		Model:          viper.GetString("completion.model"),
		MaxTokens:      viper.GetInt("completion.max_tokens"),
		Temperature:    viper.GetFloat64("completion.temperature"),
		Timeout:        viper.GetDuration("completion.timeout").String(),
		Language:       viper.GetString("rewrite.language"),
		TemplatesFile:  viper.GetString("templates.file"),
		OutputFilename: viper.GetString("output.filename"),
		SessionTTL:     viper.GetDuration("session.ttl").String(),
		Port:           viper.GetInt("port"),
		LogLevel:       viper.GetString("log.level"),
		LogFormat:      viper.GetString("log.format"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "state_dir", EnvVar: "RECODE_STATE_DIR"},
	{Key: "completion.provider", EnvVar: "RECODE_COMPLETION_PROVIDER"},
	{Key: "completion.base_url", EnvVar: "RECODE_COMPLETION_BASE_URL"},
	{Key: "completion.api_key", EnvVar: "RECODE_COMPLETION_API_KEY"},
	{Key: "completion.model", EnvVar: "RECODE_COMPLETION_MODEL"},
	{Key: "completion.max_tokens", EnvVar: "RECODE_COMPLETION_MAX_TOKENS"},
	{Key: "completion.temperature", EnvVar: "RECODE_COMPLETION_TEMPERATURE"},
	{Key: "completion.timeout", EnvVar: "RECODE_COMPLETION_TIMEOUT"},
	{Key: "rewrite.language", EnvVar: "RECODE_REWRITE_LANGUAGE"},
	{Key: "templates.file", EnvVar: "RECODE_TEMPLATES_FILE"},
	{Key: "output.filename", EnvVar: "RECODE_OUTPUT_FILENAME"},
	{Key: "session.ttl", EnvVar: "RECODE_SESSION_TTL"},
	{Key: "port", EnvVar: "RECODE_PORT"},
	{Key: "log.level", EnvVar: "RECODE_LOG_LEVEL"},
	{Key: "log.format", EnvVar: "RECODE_LOG_FORMAT"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Key == "completion.api_key" {
			val = config.MaskedKey(viper.GetString(k.Key))
		}
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-24s %v  %s\n", k.Key, val, source)
	}

	// The effective provider settings, with provider defaults and key fallbacks applied.
	cfg, _ := loadConfig(false)
	fmt.Fprintln(ui.Out)
	ui.Info("Effective completion: %s %s (key %s)", cfg.Completion.Provider, cfg.Completion.Model, config.MaskedKey(cfg.Completion.APIKey))
	if err := cfg.Validate(); err != nil {
		ui.Warning("%v", err)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'recode config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
