package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"sf-data-move/internal/rollback"
)

// Config holds configuration for visual output
type Config struct {
	ColorEnabled    bool   `mapstructure:"color_enabled" yaml:"color_enabled"`
	Theme           string `mapstructure:"theme" yaml:"theme"`
	InteractiveMode bool   `mapstructure:"interactive" yaml:"interactive"`
	VerboseMode     bool   `mapstructure:"verbose" yaml:"verbose"`
	QuietMode       bool   `mapstructure:"quiet" yaml:"quiet"`

	Writer io.Writer `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns a default display configuration
func DefaultConfig() *Config {
	return &Config{
		ColorEnabled:    true,
		Theme:           "dark",
		InteractiveMode: true,
		Writer:          os.Stdout,
	}
}

// Validate validates the display configuration
func (c *Config) Validate() error {
	validThemes := []string{"dark", "light", "plain", "none"}
	valid := false
	for _, t := range validThemes {
		if c.Theme == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid theme '%s', must be one of: %s", c.Theme, strings.Join(validThemes, ", "))
	}

	if c.VerboseMode && c.QuietMode {
		return fmt.Errorf("verbose and quiet modes are mutually exclusive")
	}

	return nil
}

// SetDefaults fills in defaults for unspecified options
func (c *Config) SetDefaults() {
	if c.Theme == "" {
		c.Theme = "dark"
	}
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
}

// Service provides formatted terminal output for rollback planning
type Service struct {
	config *Config
	colors *ColorSystem
	writer io.Writer
}

// NewService creates a display service from the given configuration
func NewService(config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	config.SetDefaults()

	theme := GetThemeByName(config.Theme)
	return &Service{
		config: config,
		colors: NewColorSystem(theme, config.ColorEnabled && !config.QuietMode),
		writer: config.Writer,
	}
}

// PrintHeader prints a section header with an underline
func (s *Service) PrintHeader(title string) {
	if s.config.QuietMode {
		return
	}
	fmt.Fprintln(s.writer)
	fmt.Fprintln(s.writer, s.colors.Colorize(title, s.colors.Theme().Primary))
	fmt.Fprintln(s.writer, strings.Repeat("─", len(title)))
}

// Success prints a success message
func (s *Service) Success(message string) {
	if s.config.QuietMode {
		return
	}
	fmt.Fprintln(s.writer, s.colors.Sprintf(s.colors.Theme().Success, "✓ %s", message))
}

// Warning prints a warning message
func (s *Service) Warning(message string) {
	fmt.Fprintln(s.writer, s.colors.Sprintf(s.colors.Theme().Warning, "⚠ %s", message))
}

// Error prints an error message
func (s *Service) Error(message string) {
	fmt.Fprintln(s.writer, s.colors.Sprintf(s.colors.Theme().Error, "✗ %s", message))
}

// Info prints an informational message
func (s *Service) Info(message string) {
	if s.config.QuietMode {
		return
	}
	fmt.Fprintln(s.writer, s.colors.Sprintf(s.colors.Theme().Info, "ℹ %s", message))
}

// PrintTable prints a simple aligned table
func (s *Service) PrintTable(headers []string, rows [][]string) {
	if s.config.QuietMode {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header strings.Builder
	for i, h := range headers {
		header.WriteString(fmt.Sprintf("%-*s  ", widths[i], h))
	}
	fmt.Fprintln(s.writer, s.colors.Colorize(strings.TrimRight(header.String(), " "), s.colors.Theme().Highlight))

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	fmt.Fprintln(s.writer, strings.Repeat("─", total-2))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				line.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
			}
		}
		fmt.Fprintln(s.writer, strings.TrimRight(line.String(), " "))
	}
}

// RenderPlan prints a rollback plan summary with per-object tiers
func (s *Service) RenderPlan(plan *rollback.Config) {
	if s.config.QuietMode {
		return
	}

	s.PrintHeader("Rollback Plan")
	fmt.Fprintf(s.writer, "Backup directory: %s\n", plan.BackupDir)
	if plan.Mode != "" {
		fmt.Fprintf(s.writer, "Mode: %s", plan.Mode)
		if plan.PhaseNumber > 0 {
			fmt.Fprintf(s.writer, " (phase %d)", plan.PhaseNumber)
		}
		fmt.Fprintln(s.writer)
	}
	fmt.Fprintf(s.writer, "Source org: %s\n", plan.SourceOrg.Label())
	fmt.Fprintf(s.writer, "Target org: %s\n", plan.TargetOrg.Label())
	fmt.Fprintln(s.writer)

	if len(plan.Objects) == 0 {
		s.Warning("No objects are eligible for rollback.")
		return
	}

	headers := []string{"OBJECT", "ORIGINAL", "ROLLBACK", "TIER", "QUERY"}
	rows := make([][]string, 0, len(plan.Objects))
	for _, obj := range plan.Objects {
		tier := string(obj.ConfidenceTier)
		if obj.ConfidenceTier.Risky() {
			tier = s.colors.Colorize(tier, s.colors.Theme().Warning)
		}
		rows = append(rows, []string{
			obj.ObjectName,
			string(obj.OriginalOperation),
			string(obj.RollbackOperation),
			tier,
			truncate(obj.Query, 60),
		})
	}
	s.PrintTable(headers, rows)

	s.RenderWarnings(plan.Warnings)
}

// RenderWarnings prints accumulated plan warnings
func (s *Service) RenderWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(s.writer)
	for _, w := range warnings {
		s.Warning(w)
	}
}

// IsInteractive reports whether confirmation prompts may be shown
func (s *Service) IsInteractive() bool {
	return s.config.InteractiveMode && !s.config.QuietMode
}

// IsVerbose reports whether verbose output is enabled
func (s *Service) IsVerbose() bool {
	return s.config.VerboseMode
}

// Writer returns the configured output writer
func (s *Service) Writer() io.Writer {
	return s.writer
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}
