package display

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"sf-data-move/internal/rollback"
)

// ConfirmationDialog prompts the operator before a risky action proceeds
type ConfirmationDialog struct {
	Title          string
	Message        string
	WarningMessage string
	Details        []string

	colors *ColorSystem
	writer io.Writer
	reader *bufio.Reader
}

// ConfirmationResult is the outcome of a confirmation dialog
type ConfirmationResult struct {
	Confirmed bool
	Cancelled bool
}

// NewConfirmationDialog creates a confirmation dialog writing to the
// service's output and reading from stdin
func (s *Service) NewConfirmationDialog() *ConfirmationDialog {
	return &ConfirmationDialog{
		colors: s.colors,
		writer: s.writer,
		reader: bufio.NewReader(os.Stdin),
	}
}

// SetTitle sets the dialog title
func (cd *ConfirmationDialog) SetTitle(title string) *ConfirmationDialog {
	cd.Title = title
	return cd
}

// SetMessage sets the main message
func (cd *ConfirmationDialog) SetMessage(message string) *ConfirmationDialog {
	cd.Message = message
	return cd
}

// SetWarning adds a warning line to the dialog
func (cd *ConfirmationDialog) SetWarning(message string) *ConfirmationDialog {
	cd.WarningMessage = message
	return cd
}

// AddDetails adds detail lines shown on request
func (cd *ConfirmationDialog) AddDetails(details ...string) *ConfirmationDialog {
	cd.Details = append(cd.Details, details...)
	return cd
}

// Show displays the dialog and blocks for an answer. Declining is the
// default; only an explicit yes confirms.
func (cd *ConfirmationDialog) Show() (*ConfirmationResult, error) {
	for {
		cd.render()

		input, err := cd.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(input)) {
		case "y", "yes":
			return &ConfirmationResult{Confirmed: true}, nil
		case "", "n", "no":
			return &ConfirmationResult{Cancelled: true}, nil
		case "d", "details":
			if len(cd.Details) > 0 {
				cd.showDetails()
				continue
			}
		}

		fmt.Fprintln(cd.writer, cd.colors.Colorize("Invalid input. Please try again.", cd.colors.Theme().Error))
		fmt.Fprintln(cd.writer)
	}
}

func (cd *ConfirmationDialog) render() {
	fmt.Fprintln(cd.writer)

	if cd.Title != "" {
		fmt.Fprintln(cd.writer, cd.colors.Colorize(cd.Title, cd.colors.Theme().Primary))
		fmt.Fprintln(cd.writer, strings.Repeat("─", len(cd.Title)))
		fmt.Fprintln(cd.writer)
	}

	if cd.WarningMessage != "" {
		fmt.Fprintln(cd.writer, cd.colors.Sprintf(cd.colors.Theme().Warning, "⚠ %s", cd.WarningMessage))
		fmt.Fprintln(cd.writer)
	}

	if cd.Message != "" {
		fmt.Fprintln(cd.writer, cd.Message)
		fmt.Fprintln(cd.writer)
	}

	prompt := "Proceed? [y/N"
	if len(cd.Details) > 0 {
		prompt += "/d"
	}
	prompt += "]: "
	fmt.Fprint(cd.writer, cd.colors.Colorize(prompt, cd.colors.Theme().Primary))
}

func (cd *ConfirmationDialog) showDetails() {
	fmt.Fprintln(cd.writer)
	fmt.Fprintln(cd.writer, cd.colors.Colorize("Detailed Information", cd.colors.Theme().Info))
	fmt.Fprintln(cd.writer, strings.Repeat("─", 30))
	for i, detail := range cd.Details {
		fmt.Fprintf(cd.writer, "%d. %s\n", i+1, detail)
	}
	fmt.Fprintln(cd.writer, strings.Repeat("─", 30))
	fmt.Fprintln(cd.writer)
}

// ConfirmRiskyPlan prompts before a plan containing low-confidence
// queries is written. Non-interactive sessions always decline.
func (s *Service) ConfirmRiskyPlan(plan *rollback.Config) (bool, error) {
	risky := plan.RiskyObjects()
	if len(risky) == 0 {
		return true, nil
	}

	if !s.IsInteractive() {
		return false, fmt.Errorf("plan contains %d low-confidence object(s) and the session is not interactive; re-run with --force to accept them", len(risky))
	}

	details := make([]string, 0, len(risky))
	for _, obj := range risky {
		details = append(details, fmt.Sprintf("%s: %s (%s)", obj.ObjectName, obj.ConfidenceTier, truncate(obj.Query, 80)))
	}

	result, err := s.NewConfirmationDialog().
		SetTitle("Low-Confidence Rollback Queries").
		SetWarning(fmt.Sprintf("%d object(s) use queries that may match more rows than the original run touched.", len(risky))).
		SetMessage("Review the queries above before accepting this plan. Executing a full-object scan can delete unrelated data.").
		AddDetails(details...).
		Show()
	if err != nil {
		return false, err
	}

	return result.Confirmed, nil
}
