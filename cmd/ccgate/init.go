package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/ccgate/internal/config"
	"github.com/ludo-technologies/ccgate/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a ccgate configuration file",
		Long: `Generate a documented ccgate configuration file with sensible defaults.

By default, creates ccgate.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create ccgate.yaml in current directory
  ccgate init

  # Per-method gate on a nested report, threshold 5
  ccgate init --profile method --preset strict

  # Custom output path, overwrite if present
  ccgate init --config ci/ccgate.yaml --force

  # Interactive setup wizard
  ccgate init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.DefaultConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().String("profile", string(config.ProfileFileGate),
		"Gate profile: file or method")
	cmd.Flags().String("preset", string(config.StrictnessStandard),
		"Threshold preset: relaxed (15), standard (10) or strict (5)")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	profileName, _ := cmd.Flags().GetString("profile")
	presetName, _ := cmd.Flags().GetString("preset")
	interactive, _ := cmd.Flags().GetBool("interactive")

	profile := config.Profile(profileName)
	if _, ok := config.GetProfilePresets()[profile]; !ok {
		return fmt.Errorf("unknown profile '%s', must be one of: file, method", profileName)
	}
	strictness, err := config.ParseStrictness(presetName)
	if err != nil {
		return err
	}

	if interactive {
		profile, strictness, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(profile, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'ccgate check' in the directory holding report.json.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.Profile, config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("ccgate Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	profiles := []struct {
		Label       string
		Description string
		Value       config.Profile
	}{
		{"Per-file gate", "Flat report, fail on any file above the threshold", config.ProfileFileGate},
		{"Per-method gate", "Nested report, drill into failing files with lizard", config.ProfileMethodGate},
	}

	profileTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	profilePrompt := promptui.Select{
		Label:     "How should the gate decide?",
		Items:     profiles,
		Templates: profileTemplates,
	}

	profileIdx, _, err := profilePrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("profile selection cancelled: %w", err)
	}
	selectedProfile := profiles[profileIdx].Value

	fmt.Println()

	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Threshold 10", config.StrictnessStandard},
		{"Relaxed", "Threshold 15, for legacy code bases", config.StrictnessRelaxed},
		{"Strict", "Threshold 5", config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the gate be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selectedStrictness := strictnessLevels[strictnessIdx].Value

	fmt.Println()

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}

	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return selectedProfile, selectedStrictness, outputPath, nil
}
