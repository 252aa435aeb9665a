// ABOUTME: Cobra command for interactive embedding endpoint setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate the endpoint, model, and key.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/sectiondiff/internal/config"
	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the embedding endpoint",
	Long:  "Interactive wizard to configure and test an OpenAI-compatible embedding endpoint.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.APIKey,
	)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	endpoint, modelID, apiKey := final.Result()
	cfg.Embedding.Backend = embeddings.BackendHTTP
	cfg.Embedding.BaseURL = endpoint
	cfg.Embedding.Model = modelID
	cfg.Embedding.APIKey = apiKey
	cfg.Embedding.Dimension = final.Dimension()

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
