package config

import (
	"fmt"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/manifoldco/promptui"
)

// detectDeck returns the first decksh file below the working directory
func detectDeck() string {
	matches, _ := doublestar.FilepathGlob("**/*.dsh")
	if len(matches) > 0 {
		return matches[0]
	}
	return "deck.dsh"
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

// RunWizard asks for the main settings and saves them to path
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's set up deckshow.")
	fmt.Println()

	cfg := DefaultConfig()

	deckPrompt := promptui.Prompt{
		Label:   "Deck file",
		Default: detectDeck(),
	}
	deck, err := deckPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("deck file: %w", err)
	}
	cfg.Deck = deck

	pipelinePrompt := promptui.Select{
		Label: "Slide renderer",
		Items: []string{
			"inprocess: built-in SVG renderer",
			"native: ajstarks binaries in bin_dir (PDF and PNG export)",
			"wazero: sandboxed WASI build",
		},
	}
	idx, _, err := pipelinePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("renderer selection: %w", err)
	}
	cfg.Pipeline = []PipelineKind{PipelineInProcess, PipelineNative, PipelineWazero}[idx]

	storePrompt := promptui.Select{
		Label: "Where to keep bookmarks and notes",
		Items: []string{string(StoreSQLite), string(StoreFile), string(StoreMemory)},
	}
	_, backend, err := storePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	cfg.Store.Backend = StoreBackend(backend)
	if cfg.Store.Backend == StoreFile {
		cfg.Store.Path = ".deckshow"
	}

	timerPrompt := promptui.Prompt{
		Label:    "Timer minutes",
		Default:  strconv.Itoa(cfg.TimerMinutes),
		Validate: positiveInt,
	}
	minutes, err := timerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timer minutes: %w", err)
	}
	cfg.TimerMinutes, _ = strconv.Atoi(minutes)

	addrPrompt := promptui.Prompt{
		Label:   "Listen address",
		Default: cfg.Server.Addr,
	}
	addr, err := addrPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}
	cfg.Server.Addr = addr

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
