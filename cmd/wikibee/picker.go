package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/patrickdeanbrown/wikibee/pkg/wiki"
)

// errCancelled is returned when the user quits the selection menu.
var errCancelled = errors.New("selection cancelled")

// pickSearchResult shows a numbered menu of search results and reads
// the user's choice. 'q' cancels.
func pickSearchResult(results []wiki.SearchResult, term string) (string, error) {
	fmt.Printf("\nFound %d results for %q:\n\n", len(results), term)
	for i, result := range results {
		fmt.Printf("%d. %s\n", i+1, result.Title)
		if desc := strings.TrimSpace(result.Description); desc != "" {
			fmt.Printf("   %s\n", desc)
		}
	}
	fmt.Println()

	rl, err := readline.New(fmt.Sprintf("Enter your choice (1-%d) or 'q' to quit: ", len(results)))
	if err != nil {
		return "", fmt.Errorf("opening prompt: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl-C / Ctrl-D behave like quitting.
			return "", errCancelled
		}

		choice, ok := parseChoice(line, len(results))
		if !ok {
			fmt.Printf("Please enter a number between 1 and %d, or 'q' to quit\n", len(results))
			continue
		}
		if choice == 0 {
			return "", errCancelled
		}

		selected := results[choice-1]
		fmt.Printf("Selected: %s\n", selected.Title)
		return selected.URL, nil
	}
}

// parseChoice interprets a menu answer: returns (0, true) for quit,
// (n, true) for a valid 1-based index, and ok=false otherwise.
func parseChoice(line string, max int) (int, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "q" {
		return 0, true
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}
