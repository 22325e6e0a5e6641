package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// readInput reads the file at path, or env.in when path is "" or "-".
func (env *runEnv) readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(env.in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readClipboardInput() (string, error) {
	content, err := readClipboard()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("clipboard is empty")
	}
	return content, nil
}
