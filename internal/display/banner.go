package display

import (
	"fmt"
	"os"

	"github.com/altavoz/altavoz/internal/logging"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if logging.Magenta != "" {
		fmt.Fprint(os.Stdout, "\033[1;95m")
	}
	fmt.Fprint(os.Stdout, `    _    _ _
   / \  | | |_ __ ___   _____ ____
  / _ \ | | __/ _`+"`"+` \ \ / / _ \_  /
 / ___ \| | || (_| |\ V / (_) / /
/_/   \_\_|\__\__,_| \_/ \___/___|
`)
	if logging.Magenta != "" {
		fmt.Fprintln(os.Stdout, logging.NC)
	}
}
