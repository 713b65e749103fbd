package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	in  = bufio.NewReader(os.Stdin)
	out io.Writer = os.Stdout

	// stdinFD is the descriptor checked for a terminal before hiding input
	stdinFD = int(os.Stdin.Fd())
)

// SetIO replaces stdin and stdout for prompts and returns a restore func.
// Password prompts read plain lines while redirected.
func SetIO(r io.Reader, w io.Writer) (restore func()) {
	prevIn, prevOut, prevFD := in, out, stdinFD
	in = bufio.NewReader(r)
	out = w
	stdinFD = -1
	return func() { in, out, stdinFD = prevIn, prevOut, prevFD }
}

func readLine() (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptStringDefault is PromptString with a value used for empty input
func PromptStringDefault(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s[%s] ", label, def)
	}
	s, err := PromptString(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// PromptPassword prompts user for a password (hidden input)
func PromptPassword(label string) (string, error) {
	fmt.Fprint(out, label)

	if stdinFD < 0 || !term.IsTerminal(stdinFD) {
		return readLine()
	}

	bytepw, err := term.ReadPassword(stdinFD)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(out) // New line after password input

	return string(bytepw), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	fmt.Fprint(out, label+" (y/n) ")
	line, err := readLine()
	if err != nil {
		return false, err
	}

	response := strings.TrimSpace(strings.ToLower(line))
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options
func PromptSelect(label string, options []string) (int, error) {
	fmt.Fprintln(out, label)
	for i, opt := range options {
		fmt.Fprintf(out, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(out, "Select option: ")
	line, err := readLine()
	if err != nil {
		return -1, err
	}

	var selection int
	if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &selection); err != nil {
		return -1, err
	}

	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}

	return selection - 1, nil
}

// PromptMultilineString reads lines until an empty line, EOF or maxLines.
// Post bodies are entered this way.
func PromptMultilineString(label string, maxLines int) (string, error) {
	fmt.Fprintf(out, "%s (finish with an empty line):\n", label)

	var lines []string
	for i := 0; i < maxLines; i++ {
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		lines = append(lines, trimmed)
		if err == io.EOF {
			break
		}
	}

	return strings.Join(lines, "\n"), nil
}
