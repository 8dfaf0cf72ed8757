// Package editor composes comment bodies in the user's $EDITOR.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// EnvEditor prepares an external editor command using $VISUAL or $EDITOR
// (fallback: "vi"). Callers run the command through tea.ExecProcess so the
// terminal is released while the editor owns it.
type EnvEditor struct{}

func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const instructionEnd = "-->"

func instructions(subject string) string {
	var b strings.Builder
	b.WriteString("<!--\n")
	if subject != "" {
		fmt.Fprintf(&b, "Commenting on %s\n\n", subject)
	}
	b.WriteString("Write your comment below. Markdown is supported.\n")
	b.WriteString("Save and exit to post. An empty file cancels.\n")
	b.WriteString(instructionEnd + "\n\n")
	return b.String()
}

// Cmd writes content under an instruction header to a temp file and returns
// the editor command for it together with the file path.
func (e *EnvEditor) Cmd(content, subject string) (*exec.Cmd, string, error) {
	editorCmd := os.Getenv("VISUAL")
	if editorCmd == "" {
		editorCmd = os.Getenv("EDITOR")
	}
	fields := strings.Fields(editorCmd)
	if len(fields) == 0 {
		fields = []string{"vi"}
	}

	tmpFile, err := os.CreateTemp("", "issuefeed-comment-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(instructions(subject) + content); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	args := append(fields[1:], tmpPath)
	return exec.Command(fields[0], args...), tmpPath, nil
}

// ReadContent returns the edited body without the instruction header and
// removes the temp file.
func (e *EnvEditor) ReadContent(path string) (string, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if strings.HasPrefix(strings.TrimSpace(content), "<!--") {
		if idx := strings.Index(content, instructionEnd); idx != -1 {
			content = content[idx+len(instructionEnd):]
		}
	}
	return strings.TrimSpace(content), nil
}
