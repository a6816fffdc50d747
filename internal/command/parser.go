package command

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned when a quoted argument is never closed.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining tokens after the command. A double-quoted
	// token may contain spaces, e.g. "beef wellington".
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
// Returns ErrUnterminatedQuote when a double quote is left open.
func Parse(line string) (ParseResult, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}, nil
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}, nil
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	args, err := tokenize(rest)
	if err != nil {
		return ParseResult{}, err
	}
	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}, nil
}

// tokenize splits s on whitespace, keeping double-quoted runs together.
func tokenize(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		inToken bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && (r == ' ' || r == '\t'):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quoted {
		return nil, ErrUnterminatedQuote
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}
