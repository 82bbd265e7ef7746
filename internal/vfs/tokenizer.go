package vfs

// Tokenize splits a command line into arguments. Whitespace separates
// tokens; matching single or double quotes suppress splitting and are
// stripped from the output. There is no escape mechanism beyond quote
// matching, and an unterminated quote runs to the end of the line.
func Tokenize(line string) []string {
	var tokens []string
	var current []rune
	inQuotes := false
	var quote rune

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if !inQuotes {
				inQuotes = true
				quote = ch
			} else if ch == quote {
				inQuotes = false
				quote = 0
			} else {
				current = append(current, ch)
			}
		case ch == ' ' && !inQuotes:
			if len(current) > 0 {
				tokens = append(tokens, string(current))
				current = current[:0]
			}
		default:
			current = append(current, ch)
		}
	}

	if len(current) > 0 {
		tokens = append(tokens, string(current))
	}

	return tokens
}
