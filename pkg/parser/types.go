// Package parser provides pluggable log line parsing.
//
// A LineParser knows one log format. The locator and the aggregator only see
// the interface, so new formats are added by implementing LineParser and
// registering it, never by changing the consumers.
package parser

import "strings"

// maxTokens is the expected upper bound of tokens on a line, used to size
// token slices up front.
const maxTokens = 30

// Tokenize splits line on ASCII spaces. Consecutive spaces produce empty
// tokens and a single trailing empty token is dropped, so that "a b " and
// "a b" both tokenize to [a b]. A trailing carriage return is removed.
func Tokenize(line string) []string {
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return nil
	}
	tokens := make([]string, 0, maxTokens)
	for {
		i := strings.IndexByte(line, ' ')
		if i < 0 {
			return append(tokens, line)
		}
		tokens = append(tokens, line[:i])
		line = line[i+1:]
		if line == "" {
			return tokens
		}
	}
}
