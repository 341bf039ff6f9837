package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidExpression is matched by every *ParseError via errors.Is.
var ErrInvalidExpression = errors.New("dice: invalid expression")

// MaxDiceCount is the largest N accepted in "NdM". Each die is a separate
// term, so larger counts are rejected before anything is allocated.
const MaxDiceCount = 10_000

// ParseError reports dice notation that could not be parsed.
type ParseError struct {
	Input  string // original input string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dice: cannot parse value %q: %s", e.Input, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidExpression) succeed.
func (e *ParseError) Unwrap() error { return ErrInvalidExpression }

// Parse parses dice notation into a Value.
// Supported forms: "3", "d6", "3d6", "2d6 + 1", "d3 + d3 + 2".
//
// Postcondition: Returns a Value or a *ParseError; malformed input is never coerced.
func Parse(expr string) (Value, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if isDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ParseError{Input: expr, Reason: err.Error()}
		}
		return Constant{N: n}, nil
	}

	if strings.Contains(s, "+") {
		parts := strings.Split(s, "+")
		terms := make([]Value, 0, len(parts))
		for _, p := range parts {
			v, err := Parse(p)
			if err != nil {
				return nil, &ParseError{Input: expr, Reason: fmt.Sprintf("bad term %q", strings.TrimSpace(p))}
			}
			terms = append(terms, v)
		}
		return Combined{Terms: terms}, nil
	}

	if strings.Contains(s, "d") {
		return parseDice(expr, s)
	}

	return nil, &ParseError{Input: expr, Reason: "expected digits, '+' or 'd'"}
}

func parseDice(raw, s string) (Value, error) {
	split := strings.Split(s, "d")
	if len(split) != 2 {
		return nil, &ParseError{Input: raw, Reason: "more than one 'd'"}
	}
	countStr, sidesStr := strings.TrimSpace(split[0]), strings.TrimSpace(split[1])

	if !isDigits(sidesStr) {
		return nil, &ParseError{Input: raw, Reason: "invalid die sides"}
	}
	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 1 {
		return nil, &ParseError{Input: raw, Reason: "invalid die sides"}
	}
	die := Random{Low: 1, High: sides}

	if countStr == "" {
		return die, nil
	}
	if !isDigits(countStr) {
		return nil, &ParseError{Input: raw, Reason: "invalid die count"}
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count > MaxDiceCount {
		return nil, &ParseError{Input: raw, Reason: "die count too large"}
	}

	terms := make([]Value, count)
	for i := range terms {
		terms[i] = die
	}
	return Combined{Terms: terms}, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
//
// Precondition: expr must be valid dice notation.
func MustParse(expr string) Value {
	v, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return v
}

// Increase adds one to the textual expression: a bare integer is incremented,
// the trailing addend of a sum is increased, anything else gets " + 1".
func Increase(expr string) string {
	s := strings.ToLower(strings.TrimSpace(expr))
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return strconv.Itoa(n + 1)
		}
		return expr
	}
	if head, tail, ok := splitLastAddend(s); ok {
		return head + " + " + Increase(tail)
	}
	return strings.TrimSpace(expr) + " + 1"
}

// Decrease subtracts one from the textual expression. A bare integer floors at
// 1, or at 0 when allowZero is set. A trailing "+ 1" is dropped; any other
// trailing addend is decreased in turn. Dice without a constant addend are
// returned unchanged.
func Decrease(expr string, allowZero bool) string {
	s := strings.ToLower(strings.TrimSpace(expr))
	if isDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return expr
		}
		if n < 2 {
			if allowZero {
				return "0"
			}
			return "1"
		}
		return strconv.Itoa(n - 1)
	}
	if head, tail, ok := splitLastAddend(s); ok {
		if tail == "1" {
			return head
		}
		return head + " + " + Decrease(tail, false)
	}
	return expr
}

// splitLastAddend splits "a + b + c" into "a + b" and "c".
func splitLastAddend(s string) (head, tail string, ok bool) {
	i := strings.LastIndex(s, "+")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
