package text

// extends reports whether r continues the token whose text left of the cursor
// is prefix. It is the transition table of the tokenizer: a false result ends
// the token (whitespace is then dropped, anything else starts a new token).
func extends(prefix []rune, r rune) bool {
	if len(prefix) == 0 {
		return classOf(r) != classSpace
	}
	class := classOf(r)
	switch CategoryOf(prefix[0]) {
	case Identifier:
		return class == classLetter || class == classDigit || class == classMark
	case String:
		return !closedString(prefix)
	case Operator:
		if r != '=' || len(prefix) != 1 {
			return false
		}
		switch prefix[0] {
		case '<', '>', '!':
			return true
		}
		return false
	case Number:
		if class == classDigit {
			return true
		}
		if r == '.' {
			for _, p := range prefix {
				if p == '.' {
					return false
				}
			}
			return true
		}
		return false
	case Intrinsic:
		return r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	case Symbol, Whitespace:
		return false
	}
	return class == classOther || class == classMark
}

// closedString reports whether prefix is a string token terminated by a quote
// matching its opener.
func closedString(prefix []rune) bool {
	return len(prefix) >= 2 && classOf(prefix[0]) == classQuote && prefix[len(prefix)-1] == prefix[0]
}

// IsQuoted reports whether s is wrapped in one matching pair of quotes.
func IsQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '"' || q == '\'') && s[len(s)-1] == q
}

// Unquote strips exactly one matching pair of quotes. Backslash escapes are
// not interpreted.
func Unquote(s string) string {
	if IsQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}
