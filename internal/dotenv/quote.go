package dotenv

import "strings"

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// Quote renders v as a double-quoted dotenv value. Only backslash, double
// quote, newline and carriage return are escaped.
func Quote(v string) string {
	return `"` + quoteReplacer.Replace(v) + `"`
}

// Unquote reverses Quote for a value that Parse already stripped of its
// outer quotes. Unknown escapes are kept verbatim.
func Unquote(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c != '\\' || i == len(v)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch v[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(v[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(v[i])
		}
	}
	return b.String()
}

// Serialize renders pairs as KEY="value" lines in order.
func Serialize(pairs []Pair) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(Quote(p.Value))
		b.WriteByte('\n')
	}
	return b.String()
}
