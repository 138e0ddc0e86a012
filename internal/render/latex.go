package render

import (
	"regexp"
	"sort"
	"strings"
)

var (
	displayMath = regexp.MustCompile(`(?s)\$\$(.+?)\$\$|\\\[(.+?)\\\]`)
	inlineMath  = regexp.MustCompile(`\$([^$\n]+?)\$|\\\((.+?)\\\)`)
	fracPattern = regexp.MustCompile(`\\frac\s*\{([^{}]*)\}\s*\{([^{}]*)\}`)
	sqrtPattern = regexp.MustCompile(`\\sqrt\s*\{([^{}]*)\}`)
	supPattern  = regexp.MustCompile(`\^(\{[^{}]*\}|[0-9a-zA-Z+\-=()])`)
	subPattern  = regexp.MustCompile(`_(\{[^{}]*\}|[0-9a-zA-Z+\-=()])`)
	textPattern = regexp.MustCompile(`\\(?:text|mathrm|mathbf|mathit|operatorname)\s*\{([^{}]*)\}`)
	leftRight   = regexp.MustCompile(`\\(?:left|right)\s*`)
	unknownCmd  = regexp.MustCompile(`\\([a-zA-Z]+)`)
)

var latexSymbols = map[string]string{
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ", `\epsilon`: "ε", `\varepsilon`: "ε",
	`\zeta`: "ζ", `\eta`: "η", `\theta`: "θ", `\vartheta`: "ϑ", `\iota`: "ι", `\kappa`: "κ",
	`\lambda`: "λ", `\mu`: "μ", `\nu`: "ν", `\xi`: "ξ", `\pi`: "π", `\rho`: "ρ", `\sigma`: "σ",
	`\tau`: "τ", `\upsilon`: "υ", `\phi`: "φ", `\varphi`: "φ", `\chi`: "χ", `\psi`: "ψ", `\omega`: "ω",
	`\Gamma`: "Γ", `\Delta`: "Δ", `\Theta`: "Θ", `\Lambda`: "Λ", `\Xi`: "Ξ", `\Pi`: "Π",
	`\Sigma`: "Σ", `\Phi`: "Φ", `\Psi`: "Ψ", `\Omega`: "Ω",
	`\cdot`: "·", `\times`: "×", `\div`: "÷", `\pm`: "±", `\mp`: "∓",
	`\leq`: "≤", `\le`: "≤", `\geq`: "≥", `\ge`: "≥", `\neq`: "≠", `\ne`: "≠",
	`\approx`: "≈", `\equiv`: "≡", `\sim`: "∼", `\propto`: "∝",
	`\infty`: "∞", `\partial`: "∂", `\nabla`: "∇", `\sum`: "∑", `\prod`: "∏", `\int`: "∫", `\oint`: "∮",
	`\to`: "→", `\rightarrow`: "→", `\leftarrow`: "←", `\Rightarrow`: "⇒", `\Leftarrow`: "⇐",
	`\leftrightarrow`: "↔", `\Leftrightarrow`: "⇔", `\mapsto`: "↦",
	`\in`: "∈", `\notin`: "∉", `\subset`: "⊂", `\subseteq`: "⊆", `\cup`: "∪", `\cap`: "∩",
	`\emptyset`: "∅", `\forall`: "∀", `\exists`: "∃", `\neg`: "¬", `\land`: "∧", `\lor`: "∨",
	`\degree`: "°", `\circ`: "∘", `\angle`: "∠", `\perp`: "⊥", `\parallel`: "∥",
	`\ldots`: "…", `\cdots`: "⋯", `\dots`: "…", `\hbar`: "ħ",
	`\,`: " ", `\;`: " ", `\:`: " ", `\!`: "", `\quad`: " ", `\qquad`: "  ",
	`\\`: " ",
}

// latexKeys is latexSymbols' keys, longest first, so \leq wins over \le.
var latexKeys = func() []string {
	keys := make([]string, 0, len(latexSymbols))
	for k := range latexSymbols {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'o': 'ₒ', 'x': 'ₓ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'n': 'ₙ', 'm': 'ₘ', 't': 'ₜ',
}

// ReplaceMath rewrites $...$, $$...$$, \(...\) and \[...\] spans into
// Unicode approximations so they survive Markdown parsing and render with a
// plain TTF font. Display math becomes its own paragraph.
func ReplaceMath(markdown string) string {
	markdown = displayMath.ReplaceAllStringFunc(markdown, func(m string) string {
		sub := displayMath.FindStringSubmatch(m)
		body := firstGroup(sub)
		return "\n\n" + escapeMarkdown(LatexToUnicode(body)) + "\n\n"
	})
	return inlineMath.ReplaceAllStringFunc(markdown, func(m string) string {
		sub := inlineMath.FindStringSubmatch(m)
		return escapeMarkdown(LatexToUnicode(firstGroup(sub)))
	})
}

// LatexToUnicode converts a LaTeX math expression to readable Unicode.
func LatexToUnicode(expr string) string {
	out := strings.TrimSpace(expr)
	out = braceProtector.Replace(out)
	out = textPattern.ReplaceAllString(out, "$1")
	out = leftRight.ReplaceAllString(out, "")
	for i := 0; i < 3 && fracPattern.MatchString(out); i++ {
		out = fracPattern.ReplaceAllStringFunc(out, func(m string) string {
			sub := fracPattern.FindStringSubmatch(m)
			return group(sub[1]) + "/" + group(sub[2])
		})
	}
	out = sqrtPattern.ReplaceAllStringFunc(out, func(m string) string {
		sub := sqrtPattern.FindStringSubmatch(m)
		return "√" + group(sub[1])
	})
	for _, key := range latexKeys {
		out = replaceCommand(out, key, latexSymbols[key])
	}
	out = supPattern.ReplaceAllStringFunc(out, func(m string) string {
		return script(strings.Trim(m[1:], "{}"), superscripts, "^")
	})
	out = subPattern.ReplaceAllStringFunc(out, func(m string) string {
		return script(strings.Trim(m[1:], "{}"), subscripts, "_")
	})
	out = unknownCmd.ReplaceAllString(out, "$1")
	out = strings.NewReplacer("{", "", "}", "").Replace(out)
	out = braceRestorer.Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// replaceCommand substitutes a LaTeX command only when it is not the prefix
// of a longer command name (\in must not match \infty).
func replaceCommand(s, cmd, repl string) string {
	if !strings.Contains(s, cmd) {
		return s
	}
	last := cmd[len(cmd)-1]
	isWord := last >= 'a' && last <= 'z' || last >= 'A' && last <= 'Z'
	var b strings.Builder
	for {
		idx := strings.Index(s, cmd)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := idx + len(cmd)
		if isWord && end < len(s) && isLetter(s[end]) {
			b.WriteString(s[:end])
			s = s[end:]
			continue
		}
		b.WriteString(s[:idx])
		b.WriteString(repl)
		s = s[end:]
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func script(body string, table map[rune]rune, marker string) string {
	var b strings.Builder
	for _, r := range body {
		mapped, ok := table[r]
		if !ok {
			return marker + group(body)
		}
		b.WriteRune(mapped)
	}
	return b.String()
}

func group(s string) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= 1 || !strings.ContainsAny(s, "+-*/ ") {
		return s
	}
	return "(" + s + ")"
}

func firstGroup(sub []string) string {
	for _, g := range sub[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// Escaped braces are literal set braces; they are parked on control
// characters while grouping braces are stripped.
var (
	braceProtector = strings.NewReplacer(`\{`, "\x00", `\}`, "\x01")
	braceRestorer  = strings.NewReplacer("\x00", "{", "\x01", "}")
)

var markdownEscaper = strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `<`, `\<`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
