package pricing

import (
	"strings"
	"unicode"
)

// Normalize elimina todo lo que no sea alfanumérico y pasa a mayúsculas.
// "RTX 3080 (Ti)" → "RTX3080TI".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// bestMatch devuelve el índice del candidato que mejor casa con input, o -1.
//
// Orden de preferencia:
//  1. candidatos contenidos en el input: gana el más largo ("RTX3080TI" sobre "RTX3080")
//  2. si ninguno, candidatos que contienen el input: gana el más corto
//
// Empates: primero en la tabla.
func bestMatch(input string, candidates []string) int {
	if len(input) < minMatchLen {
		return -1
	}

	best, bestLen := -1, 0
	for i, c := range candidates {
		if c == "" || !strings.Contains(input, c) {
			continue
		}
		if len(c) > bestLen {
			best, bestLen = i, len(c)
		}
	}
	if best >= 0 {
		return best
	}

	for i, c := range candidates {
		if !strings.Contains(c, input) {
			continue
		}
		if best < 0 || len(c) < bestLen {
			best, bestLen = i, len(c)
		}
	}
	return best
}
