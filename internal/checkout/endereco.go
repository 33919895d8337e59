package checkout

import (
	"regexp"
	"strings"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/upstream"
)

var (
	cepPattern    = regexp.MustCompile(`\b(\d{5})-?(\d{3})\b`)
	ufPattern     = regexp.MustCompile(`\b([A-Z]{2})\b`)
	numeroPattern = regexp.MustCompile(`^(.*?)[,\s]+(?:n[ºo°]?\s*)?(\d+[a-zA-Z]?)$`)
)

// DecomposeEndereco splits a free-text address into structured fields on a
// best-effort basis. The decomposition is lossy and non-reversible; anything
// it cannot place stays in Logradouro.
func DecomposeEndereco(raw, complemento string) upstream.Endereco {
	endereco := upstream.Endereco{Complemento: strings.TrimSpace(complemento)}

	text := strings.TrimSpace(raw)
	if text == "" {
		return endereco
	}

	if match := cepPattern.FindStringSubmatch(text); match != nil {
		endereco.CEP = match[1] + "-" + match[2]
		text = strings.TrimSpace(cepPattern.ReplaceAllString(text, ""))
	}

	parts := splitParts(text)
	if len(parts) == 0 {
		return endereco
	}

	endereco.Logradouro, endereco.Numero = splitNumero(parts[0])
	rest := parts[1:]
	if endereco.Numero == "" && len(rest) > 0 && isNumero(rest[0]) {
		endereco.Numero = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		endereco.Bairro = rest[0]
	}
	if len(rest) > 1 {
		cidade := rest[1]
		if match := ufPattern.FindStringSubmatch(cidade); match != nil && strings.HasSuffix(cidade, match[1]) {
			endereco.UF = match[1]
			cidade = strings.TrimSpace(strings.TrimSuffix(cidade, match[1]))
			cidade = strings.TrimRight(cidade, " -/")
		}
		endereco.Cidade = cidade
	}
	if endereco.UF == "" && len(rest) > 2 {
		if match := ufPattern.FindStringSubmatch(rest[2]); match != nil {
			endereco.UF = match[1]
		}
	}
	return endereco
}

func isNumero(part string) bool {
	if part == "" {
		return false
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func splitParts(text string) []string {
	var parts []string
	for _, segment := range strings.Split(text, ",") {
		for _, part := range strings.Split(segment, " - ") {
			trimmed := strings.Trim(strings.TrimSpace(part), "-,")
			if trimmed != "" {
				parts = append(parts, strings.TrimSpace(trimmed))
			}
		}
	}
	return parts
}

func splitNumero(first string) (logradouro, numero string) {
	if match := numeroPattern.FindStringSubmatch(strings.TrimSpace(first)); match != nil {
		return strings.TrimRight(strings.TrimSpace(match[1]), ","), match[2]
	}
	return strings.TrimSpace(first), ""
}
