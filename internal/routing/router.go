package routing

import "strings"

// Rule maps a filename pattern to a destination subfolder.
type Rule struct {
	Pattern   string
	Subfolder string
}

// Rules holds the two ordered rule sets. Order is significant: the first
// matching rule wins, and prefix rules are always tried before keyword rules.
type Rules struct {
	Prefixes []Rule
	Keywords []Rule
}

// DefaultRules is the built-in mapping used when no rules file is configured.
func DefaultRules() Rules {
	return Rules{
		Prefixes: []Rule{
			{Pattern: "rca_", Subfolder: "EQUIPE"},
			{Pattern: "clientes_", Subfolder: "CLIENTES"},
			{Pattern: "fornecedores_", Subfolder: "FORNECEDOR"},
			{Pattern: "produtos_", Subfolder: "Produto linha"},
			{Pattern: "clientes_rca_", Subfolder: "CLI RCA"},
		},
		Keywords: []Rule{
			{Pattern: "cortes", Subfolder: "CORTE"},
			{Pattern: "vendas", Subfolder: "VENDAS"},
			{Pattern: "a_faturar", Subfolder: "AFATURAR"},
		},
	}
}

// Route returns the destination subfolder for filename. Prefixes are matched
// literally against the name as given; keywords are matched as substrings of
// the lowercased name, extension included. ok is false when nothing matched.
func (r Rules) Route(filename string) (subfolder string, ok bool) {
	for _, rule := range r.Prefixes {
		if strings.HasPrefix(filename, rule.Pattern) {
			return rule.Subfolder, true
		}
	}
	lower := strings.ToLower(filename)
	for _, rule := range r.Keywords {
		if strings.Contains(lower, rule.Pattern) {
			return rule.Subfolder, true
		}
	}
	return "", false
}

// Len is the total number of rules.
func (r Rules) Len() int { return len(r.Prefixes) + len(r.Keywords) }
