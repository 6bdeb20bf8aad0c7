package reconciling

import (
	"strings"
)

// MatchKey é a tupla ordenada de strings usada como chave canônica de
// matching entre registros de custo e visitas. Duas chaves são iguais
// quando todos os componentes são iguais por comparação de string (nunca
// numérica: "007" e "7" são chaves diferentes).
type MatchKey struct {
	parts []string
}

// NewMatchKey monta uma chave a partir dos componentes na ordem dada.
func NewMatchKey(parts ...string) MatchKey {
	return MatchKey{parts: parts}
}

// IsZero indica uma chave vazia (visita/registro não atribuível).
func (k MatchKey) IsZero() bool {
	return len(k.parts) == 0
}

// Parts retorna os componentes da chave na ordem canônica.
func (k MatchKey) Parts() []string {
	return k.parts
}

// String serializa a chave para indexação e para a coluna platform_key do
// ledger. O separador não ocorre nos identificadores das plataformas.
func (k MatchKey) String() string {
	return strings.Join(k.parts, "|")
}

// Equal compara duas chaves componente a componente.
func (k MatchKey) Equal(other MatchKey) bool {
	if len(k.parts) != len(other.parts) {
		return false
	}
	for i := range k.parts {
		if k.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}
