package enums

import "fmt"

// PedidoStatus is the order lifecycle state owned by the restaurant backend.
type PedidoStatus string

const (
	PedidoStatusPendente        PedidoStatus = "pendente"
	PedidoStatusEmPreparacao    PedidoStatus = "em_preparacao"
	PedidoStatusSaiuParaEntrega PedidoStatus = "saiu_para_entrega"
	PedidoStatusConcluido       PedidoStatus = "concluido"
)

var validPedidoStatuses = []PedidoStatus{
	PedidoStatusPendente,
	PedidoStatusEmPreparacao,
	PedidoStatusSaiuParaEntrega,
	PedidoStatusConcluido,
}

// Transitions are strictly forward, one step at a time.
var nextPedidoStatus = map[PedidoStatus]PedidoStatus{
	PedidoStatusPendente:        PedidoStatusEmPreparacao,
	PedidoStatusEmPreparacao:    PedidoStatusSaiuParaEntrega,
	PedidoStatusSaiuParaEntrega: PedidoStatusConcluido,
}

// String implements fmt.Stringer.
func (p PedidoStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PedidoStatus.
func (p PedidoStatus) IsValid() bool {
	for _, candidate := range validPedidoStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (p PedidoStatus) IsTerminal() bool {
	_, ok := nextPedidoStatus[p]
	return !ok && p.IsValid()
}

// Next returns the single allowed forward transition. The second return is
// false for the terminal state and for unknown values.
func (p PedidoStatus) Next() (PedidoStatus, bool) {
	next, ok := nextPedidoStatus[p]
	return next, ok
}

// NormalizePedidoStatus maps raw backend input onto a known status,
// defaulting unknown or empty values to pendente.
func NormalizePedidoStatus(value string) PedidoStatus {
	parsed, err := ParsePedidoStatus(value)
	if err != nil {
		return PedidoStatusPendente
	}
	return parsed
}

// ParsePedidoStatus converts raw input into a PedidoStatus.
func ParsePedidoStatus(value string) (PedidoStatus, error) {
	for _, candidate := range validPedidoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pedido status %q", value)
}
