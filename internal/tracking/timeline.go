package tracking

import (
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
)

// Milestone is one step of the displayed status timeline.
type Milestone struct {
	Etapa   string     `json:"etapa"`
	Titulo  string     `json:"titulo"`
	Horario *time.Time `json:"horario,omitempty"`
	Ativo   bool       `json:"ativo"`
}

const (
	EtapaConfirmado = "confirmado"
	EtapaPreparando = "preparando"
	EtapaSaiu       = "saiu_para_entrega"
	EtapaEntregue   = "entregue"
)

type milestoneSpec struct {
	etapa  string
	titulo string
	// Minutes added to the order's creation time. These are display
	// placeholders: the backend supplies no per-transition timestamps.
	offsetMin int
}

var milestoneSpecs = []milestoneSpec{
	{EtapaConfirmado, "Pedido confirmado", 1},
	{EtapaPreparando, "Em preparação", 16},
	{EtapaSaiu, "Saiu para entrega", 33},
	{EtapaEntregue, "Entregue", 33},
}

var statusReach = map[enums.PedidoStatus]int{
	enums.PedidoStatusPendente:        1,
	enums.PedidoStatusEmPreparacao:    2,
	enums.PedidoStatusSaiuParaEntrega: 3,
	enums.PedidoStatusConcluido:       4,
}

// Timeline derives the reached milestones from the current status. Only
// reached milestones are included and all of them are active; unknown
// statuses show the first milestone only.
func Timeline(status enums.PedidoStatus, criadoEm time.Time) []Milestone {
	reach, ok := statusReach[status]
	if !ok {
		reach = 1
	}
	milestones := make([]Milestone, 0, reach)
	for i := 0; i < reach; i++ {
		spec := milestoneSpecs[i]
		milestone := Milestone{
			Etapa:  spec.etapa,
			Titulo: spec.titulo,
			Ativo:  true,
		}
		if !criadoEm.IsZero() {
			at := criadoEm.Add(time.Duration(spec.offsetMin) * time.Minute)
			milestone.Horario = &at
		}
		milestones = append(milestones, milestone)
	}
	return milestones
}
