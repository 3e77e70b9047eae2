// internal/core/domain/run_state.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunState es el estado mutable de una invocación completa: objetivo
// global, mínimos por tier, tallies de entrega y fingerprints consumidos.
// Single-writer: solo el coordinador lo muta, siempre tras recibir
// outcomes terminales de los workers. Se descarta al final del run; no
// hay persistencia entre runs.
type RunState struct {
	// ID identificador único del run
	ID string

	// Topic tema solicitado por el usuario
	Topic string

	// TargetTotal objetivo global de items (T)
	TargetTotal int

	// TierMin mínimo de items por tier
	TierMin map[Tier]int

	// StartTime inicio del run
	StartTime time.Time

	// Rounds rondas de compensación ejecutadas (0 = solo ronda inicial)
	Rounds int

	deliveredBySource map[string]int
	deliveredByTier   map[Tier]int
	fingerprints      map[string]bool
	failedSources     map[string]bool
	items             []*NewsItem
	warnings          []string
}

// NewRunState inicializa el estado de un run.
func NewRunState(topic string, targetTotal int) *RunState {
	return &RunState{
		ID:                uuid.NewString(),
		Topic:             topic,
		TargetTotal:       targetTotal,
		TierMin:           make(map[Tier]int),
		StartTime:         time.Now(),
		deliveredBySource: make(map[string]int),
		deliveredByTier:   make(map[Tier]int),
		fingerprints:      make(map[string]bool),
		failedSources:     make(map[string]bool),
	}
}

// Accept incorpora un item entregado por una tarea terminal. Retorna
// false si el fingerprint ya fue consumido (el item no cuenta para las
// tallies ni se almacena).
func (s *RunState) Accept(item *NewsItem) bool {
	if !item.IsValid() {
		return false
	}
	if s.fingerprints[item.Fingerprint] {
		return false
	}
	s.fingerprints[item.Fingerprint] = true
	item.DiscoveryIndex = len(s.items)
	s.items = append(s.items, item)
	s.deliveredBySource[item.Source]++
	s.deliveredByTier[item.Tier]++
	return true
}

// MarkFailed registra una fuente con fallo permanente (o retries
// agotados). Las fuentes marcadas no vuelven a recibir tareas.
func (s *RunState) MarkFailed(source string) {
	s.failedSources[source] = true
}

// HasFailed indica si la fuente está marcada como fallida.
func (s *RunState) HasFailed(source string) bool {
	return s.failedSources[source]
}

// Delivered retorna los items aceptados para una fuente.
func (s *RunState) Delivered(source string) int {
	return s.deliveredBySource[source]
}

// DeliveredByTier retorna los items aceptados para un tier.
func (s *RunState) DeliveredByTier(tier Tier) int {
	return s.deliveredByTier[tier]
}

// TotalDelivered retorna el total de items aceptados.
func (s *RunState) TotalDelivered() int {
	return len(s.items)
}

// Shortfall retorna max(0, mínimo del tier - entregado).
func (s *RunState) Shortfall(tier Tier) int {
	gap := s.TierMin[tier] - s.deliveredByTier[tier]
	if gap < 0 {
		return 0
	}
	return gap
}

// Items retorna un snapshot de los items en orden de llegada.
func (s *RunState) Items() []*NewsItem {
	out := make([]*NewsItem, len(s.items))
	copy(out, s.items)
	return out
}

// AddWarning registra una advertencia no fatal del run.
func (s *RunState) AddWarning(msg string) {
	if msg != "" {
		s.warnings = append(s.warnings, msg)
	}
}

// Warnings retorna las advertencias acumuladas.
func (s *RunState) Warnings() []string {
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// QuotaOutcome describe el estado final de quota de un tier.
type QuotaOutcome string

const (
	QuotaMet      QuotaOutcome = "met"
	QuotaShort    QuotaOutcome = "short"
	QuotaExceeded QuotaOutcome = "exceeded"
)

// TierQuotaStatus resume quota vs. entrega para un tier.
type TierQuotaStatus struct {
	Tier      Tier         `json:"tier"`
	Minimum   int          `json:"minimum"`
	Delivered int          `json:"delivered"`
	Outcome   QuotaOutcome `json:"outcome"`
}

// QuotaStatus retorna, por tier, si la entrega cumplió, quedó corta o
// excedió la quota. Siempre informa ambos tiers.
func (s *RunState) QuotaStatus() []TierQuotaStatus {
	tiers := []Tier{TierCore, TierDiscovered}
	out := make([]TierQuotaStatus, 0, len(tiers))
	for _, tier := range tiers {
		status := TierQuotaStatus{
			Tier:      tier,
			Minimum:   s.TierMin[tier],
			Delivered: s.deliveredByTier[tier],
		}
		switch {
		case status.Delivered < status.Minimum:
			status.Outcome = QuotaShort
		case status.Delivered > status.Minimum:
			status.Outcome = QuotaExceeded
		default:
			status.Outcome = QuotaMet
		}
		out = append(out, status)
	}
	return out
}
