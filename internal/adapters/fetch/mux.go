// internal/adapters/fetch/mux.go
package fetch

import (
	"context"
	"fmt"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
)

// Mux despacha cada FetchRequest al cliente que entiende el QueryKind
// de su spec. Es el FetchClient que ve el pool; añadir un mecanismo
// nuevo es registrar otro cliente, no tocar el motor.
type Mux struct {
	clients map[domain.QueryKind]ports.FetchClient
	logger  logx.Logger
}

// NewMux crea el mux vacío.
func NewMux(logger logx.Logger) *Mux {
	return &Mux{
		clients: make(map[domain.QueryKind]ports.FetchClient),
		logger:  logger.With("component", "fetch.mux"),
	}
}

// Register asocia un cliente a un kind. La última registración gana.
func (m *Mux) Register(kind domain.QueryKind, client ports.FetchClient) {
	m.clients[kind] = client
}

// Fetch delega en el cliente del kind; un kind sin cliente es fallo
// permanente (reintentarlo no lo va a arreglar).
func (m *Mux) Fetch(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
	client, ok := m.clients[req.Spec.Kind]
	if !ok {
		return nil, errors.Permanent(fmt.Errorf("no fetch client for kind %q", req.Spec.Kind))
	}
	return client.Fetch(ctx, req)
}

var _ ports.FetchClient = (*Mux)(nil)
