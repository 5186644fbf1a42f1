package ports

import (
	"context"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// Deauther transmits deauthentication frames through the external
// injection tool.
type Deauther interface {
	// Deauth blocks until the request's duration elapses, the tool exits
	// after its packet budget, or ctx is cancelled.
	Deauth(ctx context.Context, req domain.DeauthRequest) error
}
