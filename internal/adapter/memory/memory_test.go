package memory

import (
	"testing"

	"needsstep/internal/adapter/storetest"
	"needsstep/internal/domain"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store { return New() })
}
