package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Run("Disabled Without Endpoint", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), "escrow", "")

		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})
}
