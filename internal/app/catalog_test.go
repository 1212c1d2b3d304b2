package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"iga-community/internal/content"
)

func loadCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	catalog, err := content.Load()
	require.NoError(t, err)
	return catalog
}
