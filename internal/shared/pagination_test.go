package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 4, p.TotalPages)

	// Unset page and size fall back to sane defaults.
	p = NewPagination(0, 0, 30)
	require.Equal(t, 1, p.Page)
	require.Equal(t, defaultPerPage, p.PerPage)
	require.Equal(t, 2, p.TotalPages)

	p = NewPagination(1, 10, 0)
	require.Zero(t, p.TotalPages)
}
