package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate_ActionScenario(t *testing.T) {
	rows := Filter(catalogOf25(), FilterState{Genre: "Action"})
	assert.Equal(t, 2, TotalPages(len(rows), 10))
	assert.Len(t, Paginate(rows, 1, 10), 10)
	assert.Len(t, Paginate(rows, 2, 10), 2)
	assert.Empty(t, Paginate(rows, 3, 10))
}

func TestPaginate_NeverExceedsPageSize(t *testing.T) {
	rows := catalogOf25()
	for size := 1; size <= 30; size++ {
		total := TotalPages(len(rows), size)
		for page := 1; page <= total; page++ {
			got := Paginate(rows, page, size)
			assert.LessOrEqual(t, len(got), size)
		}
		last := Paginate(rows, total, size)
		want := len(rows) % size
		if want == 0 {
			want = size
		}
		assert.Len(t, last, want, "size %d", size)
	}
}

func TestPaginate_InvalidInput(t *testing.T) {
	rows := catalogOf25()
	assert.Empty(t, Paginate(rows, 0, 10))
	assert.Empty(t, Paginate(rows, 1, 0))
	assert.Equal(t, 0, TotalPages(0, 10))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 2, ClampPage(3, 2))
	assert.Equal(t, 1, ClampPage(4, 0))
	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
}
