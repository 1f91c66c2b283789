package stats

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/robby/reqboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	records := []domain.Record{
		{ID: "1", Status: domain.StatusToDo},
		{ID: "2", Status: domain.StatusDone},
		{ID: "3", Status: domain.StatusDone},
	}

	s := Compute(records)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Count(domain.StatusToDo))
	assert.Equal(t, 0, s.Count(domain.StatusInProgress))
	assert.Equal(t, 2, s.Count(domain.StatusDone))
	assert.Len(t, s.CountPerStatus, len(domain.Statuses()))
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	assert.Equal(t, 0, s.Total)
	for _, st := range domain.Statuses() {
		assert.Equal(t, 0, s.Count(st))
	}
}

func TestCompute_BoundProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	statuses := domain.Statuses()
	for i := 0; i < 100; i++ {
		n := rng.Intn(60)
		records := make([]domain.Record, n)
		for j := range records {
			records[j] = domain.Record{ID: fmt.Sprint(j), Status: statuses[rng.Intn(len(statuses))]}
		}

		s := Compute(records)
		require.Equal(t, n, s.Total)
		sum := 0
		for _, c := range s.CountPerStatus {
			sum += c
		}
		require.Equal(t, n, sum)
	}
}

func TestMemo(t *testing.T) {
	records := []domain.Record{{ID: "1", Status: domain.StatusToDo}}
	var m Memo

	assert.Equal(t, 1, m.Compute(1, records).Total)

	// Same version: cached even though the slice grew
	records = append(records, domain.Record{ID: "2", Status: domain.StatusDone})
	assert.Equal(t, 1, m.Compute(1, records).Total)

	assert.Equal(t, 2, m.Compute(2, records).Total)
}
