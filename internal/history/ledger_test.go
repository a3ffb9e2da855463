package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/loan-approval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Empty(t *testing.T) {
	l := NewLedger()

	s := l.Summary()
	assert.Equal(t, models.HistorySummary{}, s)
	assert.Equal(t, 0, s.Total())
	assert.Equal(t, 0.0, s.ApprovalRate())
	assert.Empty(t, l.Entries())
	assert.Equal(t, 0, l.Len())
}

func TestLedger_SummaryCounts(t *testing.T) {
	for n := 0; n <= 25; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			l := NewLedger()
			approved := 0
			for i := 0; i < n; i++ {
				ok := i%3 == 0
				if ok {
					approved++
				}
				l.Append(models.Application{Age: 18 + i}, models.Decision{Approved: ok})
			}

			s := l.Summary()
			assert.Equal(t, n, s.ApprovedCount+s.DeniedCount)
			assert.Equal(t, approved, s.ApprovedCount)
			assert.Equal(t, n, l.Len())
		})
	}
}

func TestLedger_PreservesOrderAndDuplicates(t *testing.T) {
	l := NewLedger()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	app := models.Application{Age: 30, JobType: "Salaried"}
	first := l.Append(app, models.Decision{Approved: true, Confidence: 0.8})
	second := l.Append(app, models.Decision{Approved: true, Confidence: 0.8})
	third := l.Append(models.Application{Age: 40}, models.Decision{Approved: false})

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, entries[0].CreatedAt.Before(entries[1].CreatedAt))
	assert.Equal(t, 40, entries[2].Application.Age)
}

func TestLedger_EntriesAreSnapshots(t *testing.T) {
	l := NewLedger()
	l.Append(models.Application{FullName: "Alice Smith"}, models.Decision{Approved: true})

	entries := l.Entries()
	entries[0].Application.FullName = "Mallory"
	entries[0].Decision.Approved = false

	again := l.Entries()
	assert.Equal(t, "Alice Smith", again[0].Application.FullName)
	assert.Equal(t, models.HistorySummary{ApprovedCount: 1}, l.Summary())
}

func TestLedger_ConcurrentAppends(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(models.Application{}, models.Decision{Approved: i%2 == 0})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, models.HistorySummary{ApprovedCount: 25, DeniedCount: 25}, l.Summary())
}

func TestSummary_ApprovalRate(t *testing.T) {
	s := models.HistorySummary{ApprovedCount: 3, DeniedCount: 1}
	assert.Equal(t, 4, s.Total())
	assert.Equal(t, 0.75, s.ApprovalRate())
}
