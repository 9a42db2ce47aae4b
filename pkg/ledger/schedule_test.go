package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcclellann/fredPayroll/pkg/models"
)

func loan(amount int64, installments int, date time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:             uuid.New(),
		OriginalAmount: decimal.NewFromInt(amount),
		Date:           date,
		Installments:   installments,
	}.Normalized()
}

func TestAmortizedSchedule(t *testing.T) {
	l := loan(1000, 3, time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC))

	schedule := AmortizedSchedule(l)

	require.Len(t, schedule, 3)
	wantDue := []time.Time{
		time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.Sequence)
		assert.Equal(t, wantDue[i], inst.DueDate)
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(334)), "ceil(1000/3), got %s", inst.Amount)
		assert.False(t, inst.Paid)
	}
}

func TestAmortizedScheduleWithoutDate(t *testing.T) {
	assert.Empty(t, AmortizedSchedule(loan(1000, 3, time.Time{})))
}

func TestAmortizedScheduleSingleInstallment(t *testing.T) {
	schedule := AmortizedSchedule(loan(750, 0, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))
	require.Len(t, schedule, 1)
	assert.True(t, schedule[0].Amount.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, time.April, schedule[0].DueDate.Month())
}

func TestDueInAndThrough(t *testing.T) {
	l := loan(1200, 4, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	assert.True(t, DueIn(l, 2024, time.January).IsZero())
	assert.True(t, DueIn(l, 2024, time.February).Equal(decimal.NewFromInt(300)))
	assert.True(t, DueIn(l, 2024, time.May).Equal(decimal.NewFromInt(300)))
	assert.True(t, DueIn(l, 2024, time.June).IsZero())

	assert.True(t, DueThrough(l, 2024, time.January).IsZero())
	assert.True(t, DueThrough(l, 2024, time.March).Equal(decimal.NewFromInt(600)))
	assert.True(t, DueThrough(l, 2025, time.March).Equal(decimal.NewFromInt(1200)))
}

func TestDueThroughMatchesSchedule(t *testing.T) {
	l := loan(1000, 3, time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC))

	for m := time.November; m <= time.December; m++ {
		want := decimal.Zero
		for _, inst := range AmortizedSchedule(l) {
			if !inst.DueDate.After(time.Date(2024, m+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)) {
				want = want.Add(inst.Amount)
			}
		}
		assert.True(t, DueThrough(l, 2024, m).Equal(want), "month %s", m)
	}
	assert.True(t, DueThrough(l, 2025, time.February).Equal(decimal.NewFromInt(1002)))
	assert.True(t, DueThrough(l, 2030, time.January).Equal(decimal.NewFromInt(1002)))
}

func TestHugeInstallmentCountIsCapped(t *testing.T) {
	l := loan(6000, 0, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	l = UpdateEntry([]models.LedgerEntry{l}, l.ID, FieldInstallments, "100000000000000")[0]
	require.Equal(t, models.MaxInstallments, l.Installments)

	assert.Len(t, AmortizedSchedule(l), models.MaxInstallments)
	assert.True(t, DueIn(l, 2024, time.March).Equal(decimal.NewFromInt(10)))
	assert.True(t, DueThrough(l, 2024, time.December).Equal(decimal.NewFromInt(100)))

	// A record written past the cap is read back within it.
	l.Installments = 1 << 40
	assert.Len(t, AmortizedSchedule(l), models.MaxInstallments)
	assert.True(t, DueIn(l, 2024, time.March).Equal(decimal.NewFromInt(10)))
	assert.True(t, DueIn(l, 2124, time.March).IsZero())
}
