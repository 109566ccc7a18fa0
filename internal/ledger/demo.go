package ledger

import (
	"math/rand"
	"sort"
	"time"

	"hamanets/internal/core"
)

type demoExpense struct {
	categoryID string
	amounts    []int64
	notes      []string
}

var demoExpenses = []demoExpense{
	{"food", []int64{350, 420, 280, 510, 390, 460, 320, 480, 290, 550}, []string{"Продукти", "Ресторан", "Кафе", "Доставка їжі"}},
	{"transport", []int64{1200, 800, 950}, []string{"Бензин", "Таксі", "Громадський транспорт"}},
	{"housing", []int64{8000, 500, 300}, []string{"Оренда", "Комунальні послуги", "Інтернет"}},
	{"entertainment", []int64{500, 300, 800, 200}, []string{"Кіно", "Концерт", "Підписки", "Ігри"}},
	{"health", []int64{800, 1200, 400}, []string{"Аптека", "Лікар", "Спортзал"}},
	{"shopping", []int64{2000, 1500, 800, 3000}, []string{"Одяг", "Електроніка", "Книги", "Подарунки"}},
}

// DemoTransactions generates three months of sample activity ending with
// the month of now, newest first. Identical rng seeds give identical data
// apart from ids.
func DemoTransactions(now time.Time, rng *rand.Rand, newID IDGenerator) []core.Transaction {
	if newID == nil {
		newID = NewUUID
	}
	loc := now.Location()
	var out []core.Transaction
	add := func(typ core.TransactionType, amount core.Money, cat, desc string, at time.Time) {
		out = append(out, core.Transaction{
			ID: newID(), Type: typ, Amount: amount, Currency: core.UAH,
			CategoryID: cat, Description: desc, Date: at,
		})
	}

	for offset := 0; offset < 3; offset++ {
		y, m, _ := now.Date()
		base := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, -offset, 0)
		on := func(day int) time.Time { return base.AddDate(0, 0, day-1) }

		add(core.Income, core.MoneyFromCents(4_500_000+rng.Int63n(1_000_000)), "salary", "Зарплата", on(5))
		if rng.Float64() > 0.5 {
			add(core.Income, core.MoneyFromCents(500_000+rng.Int63n(1_500_000)), "freelance", "Фріланс проект", on(15))
		}
		for _, e := range demoExpenses {
			n := rng.Intn(len(e.amounts)) + 1
			for i := 0; i < n; i++ {
				add(core.Expense,
					core.MoneyFromInt(e.amounts[rng.Intn(len(e.amounts))]),
					e.categoryID,
					e.notes[rng.Intn(len(e.notes))],
					on(rng.Intn(28)+1),
				)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
