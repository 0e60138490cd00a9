package notes

import (
	"math/rand/v2"
	"sort"
	"time"
)

var seedContents = []string{
	"Mesa solicita más hielo para las bebidas",
	"Cliente pide cambio de sombrilla",
	"Pedido de snacks para grupo familiar",
	"Limpieza de mesa tras servicio",
	"Solicitan menú infantil",
	"Reclamo por demora en la orden",
	"Reservación de mesa para cumpleaños",
	"Cliente solicita la cuenta",
	"Pedido especial sin gluten",
	"Reponer servilletas y cubiertos",
}

var seedStaff = []string{"Ana", "Carlos", "Lucía", "Jorge"}

// seedNotes builds the demo corpus spread across the last ten days, newest first.
func seedNotes(now time.Time, seed uint64) []Note {
	r := rand.New(rand.NewPCG(seed, 0x6e6f746573))
	statuses := []Status{StatusPending, StatusCompleted, StatusCompleted, StatusCancelled}
	priorities := []Priority{PriorityLow, PriorityMedium, PriorityHigh}

	const count = 24
	out := make([]Note, 0, count)
	for i := 0; i < count; i++ {
		ts := now.Add(-time.Duration(r.IntN(10*24*60)) * time.Minute)
		n := Note{
			Content:       seedContents[r.IntN(len(seedContents))],
			Timestamp:     ts,
			TableNumber:   1 + r.IntN(20),
			CustomerCount: 1 + r.IntN(8),
			Status:        statuses[r.IntN(len(statuses))],
			Priority:      priorities[r.IntN(len(priorities))],
		}
		if r.IntN(2) == 0 {
			who := seedStaff[r.IntN(len(seedStaff))]
			n.AssignedTo = &who
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
