package ingest

import (
	"fmt"
	"math"
	"math/rand"

	"boqview/internal/model"
)

const DefaultDemoRows = 1200

type trade struct {
	wbs2  string
	items []demoItem
}

type demoItem struct {
	desc     string
	unit     string
	material float64
	labor    float64
}

var demoCatalog = map[string][]trade{
	"Architecture": {
		{"Wall", []demoItem{
			{"ผนังอิฐมอญ 100mm", "m2", 420, 180},
			{"ผนังอิฐมวลเบา 75mm", "m2", 380, 150},
			{"Gypsum board partition C+M", "m2", 520, 160},
		}},
		{"Floor", []demoItem{
			{"Ceramic tile 60x60", "m2", 650, 220},
			{"พื้นขัดมัน", "m2", 90, 110},
			{"Vinyl plank 5mm", "m2", 780, 140},
		}},
		{"Door & Window", []demoItem{
			{"Aluminium window W1", "set", 8500, 1200},
			{"Timber door D1 (0.90x2.00)", "set", 6200, 900},
			{"Door hardware", "set", 1800, 250},
		}},
	},
	"Structure": {
		{"Concrete", []demoItem{
			{"คอนกรีตโครงสร้าง 240 ksc", "m3", 2450, 450},
			{"Lean concrete", "m3", 1900, 350},
		}},
		{"Rebar", []demoItem{
			{"Deformed bar DB16", "kg", 24, 6},
			{"Round bar RB9", "kg", 25, 7},
		}},
		{"Formwork", []demoItem{
			{"Formwork for beams", "m2", 180, 220},
			{"Formwork for slabs", "m2", 160, 200},
		}},
	},
	"MEP": {
		{"Electrical", []demoItem{
			{"Cable THW 2.5 sq.mm", "m", 18, 9},
			{"Lighting fixture LED 18W", "set", 450, 120},
			{"Distribution board 12 way", "set", 5200, 800},
		}},
		{"Plumbing", []demoItem{
			{"PVC pipe 1/2\" class 13.5", "m", 35, 25},
			{"Water closet", "set", 4800, 650},
			{"Lump sum testing & commissioning", "", 0, 15000},
		}},
	},
}

var demoWBS1 = []string{"Architecture", "Structure", "MEP"}

var demoZones = []string{"Zone A", "Zone B", "Zone C", "Roof"}

type generator struct {
	rnd *rand.Rand
	n   int
}

func newGenerator(seed int64) *generator {
	return &generator{rnd: rand.New(rand.NewSource(seed))}
}

// next returns one synthetic line. About one line in twenty carries a zero
// amount, the way provisional items do in real bills.
func (g *generator) next() model.Row {
	g.n++
	wbs1 := demoWBS1[g.rnd.Intn(len(demoWBS1))]
	trades := demoCatalog[wbs1]
	tr := trades[g.rnd.Intn(len(trades))]
	it := tr.items[g.rnd.Intn(len(tr.items))]

	qty := round2(1 + g.rnd.Float64()*200)
	if it.unit == "set" || it.unit == "" {
		qty = float64(1 + g.rnd.Intn(12))
	}
	material := round2(qty * it.material)
	labor := round2(qty * it.labor)
	amount := round2(material + labor)
	if g.rnd.Intn(20) == 0 {
		material, labor, amount = 0, 0, 0
	}
	return model.Row{
		WBS1:        wbs1,
		WBS2:        tr.wbs2,
		WBS3:        demoZones[g.rnd.Intn(len(demoZones))],
		WBS4:        fmt.Sprintf("L%02d", 1+g.rnd.Intn(8)),
		Description: it.desc,
		Unit:        it.unit,
		Qty:         qty,
		Material:    material,
		Labor:       labor,
		Amount:      amount,
	}
}

// Demo returns n synthetic BOQ rows. The same seed always yields the same rows.
func Demo(n int, seed int64) []model.Row {
	g := newGenerator(seed)
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = g.next()
	}
	return rows
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// DemoStream returns an endless generator of synthetic rows for the given seed.
func DemoStream(seed int64) func() model.Row {
	return newGenerator(seed).next
}
