package dataset

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrUnknownDataset = errors.New("unknown dataset")

	// loadDelay simulates the "expensive" load the caching chapter talks
	// about; shortened in tests.
	loadDelay = 300 * time.Millisecond
)

// Table is the tabular shape every demo dataset comes in.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Load produces a synthetic dataset by name, slowly. It is deterministic per
// name so cached and fresh responses are comparable.
func Load(name string) (Table, error) {
	gen, ok := generators[name]
	if !ok {
		return Table{}, ErrUnknownDataset
	}
	time.Sleep(loadDelay)
	return gen(), nil
}

// Names lists the available demo datasets.
func Names() []string {
	return []string{"sales", "temperatures", "signups"}
}

var generators = map[string]func() Table{
	"sales": func() Table {
		t := Table{Columns: []string{"month", "units", "revenue"}}
		months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
		rng := rand.New(rand.NewSource(7))
		for _, m := range months {
			units := 100 + rng.Intn(400)
			t.Rows = append(t.Rows, []interface{}{m, units, units * 25})
		}
		return t
	},
	"temperatures": func() Table {
		t := Table{Columns: []string{"day", "celsius"}}
		rng := rand.New(rand.NewSource(11))
		for day := 1; day <= 14; day++ {
			t.Rows = append(t.Rows, []interface{}{day, 18 + rng.Intn(12)})
		}
		return t
	},
	"signups": func() Table {
		t := Table{Columns: []string{"week", "count"}}
		rng := rand.New(rand.NewSource(13))
		for week := 1; week <= 8; week++ {
			t.Rows = append(t.Rows, []interface{}{week, 20 + rng.Intn(80)})
		}
		return t
	},
}

// Snapshot is one tick of the "real-time data" demo.
type Snapshot struct {
	GeneratedAt    time.Time `json:"generated_at"`
	ActiveUsers    int       `json:"active_users"`
	RequestsPerMin int       `json:"requests_per_min"`
	ErrorRate      float64   `json:"error_rate"`
	CPUPercent     float64   `json:"cpu_percent"`
}

// LiveFeed holds the latest snapshot, refreshed on a schedule by the server.
type LiveFeed struct {
	mu     sync.RWMutex
	latest Snapshot
	rng    *rand.Rand
}

func NewLiveFeed() *LiveFeed {
	f := &LiveFeed{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	f.Refresh()
	return f
}

func (f *LiveFeed) Refresh() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = Snapshot{
		GeneratedAt:    time.Now().UTC(),
		ActiveUsers:    50 + f.rng.Intn(200),
		RequestsPerMin: 300 + f.rng.Intn(900),
		ErrorRate:      float64(f.rng.Intn(500)) / 10000, // 0% - 5%
		CPUPercent:     10 + f.rng.Float64()*70,
	}
	return f.latest
}

func (f *LiveFeed) Latest() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest
}
