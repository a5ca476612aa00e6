package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
)

// requireConcurrentSafety параллельно регистрирует образцы и сканирует каталог.
// ID не повторяются, а образец в скане всегда виден целиком.
func requireConcurrentSafety(t *testing.T, repo port.CatalogRepository) {
	t.Helper()
	const (
		writers        = 4
		itemsPerWriter = 5
		readers        = 2
	)
	ctx := context.Background()

	var (
		mu       sync.Mutex
		problems []string
		ids      []int64
	)
	report := func(format string, args ...any) {
		mu.Lock()
		problems = append(problems, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	var writersWG sync.WaitGroup
	for w := 0; w < writers; w++ {
		writersWG.Add(1)
		go func(w int) {
			defer writersWG.Done()
			for i := 0; i < itemsPerWriter; i++ {
				prints := make([]entity.Fingerprint, 1+i%3)
				for k := range prints {
					prints[k] = entity.Fingerprint(w<<16 | i<<8 | k)
				}
				item, err := repo.CreateItem(ctx, entity.NewItem{
					ShortCode:    fmt.Sprintf("W%d-%d", w, i),
					Description:  "board",
					Image:        []byte{byte(w), byte(i)},
					Fingerprints: prints,
				})
				if err != nil {
					report("create W%d-%d: %v", w, i, err)
					continue
				}
				if item.FingerprintCount != len(prints) {
					report("create W%d-%d: %d fingerprints, want %d", w, i, item.FingerprintCount, len(prints))
				}
				mu.Lock()
				ids = append(ids, item.ID)
				mu.Unlock()
			}
		}(w)
	}

	done := make(chan struct{})
	var readersWG sync.WaitGroup
	for r := 0; r < readers; r++ {
		readersWG.Add(1)
		go func() {
			defer readersWG.Done()
			for {
				checkScan(ctx, repo, report)
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}

	writersWG.Wait()
	close(done)
	readersWG.Wait()

	require.Empty(t, problems)
	require.Len(t, ids, writers*itemsPerWriter)
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	candidates, err := repo.AllFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, writers*(1+2+3+1+2))
}

// checkScan сверяет число отпечатков каждого образца в скане с его FingerprintCount
func checkScan(ctx context.Context, repo port.CatalogRepository, report func(string, ...any)) {
	candidates, err := repo.AllFingerprints(ctx)
	if err != nil {
		report("scan: %v", err)
		return
	}
	counts := make(map[int64]int)
	want := make(map[int64]int)
	for _, c := range candidates {
		counts[c.Item.ID]++
		want[c.Item.ID] = c.Item.FingerprintCount
	}
	for id, n := range counts {
		if n != want[id] {
			report("scan: item %d has %d of %d fingerprints", id, n, want[id])
		}
	}
}

func TestMemoryCatalogRepository_ConcurrentCreateAndScan(t *testing.T) {
	requireConcurrentSafety(t, NewMemoryCatalogRepository())
}

func TestSQLiteCatalogRepository_ConcurrentCreateAndScan(t *testing.T) {
	repo, dir := openTestSQLite(t)
	requireConcurrentSafety(t, repo)
	require.Len(t, imageFiles(t, dir), 4*5)
}
