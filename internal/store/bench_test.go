package store

import (
	"fmt"
	"testing"
)

func createBenchStore(b *testing.B) *Store {
	b.Helper()
	st, err := New(b.TempDir())
	if err != nil {
		b.Fatalf("failed to create bench store: %v", err)
	}
	return st
}

// BenchmarkEntries measures log reads with varying sizes.
func BenchmarkEntries(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			st := createBenchStore(b)
			for i := 0; i < size; i++ {
				entry := Entry{
					Project: fmt.Sprintf("project-%d", i%7),
					Date:    fmt.Sprintf("2025-08-%02d", i%28+1),
					Minutes: 15 + i%60,
				}
				if err := st.Append(entry); err != nil {
					b.Fatalf("Append failed: %v", err)
				}
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := st.Entries(); err != nil {
					b.Fatalf("Entries failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkAppend measures the append-only fast path.
func BenchmarkAppend(b *testing.B) {
	st := createBenchStore(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entry := Entry{Project: "bench", Date: "2025-08-16", Minutes: 30}
		if err := st.Append(entry); err != nil {
			b.Fatalf("Append failed: %v", err)
		}
	}
}
