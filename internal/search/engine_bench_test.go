package search

import (
	"context"
	"testing"

	"github.com/pathshala/pathshala/internal/models"
)

func BenchmarkEngine_Search(b *testing.B) {
	engine := NewEngine(nil, fixture(), testSearchConfig(), nil, nil)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, &models.SearchQuery{Query: "math"}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_SearchParallel(b *testing.B) {
	engine := NewEngine(nil, fixture(), testSearchConfig(), nil, nil)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.Search(ctx, &models.SearchQuery{Query: "gonit"}); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
