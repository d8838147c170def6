package idgen

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	t.Run("returns 20 character URL-safe ID", func(t *testing.T) {
		id := NewID()
		assert.Len(t, id, 20)
		assert.Regexp(t, regexp.MustCompile(`^[a-v0-9]+$`), id)
		assert.True(t, IsValid(id))
	})

	t.Run("generates unique IDs concurrently", func(t *testing.T) {
		var mu sync.Mutex
		seen := make(map[string]bool)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					id := NewID()
					mu.Lock()
					assert.False(t, seen[id], "duplicate id %s", id)
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 1000)
	})
}

func TestNewRequestID(t *testing.T) {
	assert.True(t, IsValid(NewRequestID()))
}

func TestNewFetchID(t *testing.T) {
	id := NewFetchID()
	assert.True(t, strings.HasPrefix(id, "fetch-"))
	assert.True(t, IsValid(strings.TrimPrefix(id, "fetch-")))
}

func TestNewAuthorizationNote(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"custom prefix", "laptop", "laptop "},
		{"blank prefix", "   ", "giteebridge "},
		{"empty prefix", "", "giteebridge "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := NewAuthorizationNote(tt.prefix)
			assert.True(t, strings.HasPrefix(note, tt.want))
			assert.Len(t, note, len(tt.want)+20)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-an-id"))
}
