package scheduler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablewarden/tablewarden/internal/config"
	"github.com/tablewarden/tablewarden/internal/scheduler"
)

func TestReloadSkipsUnscheduledAndInvalid(t *testing.T) {
	s := scheduler.New(func(ctx context.Context, source string) {})

	s.Reload([]config.Source{
		{Name: "weekly", URL: "u", Schedule: "0 0 * * 1"},
		{Name: "manual", URL: "u"},
		{Name: "broken", URL: "u", Schedule: "not a cron spec"},
	})

	assert.Equal(t, 1, s.Len())
}

func TestReloadReplacesEntries(t *testing.T) {
	s := scheduler.New(func(ctx context.Context, source string) {})

	s.Reload([]config.Source{{Name: "a", URL: "u", Schedule: "@hourly"}})
	assert.Equal(t, 1, s.Len())

	s.Reload([]config.Source{
		{Name: "b", URL: "u", Schedule: "@daily"},
		{Name: "c", URL: "u", Schedule: "@weekly"},
	})
	assert.Equal(t, 2, s.Len())
}
